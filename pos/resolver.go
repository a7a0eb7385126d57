package pos

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/tally/catalog"
	"github.com/xraph/tally/types"
)

// Resolver maps one day's extract to component usage through the catalog.
type Resolver struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewResolver builds a resolver over a validated catalog.
func NewResolver(c *catalog.Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog: c,
		logger:  slog.Default().With("component", "pos"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// Resolve computes the component usage map for the extract. date is the
// business day in YYYY-MM-DD form; it is carried through to the result.
// Unresolvable sold lines become unmatched diagnostics, never errors.
func (r *Resolver) Resolve(ext *Extract, date string) *Result {
	res := &Result{
		Success:    true,
		Date:       date,
		Components: make(map[string]ComponentUsage),
	}

	r.resolveCups(ext, res)
	r.resolveShots(ext, res)
	r.resolveModifierCounts(ext, res)
	r.resolveStandardized(ext, res)

	r.logger.Debug("extract resolved",
		"date", date,
		"components", len(res.Components),
		"matched", len(res.Matched),
		"unmatched", len(res.Unmatched),
	)

	return res
}

// resolveCups counts take-out cups for espresso drinks. The recipe decides
// hot or cold; an iced modifier on the same order substitutes the drink's
// cold size and backs the hot count out for that quantity.
func (r *Resolver) resolveCups(ext *Extract, res *Result) {
	cups := make(map[string]float64)

	for _, row := range ext.Sales {
		spec, ok := r.catalog.Drink(row.MenuItem)
		if !ok || !isTakeOut(row.DiningOption) {
			continue
		}
		if spec.HotSizeOz > 0 {
			cups[catalog.CupComponent("hot", spec.HotSizeOz)] += row.Qty
		} else {
			cups[catalog.CupComponent("cold", spec.ColdSizeOz)] += row.Qty
		}
	}

	for _, mod := range ext.Modifiers {
		if !strings.EqualFold(strings.TrimSpace(mod.Modifier), "iced") || !isTakeOut(mod.DiningOption) {
			continue
		}
		spec, ok := r.catalog.Drink(mod.Parent)
		if !ok || spec.HotSizeOz <= 0 || spec.ColdSizeOz <= 0 {
			continue
		}
		cups[catalog.CupComponent("cold", spec.ColdSizeOz)] += mod.Qty
		cups[catalog.CupComponent("hot", spec.HotSizeOz)] -= mod.Qty
	}

	for key, qty := range cups {
		if qty > 0 {
			addUsage(res.Components, key, types.Cups(qty))
		}
	}
}

// resolveShots accumulates espresso shots per bean. Rows are grouped by
// order so each modifier row applies to at most one drink line: extra-shot
// quantities add to that drink, a decaf modifier reroutes the entire
// drink's shots (base and extra) to the decaf bean.
func (r *Resolver) resolveShots(ext *Extract, res *Result) {
	beans := r.catalog.Beans()
	decafName := strings.ToLower(beans.Decaf)
	shots := map[string]float64{}

	byOrder := make(map[string][]int)
	for i, mod := range ext.Modifiers {
		byOrder[mod.OrderID] = append(byOrder[mod.OrderID], i)
	}

	usedMods := make(map[int]bool)

	for _, row := range ext.Sales {
		spec, ok := r.catalog.Drink(row.MenuItem)
		if !ok {
			continue
		}
		res.Matched = append(res.Matched, row.MenuItem)

		extra := 0.0
		decaf := false
		for _, i := range byOrder[row.OrderID] {
			if usedMods[i] {
				continue
			}
			mod := ext.Modifiers[i]
			if mod.Parent != row.MenuItem {
				continue
			}
			name := strings.ToLower(mod.Modifier)
			switch {
			case strings.Contains(name, "extra shot"):
				extra += mod.Qty
				usedMods[i] = true
			case strings.Contains(name, "decaf") || (decafName != "" && strings.Contains(name, decafName)):
				decaf = true
				usedMods[i] = true
			}
		}

		total := float64(spec.EspressoShots)*row.Qty + extra
		bean := beans.Regular
		if decaf {
			bean = beans.Decaf
		}
		shots[bean] += total
	}

	for bean, n := range shots {
		if n > 0 {
			addUsage(res.Components, catalog.BeanComponent(bean), types.Shots(n))
		}
	}
}

// resolveModifierCounts tallies syrup and milk-alternative modifiers by raw
// row count, independent of order or drink scoping. Modifiers with no
// recognized semantics are counted as ignored.
func (r *Resolver) resolveModifierCounts(ext *Extract, res *Result) {
	decafName := strings.ToLower(r.catalog.Beans().Decaf)

	for _, mod := range ext.Modifiers {
		name := strings.TrimSpace(mod.Modifier)
		lower := strings.ToLower(name)

		switch {
		case r.catalog.IsMilk(name):
			addUsage(res.Components, "milk_"+catalog.Slug(name), types.Units(1))
		case r.catalog.IsSyrup(name):
			addUsage(res.Components, "flavor_"+catalog.Slug(name), types.Units(1))
		case lower == "iced",
			strings.Contains(lower, "extra shot"),
			strings.Contains(lower, "decaf"),
			decafName != "" && strings.Contains(lower, decafName):
			// handled by cup and shot resolution
		default:
			res.IgnoredModifiers++
		}
	}
}

// resolveStandardized runs the catalog tier for every non-drink sold line:
// name lookup with group fallback, then composite expansion.
func (r *Resolver) resolveStandardized(ext *Extract, res *Result) {
	for _, row := range ext.Sales {
		if r.catalog.IsDrink(row.MenuItem) {
			continue
		}

		key, ok := r.catalog.ResolveKey(row.MenuItem, row.MenuGroup)
		if !ok {
			res.Unmatched = append(res.Unmatched, UnmatchedRow{
				MenuItem:  row.MenuItem,
				MenuGroup: row.MenuGroup,
				Qty:       row.Qty,
			})
			continue
		}

		uses, ok := r.catalog.Expand(key, row.Qty)
		if !ok {
			res.Unmatched = append(res.Unmatched, UnmatchedRow{
				MenuItem:  row.MenuItem,
				MenuGroup: row.MenuGroup,
				Qty:       row.Qty,
			})
			continue
		}

		res.Matched = append(res.Matched, row.MenuItem)
		for _, use := range uses {
			addUsage(res.Components, use.Component, types.Of(use.Quantity, use.Unit))
		}
	}
}

// addUsage accumulates a quantity under a component key. The first writer
// fixes the key's unit; later amounts fold into it regardless.
func addUsage(usage map[string]ComponentUsage, key string, q types.Quantity) {
	cur, ok := usage[key]
	if !ok {
		usage[key] = q
		return
	}
	if q.Unit != cur.Unit {
		q = types.Of(q.Amount, cur.Unit)
	}
	usage[key] = cur.Add(q)
}

func isTakeOut(diningOption string) bool {
	return strings.EqualFold(strings.TrimSpace(diningOption), "take out")
}

// Summary renders a short human-readable account of the result.
func (res *Result) Summary() string {
	return fmt.Sprintf("%s: %d components, %d matched, %d unmatched, %d ignored modifiers",
		res.Date, len(res.Components), len(res.Matched), len(res.Unmatched), res.IgnoredModifiers)
}
