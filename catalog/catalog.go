// Package catalog loads and validates the mapping configuration that joins
// POS menu item names to trackable component keys.
//
// The catalog is a single JSON document with grouped menu item mappings,
// component definitions, composite relationships, espresso drink recipes,
// and recognized syrup / milk-alternative modifier names. Validation is
// fail-fast: a catalog that references undefined components or carries a
// malformed recipe is rejected at load time, never at lookup time.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// MenuItem maps one POS menu item name to a standardized key.
type MenuItem struct {
	Name            string `json:"-"`
	Group           string `json:"-"`
	StandardizedKey string `json:"standardized_key"`
	BaseUnit        string `json:"base_unit"`
	DisplayName     string `json:"display_name,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Component is a trackable consumable referenced by standardized keys.
type Component struct {
	Key         string `json:"-"`
	Group       string `json:"-"`
	DisplayName string `json:"display_name"`
	BaseUnit    string `json:"base_unit"`
}

// ComponentUse declares that one sold unit consumes Quantity of Component.
type ComponentUse struct {
	Component string  `json:"component"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// DrinkSpec is the base recipe for an espresso drink.
type DrinkSpec struct {
	Name          string `json:"-"`
	HotSizeOz     int    `json:"hot_size_oz,omitempty"`
	ColdSizeOz    int    `json:"cold_size_oz,omitempty"`
	EspressoShots int    `json:"espresso_shots"`
}

// Beans names the regular and decaf espresso beans.
type Beans struct {
	Regular string `json:"regular"`
	Decaf   string `json:"decaf"`
}

// Catalog is the validated, immutable mapping configuration. Build one at
// startup with Load or Parse and pass it to every component that needs it.
type Catalog struct {
	menuItems     map[string]*MenuItem      // keyed by POS name
	menuIndex     map[string]*MenuItem      // keyed by normalized POS name
	components    map[string]*Component     // keyed by component key
	relationships map[string][]ComponentUse // standardized key -> uses
	drinks        map[string]*DrinkSpec     // keyed by POS name
	syrups        map[string]bool           // exact modifier names
	milks         map[string]bool           // exact modifier names
	fallbacks     map[string]string         // menu group -> standardized key
	beans         Beans
}

type fileSchema struct {
	MenuItems     map[string]map[string]*MenuItem  `json:"menu_items"`
	Components    map[string]map[string]*Component `json:"components"`
	Relationships map[string]struct {
		Uses []ComponentUse `json:"uses"`
	} `json:"component_relationships"`
	GroupFallbacks map[string]string     `json:"group_fallbacks"`
	Drinks         map[string]*DrinkSpec `json:"drink_specifications"`
	Syrups         []string              `json:"syrups"`
	Milks          []string              `json:"milk_alternatives"`
	Beans          *Beans                `json:"beans"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a catalog document. Any schema violation fails the whole
// parse; the returned error lists every violation found.
func Parse(data []byte) (*Catalog, error) {
	var raw fileSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	c := &Catalog{
		menuItems:     make(map[string]*MenuItem),
		menuIndex:     make(map[string]*MenuItem),
		components:    make(map[string]*Component),
		relationships: make(map[string][]ComponentUse),
		drinks:        make(map[string]*DrinkSpec),
		syrups:        make(map[string]bool),
		milks:         make(map[string]bool),
		fallbacks:     make(map[string]string),
		beans:         Beans{Regular: "Barocco", Decaf: "Sereno"},
	}
	if raw.Beans != nil {
		c.beans = *raw.Beans
	}

	var problems []string

	if c.beans.Regular == "" {
		problems = append(problems, "beans: missing regular bean name")
	}
	if c.beans.Decaf == "" {
		problems = append(problems, "beans: missing decaf bean name")
	}

	for group, comps := range raw.Components {
		for key, comp := range comps {
			if comp == nil {
				problems = append(problems, fmt.Sprintf("component %q: empty definition", key))
				continue
			}
			if _, dup := c.components[key]; dup {
				problems = append(problems, fmt.Sprintf("component %q: duplicate key", key))
				continue
			}
			comp.Key = key
			comp.Group = group
			if comp.DisplayName == "" {
				problems = append(problems, fmt.Sprintf("component %q: missing display_name", key))
			}
			if comp.BaseUnit == "" {
				problems = append(problems, fmt.Sprintf("component %q: missing base_unit", key))
			}
			c.components[key] = comp
		}
	}

	for key, rel := range raw.Relationships {
		if len(rel.Uses) == 0 {
			problems = append(problems, fmt.Sprintf("relationship %q: no uses", key))
			continue
		}
		for _, use := range rel.Uses {
			if _, ok := c.components[use.Component]; !ok {
				problems = append(problems, fmt.Sprintf("relationship %q: unknown component %q", key, use.Component))
			}
			if use.Quantity <= 0 {
				problems = append(problems, fmt.Sprintf("relationship %q: component %q: quantity must be positive", key, use.Component))
			}
		}
		c.relationships[key] = rel.Uses
	}

	for group, items := range raw.MenuItems {
		for name, mi := range items {
			if mi == nil {
				problems = append(problems, fmt.Sprintf("menu item %q: empty definition", name))
				continue
			}
			if _, dup := c.menuItems[name]; dup {
				problems = append(problems, fmt.Sprintf("menu item %q: duplicate name", name))
				continue
			}
			mi.Name = name
			mi.Group = group
			if mi.DisplayName == "" {
				mi.DisplayName = name
			}
			if mi.StandardizedKey == "" {
				problems = append(problems, fmt.Sprintf("menu item %q: missing standardized_key", name))
			} else if !c.resolvable(mi.StandardizedKey) {
				problems = append(problems, fmt.Sprintf("menu item %q: key %q is neither a component nor composite", name, mi.StandardizedKey))
			}
			if mi.BaseUnit == "" {
				problems = append(problems, fmt.Sprintf("menu item %q: missing base_unit", name))
			}
			c.menuItems[name] = mi
			c.menuIndex[normalize(name)] = mi
		}
	}

	for group, key := range raw.GroupFallbacks {
		if !c.resolvable(key) {
			problems = append(problems, fmt.Sprintf("group fallback %q: key %q is neither a component nor composite", group, key))
		}
		c.fallbacks[group] = key
	}

	for name, spec := range raw.Drinks {
		if spec == nil {
			problems = append(problems, fmt.Sprintf("drink %q: empty specification", name))
			continue
		}
		spec.Name = name
		if spec.HotSizeOz <= 0 && spec.ColdSizeOz <= 0 {
			problems = append(problems, fmt.Sprintf("drink %q: needs hot_size_oz or cold_size_oz", name))
		}
		if spec.EspressoShots < 0 {
			problems = append(problems, fmt.Sprintf("drink %q: negative espresso_shots", name))
		}
		c.drinks[name] = spec
	}

	for _, s := range raw.Syrups {
		c.syrups[s] = true
	}
	for _, m := range raw.Milks {
		c.milks[m] = true
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("catalog: invalid: %s", strings.Join(problems, "; "))
	}

	return c, nil
}

// resolvable reports whether a standardized key leads to at least one
// trackable component, directly or through a relationship.
func (c *Catalog) resolvable(key string) bool {
	if _, ok := c.components[key]; ok {
		return true
	}
	_, ok := c.relationships[key]
	return ok
}

// ──────────────────────────────────────────────────
// Lookups
// ──────────────────────────────────────────────────

// MenuItem returns the mapping for a POS menu item name. Lookup is exact
// first, then case- and whitespace-insensitive.
func (c *Catalog) MenuItem(name string) (*MenuItem, bool) {
	if mi, ok := c.menuItems[name]; ok {
		return mi, true
	}
	mi, ok := c.menuIndex[normalize(name)]
	return mi, ok
}

// ResolveKey resolves a sold line to a standardized key: by item name, then
// by the menu group's fallback key.
func (c *Catalog) ResolveKey(name, group string) (string, bool) {
	if mi, ok := c.MenuItem(name); ok {
		return mi.StandardizedKey, true
	}
	if key, ok := c.fallbacks[group]; ok {
		return key, true
	}
	return "", false
}

// Component returns a component definition by key.
func (c *Catalog) Component(key string) (*Component, bool) {
	comp, ok := c.components[key]
	return comp, ok
}

// Expand converts a standardized key sold at qty into component usage
// entries. Composite keys expand through their relationship with quantities
// scaled; plain component keys yield a single entry.
func (c *Catalog) Expand(key string, qty float64) ([]ComponentUse, bool) {
	if uses, ok := c.relationships[key]; ok {
		out := make([]ComponentUse, 0, len(uses))
		for _, use := range uses {
			out = append(out, ComponentUse{
				Component: use.Component,
				Quantity:  use.Quantity * qty,
				Unit:      use.Unit,
			})
		}
		return out, true
	}
	if comp, ok := c.components[key]; ok {
		return []ComponentUse{{Component: key, Quantity: qty, Unit: comp.BaseUnit}}, true
	}
	return nil, false
}

// Drink returns the recipe for an espresso drink name, if it is one.
func (c *Catalog) Drink(name string) (*DrinkSpec, bool) {
	spec, ok := c.drinks[name]
	return spec, ok
}

// IsDrink reports whether the menu item name is a specialized espresso drink.
func (c *Catalog) IsDrink(name string) bool {
	_, ok := c.drinks[name]
	return ok
}

// IsSyrup reports whether the modifier name is a recognized syrup.
func (c *Catalog) IsSyrup(mod string) bool { return c.syrups[mod] }

// IsMilk reports whether the modifier name is a recognized milk alternative.
func (c *Catalog) IsMilk(mod string) bool { return c.milks[mod] }

// Beans returns the configured regular and decaf bean names.
func (c *Catalog) Beans() Beans { return c.beans }

// BeanComponent returns the espresso component key for a bean name,
// e.g. "espresso_barocco".
func BeanComponent(bean string) string {
	return "espresso_" + Slug(bean)
}

// CupComponent returns the cup component key for a temperature and size,
// e.g. "cups_hot_12oz".
func CupComponent(temp string, sizeOz int) string {
	return fmt.Sprintf("cups_%s_%doz", temp, sizeOz)
}

// Slug lowercases a name and replaces spaces with underscores.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
