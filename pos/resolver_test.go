package pos

import (
	"testing"

	"github.com/xraph/tally/catalog"
	"github.com/xraph/tally/types"
)

const testCatalog = `{
  "menu_items": {
    "wine": {
      "Chianti Classico": {"standardized_key": "wine_red_chianti", "base_unit": "bottle"}
    },
    "food": {
      "Caprese Panini": {"standardized_key": "panini_caprese", "base_unit": "unit"}
    }
  },
  "components": {
    "wine": {
      "wine_red_chianti": {"display_name": "Chianti Classico", "base_unit": "bottle"},
      "wine_red_blend_glass": {"display_name": "House Red Blend", "base_unit": "glass"}
    },
    "food": {
      "bread_ciabatta": {"display_name": "Ciabatta Roll", "base_unit": "unit"},
      "mozzarella": {"display_name": "Mozzarella", "base_unit": "unit"}
    }
  },
  "component_relationships": {
    "panini_caprese": {"uses": [
      {"component": "bread_ciabatta", "quantity": 2, "unit": "unit"},
      {"component": "mozzarella", "quantity": 1, "unit": "unit"}
    ]}
  },
  "group_fallbacks": {
    "wine": "wine_red_blend_glass"
  },
  "drink_specifications": {
    "Latte": {"hot_size_oz": 12, "cold_size_oz": 20, "espresso_shots": 2},
    "Espresso": {"hot_size_oz": 4, "espresso_shots": 1},
    "Cortado": {"hot_size_oz": 8, "cold_size_oz": 9, "espresso_shots": 1}
  },
  "syrups": ["Vanilla", "SF Vanilla"],
  "milk_alternatives": ["Oat Milk"],
  "beans": {"regular": "Barocco", "decaf": "Sereno"}
}`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("catalog parse failed: %v", err)
	}
	return NewResolver(c)
}

func usage(t *testing.T, res *Result, key string) float64 {
	t.Helper()
	return res.Components[key].Amount
}

func TestCompositeExpansion(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Caprese Panini", MenuGroup: "food", Qty: 3},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "bread_ciabatta"); got != 6 {
		t.Errorf("bread_ciabatta: got %v, want 6", got)
	}
	if got := usage(t, res, "mozzarella"); got != 3 {
		t.Errorf("mozzarella: got %v, want 3", got)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("unexpected unmatched rows: %v", res.Unmatched)
	}
}

func TestPlainComponentMapping(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Chianti Classico", MenuGroup: "wine", Qty: 2},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "wine_red_chianti"); got != 2 {
		t.Errorf("wine_red_chianti: got %v, want 2", got)
	}
	if res.Components["wine_red_chianti"].Unit != "bottle" {
		t.Errorf("unit: got %q, want bottle", res.Components["wine_red_chianti"].Unit)
	}
}

func TestGroupFallback(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Mystery Red 2019", MenuGroup: "wine", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "wine_red_blend_glass"); got != 1 {
		t.Errorf("wine_red_blend_glass: got %v, want 1", got)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("fallback row should not be unmatched: %v", res.Unmatched)
	}
}

func TestUnmatchedDiagnostics(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Surprise Special", MenuGroup: "food", Qty: 2},
			{OrderID: "1", MenuItem: "Chianti Classico", MenuGroup: "wine", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if len(res.Unmatched) != 1 {
		t.Fatalf("unmatched: got %d rows, want 1", len(res.Unmatched))
	}
	u := res.Unmatched[0]
	if u.MenuItem != "Surprise Special" || u.Qty != 2 {
		t.Errorf("unexpected unmatched row: %+v", u)
	}
	// The unmatched line must not block the rest of the day.
	if got := usage(t, res, "wine_red_chianti"); got != 1 {
		t.Errorf("wine_red_chianti: got %v, want 1", got)
	}
}

func TestCupsTakeOutOnly(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Take Out", Qty: 2},
			{OrderID: "2", MenuItem: "Latte", DiningOption: "Dine In", Qty: 5},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "cups_hot_12oz"); got != 2 {
		t.Errorf("cups_hot_12oz: got %v, want 2", got)
	}
}

func TestIcedSubstitution(t *testing.T) {
	r := newTestResolver(t)

	// Hot-recipe drink sold at qty 2, iced modifier recorded for qty 1:
	// one hot cup remains, one cold cup of the mapped size is added.
	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Take Out", Qty: 2},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Latte", Modifier: "Iced", DiningOption: "Take Out", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "cups_hot_12oz"); got != 1 {
		t.Errorf("cups_hot_12oz: got %v, want 1", got)
	}
	if got := usage(t, res, "cups_cold_20oz"); got != 1 {
		t.Errorf("cups_cold_20oz: got %v, want 1", got)
	}
}

func TestIcedFullSubstitutionDropsHotKey(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Cortado", DiningOption: "Take Out", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Cortado", Modifier: "iced", DiningOption: "Take Out", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if _, ok := res.Components["cups_hot_8oz"]; ok {
		t.Error("fully substituted hot cup count should not appear")
	}
	if got := usage(t, res, "cups_cold_9oz"); got != 1 {
		t.Errorf("cups_cold_9oz: got %v, want 1", got)
	}
}

func TestEspressoBaseShots(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Dine In", Qty: 3},
			{OrderID: "2", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	// 2 shots x 3 lattes + 1 shot x 1 espresso.
	if got := usage(t, res, "espresso_barocco"); got != 7 {
		t.Errorf("espresso_barocco: got %v, want 7", got)
	}
	if _, ok := res.Components["espresso_sereno"]; ok {
		t.Error("no decaf was ordered")
	}
}

func TestExtraShotAndDecaf(t *testing.T) {
	r := newTestResolver(t)

	// base_shots=1 drink at qty 1 with one extra shot and one decaf modifier:
	// both shots route to the decaf bean.
	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Espresso", Modifier: "Extra Shot", Qty: 1},
			{OrderID: "1", Parent: "Espresso", Modifier: "Decaf", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "espresso_sereno"); got != 2 {
		t.Errorf("espresso_sereno: got %v, want 2", got)
	}
	if _, ok := res.Components["espresso_barocco"]; ok {
		t.Errorf("espresso_barocco should be absent, got %v", usage(t, res, "espresso_barocco"))
	}
}

func TestDecafBeanNameModifier(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Espresso", Modifier: "Sereno", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "espresso_sereno"); got != 1 {
		t.Errorf("espresso_sereno: got %v, want 1", got)
	}
}

func TestModifierConsumedOnce(t *testing.T) {
	r := newTestResolver(t)

	// Two separate latte lines on the same order, one extra-shot modifier:
	// the modifier applies to exactly one of them.
	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Dine In", Qty: 1},
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Dine In", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Latte", Modifier: "Extra Shot", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	// 2 base shots each plus one extra shot applied once.
	if got := usage(t, res, "espresso_barocco"); got != 5 {
		t.Errorf("espresso_barocco: got %v, want 5", got)
	}
}

func TestModifierScopedToOrder(t *testing.T) {
	r := newTestResolver(t)

	// Extra-shot modifier on order 2 must not affect order 1.
	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
			{OrderID: "2", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "2", Parent: "Espresso", Modifier: "Extra Shot", Qty: 2},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "espresso_barocco"); got != 4 {
		t.Errorf("espresso_barocco: got %v, want 4", got)
	}
}

func TestSyrupAndMilkRawCounts(t *testing.T) {
	r := newTestResolver(t)

	// Syrup and milk tallies are per modifier row, not per quantity.
	ext := &Extract{
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Latte", Modifier: "Vanilla", Qty: 3},
			{OrderID: "1", Parent: "Latte", Modifier: "Vanilla", Qty: 1},
			{OrderID: "2", Parent: "Latte", Modifier: "SF Vanilla", Qty: 1},
			{OrderID: "2", Parent: "Latte", Modifier: "Oat Milk", Qty: 2},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if got := usage(t, res, "flavor_vanilla"); got != 2 {
		t.Errorf("flavor_vanilla: got %v, want 2", got)
	}
	if q := res.Components["flavor_vanilla"]; !q.Equal(types.Units(2)) {
		t.Errorf("flavor_vanilla: got %v, want %v", q, types.Units(2))
	}
	if got := usage(t, res, "flavor_sf_vanilla"); got != 1 {
		t.Errorf("flavor_sf_vanilla: got %v, want 1", got)
	}
	if got := usage(t, res, "milk_oat_milk"); got != 1 {
		t.Errorf("milk_oat_milk: got %v, want 1", got)
	}
}

func TestUnrecognizedModifiersIgnored(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Espresso", DiningOption: "Dine In", Qty: 1},
		},
		Modifiers: []ModifierRow{
			{OrderID: "1", Parent: "Espresso", Modifier: "Whipped Cream", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if res.IgnoredModifiers != 1 {
		t.Errorf("ignored modifiers: got %d, want 1", res.IgnoredModifiers)
	}
	if got := usage(t, res, "espresso_barocco"); got != 1 {
		t.Errorf("espresso_barocco: got %v, want 1", got)
	}
	if _, ok := res.Components["espresso_sereno"]; ok {
		t.Error("unrecognized modifier must not reroute shots to decaf")
	}
	if _, ok := res.Components["espresso_"]; ok {
		t.Error("unrecognized modifier must not produce a bare bean key")
	}
}

func TestResultMetadata(t *testing.T) {
	r := newTestResolver(t)

	ext := &Extract{
		Sales: []SaleRow{
			{OrderID: "1", MenuItem: "Latte", DiningOption: "Dine In", Qty: 1},
			{OrderID: "1", MenuItem: "Caprese Panini", MenuGroup: "food", Qty: 1},
		},
	}
	res := r.Resolve(ext, "2025-06-10")

	if !res.Success {
		t.Error("expected success")
	}
	if res.Date != "2025-06-10" {
		t.Errorf("date: got %q", res.Date)
	}
	if len(res.Matched) != 2 {
		t.Errorf("matched: got %v, want 2 entries", res.Matched)
	}
}
