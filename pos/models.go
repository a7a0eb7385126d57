// Package pos turns daily point-of-sale extracts into component usage maps.
//
// Two inputs describe one business day: a sale-row table and a modifier-row
// table, correlated by order id. Resolution runs two tiers per sold line:
// specialized espresso-drink recipes (cups, shots, syrups, milk
// alternatives), then the standardized catalog mapping with group fallbacks
// and composite expansion. Lines with no catalog match accumulate as
// diagnostics and never abort the run.
package pos

import "github.com/xraph/tally/types"

// ComponentUsage is the resolved consumption of one component for the day,
// a unit-tagged quantity.
type ComponentUsage = types.Quantity

// UnmatchedRow is a sold line the catalog could not resolve.
type UnmatchedRow struct {
	MenuItem  string  `json:"menu_item"`
	MenuGroup string  `json:"menu_group,omitempty"`
	Qty       float64 `json:"qty"`
}

// Result is the resolver's output for one business day.
type Result struct {
	Success          bool                      `json:"success"`
	Date             string                    `json:"date"` // YYYY-MM-DD
	Components       map[string]ComponentUsage `json:"component_usage"`
	Matched          []string                  `json:"matched_items"`
	Unmatched        []UnmatchedRow            `json:"unmatched_items"`
	IgnoredModifiers int                       `json:"ignored_modifiers"`
}

// SaleRow is one non-void sold line from the items extract.
type SaleRow struct {
	OrderID      string
	MenuItem     string
	MenuGroup    string
	DiningOption string
	Qty          float64
}

// ModifierRow is one non-void modifier line from the modifiers extract.
type ModifierRow struct {
	OrderID      string
	Parent       string // parent menu selection
	Modifier     string
	DiningOption string
	Qty          float64
}

// Extract is one business day's POS data with void rows already removed.
type Extract struct {
	Sales     []SaleRow
	Modifiers []ModifierRow
}
