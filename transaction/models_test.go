package transaction

import (
	"testing"
	"time"

	"github.com/xraph/tally/id"
)

func TestTypeValid(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{TypeDelivery, true},
		{TypeUsage, true},
		{TypeWaste, true},
		{TypeAdjustment, true},
		{Type("purchase"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.want {
				t.Errorf("Valid(%q): got %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestTypeDelta(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		qty  float64
		want float64
	}{
		{"delivery adds", TypeDelivery, 5, 5},
		{"usage subtracts", TypeUsage, 5, -5},
		{"waste subtracts", TypeWaste, 2, -2},
		{"positive adjustment adds", TypeAdjustment, 3, 3},
		{"negative adjustment subtracts", TypeAdjustment, -3, -3},
		{"unknown type is inert", Type("bogus"), 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Delta(tt.qty); got != tt.want {
				t.Errorf("Delta(%v): got %v, want %v", tt.qty, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	itemID := id.NewItemID()
	negCost := -1.0

	tests := []struct {
		name   string
		tx     Transaction
		field  string
	}{
		{"valid delivery", Transaction{ItemID: itemID, Type: TypeDelivery, Quantity: 5}, ""},
		{"valid negative adjustment", Transaction{ItemID: itemID, Type: TypeAdjustment, Quantity: -2}, ""},
		{"missing item", Transaction{Type: TypeUsage, Quantity: 1}, "item_id"},
		{"unknown type", Transaction{ItemID: itemID, Type: "refund", Quantity: 1}, "transaction_type"},
		{"zero usage", Transaction{ItemID: itemID, Type: TypeUsage, Quantity: 0}, "quantity"},
		{"negative waste", Transaction{ItemID: itemID, Type: TypeWaste, Quantity: -1}, "quantity"},
		{"zero adjustment", Transaction{ItemID: itemID, Type: TypeAdjustment, Quantity: 0}, "quantity"},
		{"negative unit cost", Transaction{ItemID: itemID, Type: TypeDelivery, Quantity: 1, UnitCost: &negCost}, "unit_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.tx.Validate()

			if tt.field == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}

			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestFilterMatches(t *testing.T) {
	itemA := id.NewItemID()
	itemB := id.NewItemID()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tx := &Transaction{
		ItemID:    itemA,
		Type:      TypeUsage,
		Quantity:  2,
		Timestamp: base,
		Source:    "toast_pos",
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"matching item", Filter{ItemID: itemA}, true},
		{"other item", Filter{ItemID: itemB}, false},
		{"matching type", Filter{Types: []Type{TypeUsage}}, true},
		{"type list includes", Filter{Types: []Type{TypeWaste, TypeUsage}}, true},
		{"type mismatch", Filter{Types: []Type{TypeDelivery}}, false},
		{"matching source", Filter{Source: "toast_pos"}, true},
		{"source mismatch", Filter{Source: "manual"}, false},
		{"within window", Filter{From: base.Add(-time.Hour), To: base.Add(time.Hour)}, true},
		{"from is exclusive", Filter{From: base}, false},
		{"to is inclusive", Filter{To: base}, true},
		{"before window", Filter{From: base.Add(time.Minute)}, false},
		{"after window", Filter{To: base.Add(-time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tx); got != tt.want {
				t.Errorf("Matches: got %v, want %v", got, tt.want)
			}
		})
	}
}
