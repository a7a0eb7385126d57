package transaction

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Type classifies the stock movement a transaction records.
type Type string

const (
	TypeDelivery   Type = "delivery"   // stock received, level increases
	TypeUsage      Type = "usage"      // stock consumed, level decreases
	TypeWaste      Type = "waste"      // stock discarded, level decreases
	TypeAdjustment Type = "adjustment" // signed correction from a count
)

// Valid reports whether t is one of the four known types.
func (t Type) Valid() bool {
	switch t {
	case TypeDelivery, TypeUsage, TypeWaste, TypeAdjustment:
		return true
	}
	return false
}

// Delta returns the signed effect of quantity on the stock level for this type.
// Deliveries add, usage and waste subtract, adjustments carry their own sign.
func (t Type) Delta(quantity float64) float64 {
	switch t {
	case TypeDelivery, TypeAdjustment:
		return quantity
	case TypeUsage, TypeWaste:
		return -quantity
	}
	return 0
}

// Transaction is a single immutable stock movement.
type Transaction struct {
	types.Entity
	ID        id.TransactionID `json:"id"`
	ItemID    id.ItemID        `json:"item_id"`
	Type      Type             `json:"transaction_type"`
	Quantity  float64          `json:"quantity"`
	UnitCost  *float64         `json:"unit_cost,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	User      string           `json:"user"`
	Notes     string           `json:"notes,omitempty"`
	Source    string           `json:"source,omitempty"`
}

// Delta returns the transaction's signed effect on the stock level.
func (t *Transaction) Delta() float64 {
	return t.Type.Delta(t.Quantity)
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Validate checks the transaction's fields and returns one error per violation.
func (t *Transaction) Validate() []FieldError {
	var errs []FieldError

	if t.ItemID.IsNil() {
		errs = append(errs, FieldError{"item_id", "item is required"})
	}

	if !t.Type.Valid() {
		errs = append(errs, FieldError{"transaction_type", "unknown transaction type"})
	}

	switch t.Type {
	case TypeDelivery, TypeUsage, TypeWaste:
		if t.Quantity <= 0 {
			errs = append(errs, FieldError{"quantity", "quantity must be positive"})
		}
	case TypeAdjustment:
		if t.Quantity == 0 {
			errs = append(errs, FieldError{"quantity", "adjustment quantity cannot be zero"})
		}
	}

	if t.UnitCost != nil && *t.UnitCost < 0 {
		errs = append(errs, FieldError{"unit_cost", "unit cost cannot be negative"})
	}

	return errs
}

// Filter narrows transaction queries. Zero values match everything.
type Filter struct {
	ItemID id.ItemID
	Types  []Type
	Source string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Matches reports whether tx satisfies every set field of the filter.
// Time bounds are half-open: From is exclusive, To is inclusive.
func (f Filter) Matches(tx *Transaction) bool {
	if !f.ItemID.IsNil() && tx.ItemID.String() != f.ItemID.String() {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, typ := range f.Types {
			if tx.Type == typ {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Source != "" && tx.Source != f.Source {
		return false
	}
	if !f.From.IsZero() && !tx.Timestamp.After(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Timestamp.After(f.To) {
		return false
	}
	return true
}
