package item

import (
	"strings"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

const (
	maxNameLen  = 100
	maxNotesLen = 500
)

// Item is a consumable tracked by the ledger.
type Item struct {
	types.Entity
	ID               id.ItemID     `json:"id"`
	Name             string        `json:"name"`
	Category         string        `json:"category"`
	Unit             string        `json:"unit"`
	ParLevel         float64       `json:"par_level"`
	ReorderPoint     float64       `json:"reorder_point"`
	SupplierID       id.SupplierID `json:"supplier_id,omitempty"`
	CostPerUnit      float64       `json:"cost_per_unit"`
	StandardizedName string        `json:"standardized_item_name,omitempty"`
	Notes            string        `json:"notes,omitempty"`
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Validate checks the item's fields and returns one error per violation.
func (i *Item) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, FieldError{"name", "name is required"})
	} else if len(i.Name) > maxNameLen {
		errs = append(errs, FieldError{"name", "name exceeds 100 characters"})
	}

	if strings.TrimSpace(i.Unit) == "" {
		errs = append(errs, FieldError{"unit", "unit is required"})
	}

	if i.ParLevel <= 0 {
		errs = append(errs, FieldError{"par_level", "par level must be positive"})
	}

	if i.ReorderPoint < 0 {
		errs = append(errs, FieldError{"reorder_point", "reorder point cannot be negative"})
	} else if i.ParLevel > 0 && i.ReorderPoint >= i.ParLevel {
		errs = append(errs, FieldError{"reorder_point", "reorder point must be below par level"})
	}

	if i.CostPerUnit < 0 {
		errs = append(errs, FieldError{"cost_per_unit", "cost cannot be negative"})
	}

	if len(i.Notes) > maxNotesLen {
		errs = append(errs, FieldError{"notes", "notes exceed 500 characters"})
	}

	return errs
}

// BelowReorder reports whether level is at or below the reorder point.
func (i *Item) BelowReorder(level float64) bool {
	return level <= i.ReorderPoint
}

// SuggestedOrder returns the quantity needed to restore the par level.
func (i *Item) SuggestedOrder(level float64) float64 {
	if n := i.ParLevel - level; n > 0 {
		return n
	}
	return 0
}
