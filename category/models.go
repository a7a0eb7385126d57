package category

import (
	"strings"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Category groups items for counting and ordering workflows.
type Category struct {
	types.Entity
	ID                   id.CategoryID `json:"id"`
	Name                 string        `json:"name"`
	DefaultUnit          string        `json:"default_unit"`
	RequiresRefrigeration bool         `json:"requires_temperature_control"`
	DefaultShelfLifeDays int           `json:"default_shelf_life_days"`
	DisplayOrder         int           `json:"display_order"`
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Validate checks the category's fields.
func (c *Category) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, FieldError{"name", "name is required"})
	}
	if c.DefaultShelfLifeDays < 0 {
		errs = append(errs, FieldError{"default_shelf_life_days", "shelf life cannot be negative"})
	}

	return errs
}
