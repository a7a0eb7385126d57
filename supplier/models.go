package supplier

import (
	"strings"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Supplier is a vendor that delivers stock.
type Supplier struct {
	types.Entity
	ID           id.SupplierID `json:"id"`
	Name         string        `json:"name"`
	ContactEmail string        `json:"contact_email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	DeliveryDays []string      `json:"delivery_days,omitempty"` // lowercase weekday names
	Notes        string        `json:"notes,omitempty"`
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// Validate checks the supplier's fields.
func (s *Supplier) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, FieldError{"name", "name is required"})
	}

	for _, d := range s.DeliveryDays {
		if !weekdays[strings.ToLower(d)] {
			errs = append(errs, FieldError{"delivery_days", "unknown weekday: " + d})
		}
	}

	return errs
}

// DeliversOn reports whether the supplier delivers on the given weekday.
func (s *Supplier) DeliversOn(day string) bool {
	day = strings.ToLower(day)
	for _, d := range s.DeliveryDays {
		if strings.ToLower(d) == day {
			return true
		}
	}
	return false
}
