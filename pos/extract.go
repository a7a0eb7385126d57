package pos

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sentinel errors for extract loading.
var (
	ErrMissingColumn = errors.New("pos: missing required column")
	ErrMalformedRow  = errors.New("pos: malformed row")
)

// Column names as exported by the POS.
const (
	colMenuItem     = "Menu Item"
	colMenuGroup    = "Menu Group"
	colQty          = "Qty"
	colDiningOption = "Dining Option"
	colVoid         = "Void?"
	colOrderID      = "Order Id"
	colParent       = "Parent Menu Selection"
	colModifier     = "Modifier"
)

// LoadExtract parses the sale and modifier CSV tables for one business day.
// Void-flagged rows are dropped. A missing required column or an unparseable
// quantity aborts the whole load; no partial extract is returned.
func LoadExtract(items, modifiers io.Reader) (*Extract, error) {
	ext := &Extract{}

	err := readTable(items, []string{colMenuItem, colQty, colDiningOption, colVoid, colOrderID}, func(get func(string) string) error {
		qty, err := parseQty(get(colQty))
		if err != nil {
			return err
		}
		ext.Sales = append(ext.Sales, SaleRow{
			OrderID:      get(colOrderID),
			MenuItem:     get(colMenuItem),
			MenuGroup:    get(colMenuGroup),
			DiningOption: get(colDiningOption),
			Qty:          qty,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pos: items extract: %w", err)
	}

	err = readTable(modifiers, []string{colParent, colModifier, colQty, colVoid, colOrderID}, func(get func(string) string) error {
		qty, err := parseQty(get(colQty))
		if err != nil {
			return err
		}
		ext.Modifiers = append(ext.Modifiers, ModifierRow{
			OrderID:      get(colOrderID),
			Parent:       get(colParent),
			Modifier:     get(colModifier),
			DiningOption: get(colDiningOption),
			Qty:          qty,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pos: modifiers extract: %w", err)
	}

	return ext, nil
}

// readTable streams a CSV table, checks the header for required columns, and
// calls row for every non-void record with a header-keyed getter.
func readTable(r io.Reader, required []string, row func(get func(string) string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty table", ErrMalformedRow)
		}
		return err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		get := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		if isVoid(get(colVoid)) {
			continue
		}
		if err := row(get); err != nil {
			return err
		}
	}
}

func parseQty(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: qty %q", ErrMalformedRow, s)
	}
	return qty, nil
}

func isVoid(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	}
	return false
}
