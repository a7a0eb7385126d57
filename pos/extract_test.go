package pos

import (
	"errors"
	"strings"
	"testing"
)

const itemsCSV = `Order Id,Menu Item,Menu Group,Qty,Dining Option,Void?
1,Latte,Espresso,2,Take Out,false
1,Caprese Panini,Food,1,Dine In,false
2,Latte,Espresso,1,Take Out,true
3,Chianti Classico,Wine,1,Dine In,false
`

const modifiersCSV = `Order Id,Parent Menu Selection,Modifier,Qty,Dining Option,Void?
1,Latte,Iced,1,Take Out,false
1,Latte,Vanilla,1,Take Out,false
2,Latte,Extra Shot,1,Take Out,true
`

func TestLoadExtract(t *testing.T) {
	ext, err := LoadExtract(strings.NewReader(itemsCSV), strings.NewReader(modifiersCSV))
	if err != nil {
		t.Fatalf("LoadExtract failed: %v", err)
	}

	// Void rows are dropped on load.
	if len(ext.Sales) != 3 {
		t.Fatalf("sales: got %d rows, want 3", len(ext.Sales))
	}
	if len(ext.Modifiers) != 2 {
		t.Fatalf("modifiers: got %d rows, want 2", len(ext.Modifiers))
	}

	first := ext.Sales[0]
	if first.OrderID != "1" || first.MenuItem != "Latte" || first.MenuGroup != "Espresso" ||
		first.Qty != 2 || first.DiningOption != "Take Out" {
		t.Errorf("unexpected first sale row: %+v", first)
	}

	mod := ext.Modifiers[0]
	if mod.Parent != "Latte" || mod.Modifier != "Iced" || mod.Qty != 1 {
		t.Errorf("unexpected first modifier row: %+v", mod)
	}
}

func TestLoadExtractMissingColumn(t *testing.T) {
	tests := []struct {
		name      string
		items     string
		modifiers string
		column    string
	}{
		{
			"items missing Qty",
			"Order Id,Menu Item,Dining Option,Void?\n1,Latte,Take Out,false\n",
			modifiersCSV,
			"Qty",
		},
		{
			"items missing Void?",
			"Order Id,Menu Item,Qty,Dining Option\n1,Latte,1,Take Out\n",
			modifiersCSV,
			"Void?",
		},
		{
			"modifiers missing Parent Menu Selection",
			itemsCSV,
			"Order Id,Modifier,Qty,Void?\n1,Iced,1,false\n",
			"Parent Menu Selection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadExtract(strings.NewReader(tt.items), strings.NewReader(tt.modifiers))
			if !errors.Is(err, ErrMissingColumn) {
				t.Fatalf("expected ErrMissingColumn, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.column) {
				t.Errorf("error %q should name column %q", err.Error(), tt.column)
			}
		})
	}
}

func TestLoadExtractMalformedQty(t *testing.T) {
	bad := "Order Id,Menu Item,Menu Group,Qty,Dining Option,Void?\n1,Latte,Espresso,two,Take Out,false\n"
	_, err := LoadExtract(strings.NewReader(bad), strings.NewReader(modifiersCSV))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestLoadExtractEmptyQtyDefaultsToOne(t *testing.T) {
	items := "Order Id,Menu Item,Menu Group,Qty,Dining Option,Void?\n1,Latte,Espresso,,Take Out,false\n"
	mods := "Order Id,Parent Menu Selection,Modifier,Qty,Dining Option,Void?\n"
	ext, err := LoadExtract(strings.NewReader(items), strings.NewReader(mods))
	if err != nil {
		t.Fatalf("LoadExtract failed: %v", err)
	}
	if len(ext.Sales) != 1 || ext.Sales[0].Qty != 1 {
		t.Errorf("expected qty default of 1, got %+v", ext.Sales)
	}
}

func TestLoadExtractEmptyTables(t *testing.T) {
	_, err := LoadExtract(strings.NewReader(""), strings.NewReader(modifiersCSV))
	if err == nil {
		t.Fatal("expected error for empty items table")
	}
}

func TestVoidFlagForms(t *testing.T) {
	tests := []struct {
		value string
		void  bool
	}{
		{"false", false},
		{"False", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"1", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := isVoid(tt.value); got != tt.void {
				t.Errorf("isVoid(%q): got %v, want %v", tt.value, got, tt.void)
			}
		})
	}
}
