package item

import "testing"

func validItem() *Item {
	return &Item{
		Name:         "Barocco Espresso Beans",
		Category:     "espresso_beans",
		Unit:         "kg",
		ParLevel:     10,
		ReorderPoint: 3,
		CostPerUnit:  24.5,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Item)
		field  string
	}{
		{"valid", func(i *Item) {}, ""},
		{"missing name", func(i *Item) { i.Name = "  " }, "name"},
		{"name too long", func(i *Item) { i.Name = string(make([]byte, 101)) }, "name"},
		{"missing unit", func(i *Item) { i.Unit = "" }, "unit"},
		{"zero par", func(i *Item) { i.ParLevel = 0 }, "par_level"},
		{"negative par", func(i *Item) { i.ParLevel = -1 }, "par_level"},
		{"negative reorder", func(i *Item) { i.ReorderPoint = -1 }, "reorder_point"},
		{"reorder at par", func(i *Item) { i.ReorderPoint = i.ParLevel }, "reorder_point"},
		{"reorder above par", func(i *Item) { i.ReorderPoint = i.ParLevel + 1 }, "reorder_point"},
		{"negative cost", func(i *Item) { i.CostPerUnit = -0.5 }, "cost_per_unit"},
		{"notes too long", func(i *Item) { i.Notes = string(make([]byte, 501)) }, "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validItem()
			tt.mutate(it)
			errs := it.Validate()

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

func TestBelowReorder(t *testing.T) {
	it := validItem()

	tests := []struct {
		name  string
		level float64
		want  bool
	}{
		{"above reorder", 5, false},
		{"at reorder", 3, true},
		{"below reorder", 1, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := it.BelowReorder(tt.level); got != tt.want {
				t.Errorf("BelowReorder(%v): got %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSuggestedOrder(t *testing.T) {
	it := validItem()

	if got := it.SuggestedOrder(4); got != 6 {
		t.Errorf("SuggestedOrder(4): got %v, want 6", got)
	}
	if got := it.SuggestedOrder(12); got != 0 {
		t.Errorf("SuggestedOrder(12): got %v, want 0", got)
	}
}
