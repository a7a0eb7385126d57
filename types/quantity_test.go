package types

import (
	"encoding/json"
	"testing"
)

func TestQuantityConstructors(t *testing.T) {
	tests := []struct {
		name     string
		qty      Quantity
		amount   float64
		unit     string
		display  string
	}{
		{"Shots", Shots(2), 2, "shot", "2 shot"},
		{"Cups", Cups(3), 3, "cup", "3 cup"},
		{"Units", Units(1), 1, "unit", "1 unit"},
		{"Of liter", Of(1.5, "Liter"), 1.5, "liter", "1.5 liter"},
		{"Of kg fraction", Of(0.25, "kg"), 0.25, "kg", "0.25 kg"},
		{"Zero shot", ZeroOf("shot"), 0, "shot", "0 shot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.qty.Amount != tt.amount {
				t.Errorf("Amount: got %v, want %v", tt.qty.Amount, tt.amount)
			}
			if tt.qty.Unit != tt.unit {
				t.Errorf("Unit: got %s, want %s", tt.qty.Unit, tt.unit)
			}
			if tt.qty.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.qty.String(), tt.display)
			}
		})
	}
}

func TestQuantityArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Quantity
		expected Quantity
	}{
		{"Add", func() Quantity { return Shots(1).Add(Shots(2)) }, Shots(3)},
		{"Subtract", func() Quantity { return Shots(5).Subtract(Shots(2)) }, Shots(3)},
		{"Multiply", func() Quantity { return Shots(2).Multiply(3) }, Shots(6)},
		{"Negate", func() Quantity { return Cups(1).Negate() }, Cups(-1)},
		{"Abs positive", func() Quantity { return Cups(1).Abs() }, Cups(1)},
		{"Abs negative", func() Quantity { return Cups(-1).Abs() }, Cups(1)},
		{"Clamp negative", func() Quantity { return Shots(-2).Clamp() }, Shots(0)},
		{"Clamp positive", func() Quantity { return Shots(2).Clamp() }, Shots(2)},
		{"Complex", func() Quantity {
			return Shots(2).Add(Shots(1)).Multiply(2).Subtract(Shots(2))
		}, Shots(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestQuantityUnitMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for unit mismatch")
		}
	}()

	// This should panic
	_ = Shots(1).Add(Cups(1))
}

func TestQuantityComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Quantity
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", Shots(2), Shots(2), false, false, true},
		{"Less", Shots(1), Shots(2), true, false, false},
		{"Greater", Shots(3), Shots(2), false, true, false},
		{"Zero equal", Shots(0), ZeroOf("shot"), false, false, true},
		{"Negative less", Shots(-1), Shots(1), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestQuantityPredicates(t *testing.T) {
	tests := []struct {
		name       string
		qty        Quantity
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", Shots(0), true, false, false},
		{"Positive", Shots(2), false, true, false},
		{"Negative", Shots(-2), false, false, true},
		{"Fractional", Of(0.5, "kg"), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.qty.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.qty.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.qty.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		qty      Quantity
		expected string
	}{
		{Shots(2), "2 shot"},
		{Of(1.5, "liter"), "1.5 liter"},
		{Of(0.125, "kg"), "0.125 kg"},
		{Of(-2, "cup"), "-2 cup"},
		{Of(10, "unit"), "10 unit"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.qty.String(); got != tt.expected {
				t.Errorf("String: got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestQuantityJSON(t *testing.T) {
	q := Shots(2)

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// Check JSON structure
	expected := `{"amount":2,"unit":"shot","display":"2 shot"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}

	// Unmarshal and verify
	var result struct {
		Amount  float64 `json:"amount"`
		Unit    string  `json:"unit"`
		Display string  `json:"display"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if result.Amount != 2 || result.Unit != "shot" || result.Display != "2 shot" {
		t.Errorf("Unmarshaled data incorrect: %+v", result)
	}
}

func TestSumQuantities(t *testing.T) {
	tests := []struct {
		name     string
		values   []Quantity
		expected Quantity
	}{
		{"Empty", []Quantity{}, Quantity{}},
		{"Single", []Quantity{Shots(2)}, Shots(2)},
		{"Multiple", []Quantity{Shots(1), Shots(2), Shots(3)}, Shots(6)},
		{"With negatives", []Quantity{Shots(3), Shots(-1), Shots(2)}, Shots(4)},
		{"All zero", []Quantity{Shots(0), Shots(0)}, Shots(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SumQuantities(tt.values...)
			if !result.Equal(tt.expected) {
				t.Errorf("SumQuantities: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func BenchmarkQuantityAdd(b *testing.B) {
	q1 := Shots(1)
	q2 := Shots(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = q1.Add(q2)
	}
}

func BenchmarkQuantityJSON(b *testing.B) {
	q := Shots(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(q)
	}
}
