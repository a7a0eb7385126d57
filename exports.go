package tally

import "github.com/xraph/tally/types"

// Re-export common types for convenience so users don't have to import types package.

// Quantity is re-exported from types package.
type Quantity = types.Quantity

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Quantity constructors
var (
	Shots  = types.Shots
	Cups   = types.Cups
	Units  = types.Units
	Of     = types.Of
	ZeroOf = types.ZeroOf
	Sum    = types.SumQuantities
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
