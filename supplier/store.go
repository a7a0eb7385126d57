package supplier

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, s *Supplier) error
	Get(ctx context.Context, supID id.SupplierID) (*Supplier, error)
	List(ctx context.Context) ([]*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, supID id.SupplierID) error
}
