package item

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, i *Item) error
	Get(ctx context.Context, itemID id.ItemID) (*Item, error)
	GetByStandardizedName(ctx context.Context, name string) (*Item, error)
	List(ctx context.Context, opts ListOpts) ([]*Item, error)
	Update(ctx context.Context, i *Item) error
	Delete(ctx context.Context, itemID id.ItemID) error
}

type ListOpts struct {
	Category string
	Supplier id.SupplierID
	Limit    int
	Offset   int
}
