package category

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, c *Category) error
	Get(ctx context.Context, catID id.CategoryID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, catID id.CategoryID) error
}
