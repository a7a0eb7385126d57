package store

import (
	"context"
	"time"

	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
)

// Store is the unified storage interface for all Tally entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Item methods
	CreateItem(ctx context.Context, i *item.Item) error
	GetItem(ctx context.Context, itemID id.ItemID) (*item.Item, error)
	GetItemByStandardizedName(ctx context.Context, name string) (*item.Item, error)
	ListItems(ctx context.Context, opts item.ListOpts) ([]*item.Item, error)
	UpdateItem(ctx context.Context, i *item.Item) error
	DeleteItem(ctx context.Context, itemID id.ItemID) error

	// Category methods
	CreateCategory(ctx context.Context, c *category.Category) error
	GetCategory(ctx context.Context, catID id.CategoryID) (*category.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*category.Category, error)
	ListCategories(ctx context.Context) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	DeleteCategory(ctx context.Context, catID id.CategoryID) error

	// Supplier methods
	CreateSupplier(ctx context.Context, s *supplier.Supplier) error
	GetSupplier(ctx context.Context, supID id.SupplierID) (*supplier.Supplier, error)
	ListSuppliers(ctx context.Context) ([]*supplier.Supplier, error)
	UpdateSupplier(ctx context.Context, s *supplier.Supplier) error
	DeleteSupplier(ctx context.Context, supID id.SupplierID) error

	// Transaction methods
	AppendTransaction(ctx context.Context, tx *transaction.Transaction) error
	GetTransaction(ctx context.Context, txID id.TransactionID) (*transaction.Transaction, error)
	QueryTransactions(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error)
	// ReplaceDailyUsage atomically replaces all transactions matching
	// {source, business day of date, one of types} with txns, preserving the
	// removed rows in a backup first. It returns the number of rows removed.
	ReplaceDailyUsage(ctx context.Context, source string, date time.Time, types []transaction.Type, txns []*transaction.Transaction) (int, error)

	// Snapshot methods
	PutSnapshot(ctx context.Context, s *snapshot.Snapshot) error
	GetSnapshot(ctx context.Context, snapID id.SnapshotID) (*snapshot.Snapshot, error)
	GetSnapshotForDate(ctx context.Context, date string) (*snapshot.Snapshot, error)
	LatestSnapshotOnOrBefore(ctx context.Context, date string) (*snapshot.Snapshot, error)
	ListSnapshots(ctx context.Context, limit, offset int) ([]*snapshot.Snapshot, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
