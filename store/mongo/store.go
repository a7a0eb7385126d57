package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	tallystore "github.com/xraph/tally/store"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
)

// Collection name constants.
const (
	colItems        = "tally_items"
	colTransactions = "tally_transactions"
	colTxnBackups   = "tally_txn_backups"
	colSnapshots    = "tally_snapshots"
	colCategories   = "tally_categories"
	colSuppliers    = "tally_suppliers"
)

// compile-time interface check
var _ tallystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tally collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tally/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Item Store ====================

func (s *Store) CreateItem(ctx context.Context, i *item.Item) error {
	m := toItemModel(i)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: create item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, itemID id.ItemID) (*item.Item, error) {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": itemID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrItemNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get item: %w", err)
	}
	return fromItemModel(&m)
}

func (s *Store) GetItemByStandardizedName(ctx context.Context, name string) (*item.Item, error) {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"standardized_name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrItemNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get item by standardized name: %w", err)
	}
	return fromItemModel(&m)
}

func (s *Store) ListItems(ctx context.Context, opts item.ListOpts) ([]*item.Item, error) {
	var models []itemModel

	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if !opts.Supplier.IsNil() {
		filter["supplier_id"] = opts.Supplier.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "name", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: list items: %w", err)
	}

	result := make([]*item.Item, len(models))
	for i := range models {
		it, err := fromItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = it
	}
	return result, nil
}

func (s *Store) UpdateItem(ctx context.Context, i *item.Item) error {
	m := toItemModel(i)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: update item: %w", err)
	}
	if res.MatchedCount() == 0 {
		return tally.ErrItemNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	_, err := s.mdb.NewDelete((*itemModel)(nil)).
		Filter(bson.M{"_id": itemID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: delete item: %w", err)
	}
	return nil
}

// ==================== Category Store ====================

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	m := toCategoryModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: create category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, catID id.CategoryID) (*category.Category, error) {
	var m categoryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": catID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get category: %w", err)
	}
	return fromCategoryModel(&m)
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*category.Category, error) {
	var m categoryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get category by name: %w", err)
	}
	return fromCategoryModel(&m)
}

func (s *Store) ListCategories(ctx context.Context) ([]*category.Category, error) {
	var models []categoryModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "display_order", Value: 1}, {Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally/mongo: list categories: %w", err)
	}

	result := make([]*category.Category, len(models))
	for i := range models {
		c, err := fromCategoryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	m := toCategoryModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: update category: %w", err)
	}
	if res.MatchedCount() == 0 {
		return tally.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, catID id.CategoryID) error {
	_, err := s.mdb.NewDelete((*categoryModel)(nil)).
		Filter(bson.M{"_id": catID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: delete category: %w", err)
	}
	return nil
}

// ==================== Supplier Store ====================

func (s *Store) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	m := toSupplierModel(sup)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: create supplier: %w", err)
	}
	return nil
}

func (s *Store) GetSupplier(ctx context.Context, supID id.SupplierID) (*supplier.Supplier, error) {
	var m supplierModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": supID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get supplier: %w", err)
	}
	return fromSupplierModel(&m)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]*supplier.Supplier, error) {
	var models []supplierModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally/mongo: list suppliers: %w", err)
	}

	result := make([]*supplier.Supplier, len(models))
	for i := range models {
		sup, err := fromSupplierModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sup
	}
	return result, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	m := toSupplierModel(sup)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: update supplier: %w", err)
	}
	if res.MatchedCount() == 0 {
		return tally.ErrSupplierNotFound
	}
	return nil
}

func (s *Store) DeleteSupplier(ctx context.Context, supID id.SupplierID) error {
	_, err := s.mdb.NewDelete((*supplierModel)(nil)).
		Filter(bson.M{"_id": supID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: delete supplier: %w", err)
	}
	return nil
}

// ==================== Transaction Store ====================

func (s *Store) AppendTransaction(ctx context.Context, tx *transaction.Transaction) error {
	m := toTransactionModel(tx)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: append transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, txID id.TransactionID) (*transaction.Transaction, error) {
	var m transactionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": txID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get transaction: %w", err)
	}
	return fromTransactionModel(&m)
}

func (s *Store) QueryTransactions(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	var models []transactionModel

	filter := bson.M{}
	if !f.ItemID.IsNil() {
		filter["item_id"] = f.ItemID.String()
	}
	if len(f.Types) > 0 {
		filter["type"] = bson.M{"$in": typeStrings(f.Types)}
	}
	if f.Source != "" {
		filter["source"] = f.Source
	}
	if !f.From.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$gt"] = f.From
		}
	}
	if !f.To.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$lte"] = f.To
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "timestamp", Value: 1}})

	if f.Limit > 0 {
		q = q.Limit(int64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Skip(int64(f.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: query transactions: %w", err)
	}

	result := make([]*transaction.Transaction, len(models))
	for i := range models {
		tx, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = tx
	}
	return result, nil
}

func (s *Store) ReplaceDailyUsage(ctx context.Context, source string, date time.Time, types []transaction.Type, txns []*transaction.Transaction) (int, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	dayFilter := bson.M{
		"source":    source,
		"type":      bson.M{"$in": typeStrings(types)},
		"timestamp": bson.M{"$gte": dayStart, "$lt": dayEnd},
	}

	var purged []transactionModel
	err := s.mdb.NewFind(&purged).
		Filter(dayFilter).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("tally/mongo: find daily usage: %w", err)
	}

	if len(purged) > 0 {
		purgedAt := now()
		for i := range purged {
			backup := toBackupModel(&purged[i], purgedAt)
			if _, err := s.mdb.NewInsert(backup).Exec(ctx); err != nil {
				return 0, fmt.Errorf("tally/mongo: retain purged usage: %w", err)
			}
		}

		_, err = s.mdb.NewDelete((*transactionModel)(nil)).
			Filter(dayFilter).
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("tally/mongo: purge daily usage: %w", err)
		}
	}

	for _, tx := range txns {
		m := toTransactionModel(tx)
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return 0, fmt.Errorf("tally/mongo: insert daily usage: %w", err)
		}
	}

	return len(purged), nil
}

// ==================== Snapshot Store ====================

func (s *Store) PutSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	// One canonical snapshot per date: purge any predecessor first.
	_, err := s.mdb.NewDelete((*snapshotModel)(nil)).
		Filter(bson.M{"date": snap.Date}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: replace snapshot: %w", err)
	}

	m := toSnapshotModel(snap)
	_, err = s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: put snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, snapID id.SnapshotID) (*snapshot.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": snapID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get snapshot: %w", err)
	}
	return fromSnapshotModel(&m)
}

func (s *Store) GetSnapshotForDate(ctx context.Context, date string) (*snapshot.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"date": date}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get snapshot for date: %w", err)
	}
	return fromSnapshotModel(&m)
}

func (s *Store) LatestSnapshotOnOrBefore(ctx context.Context, date string) (*snapshot.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"date": bson.M{"$lte": date}}).
		Sort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("tally/mongo: latest snapshot: %w", err)
	}
	return fromSnapshotModel(&m)
}

func (s *Store) ListSnapshots(ctx context.Context, limit, offset int) ([]*snapshot.Snapshot, error) {
	var models []snapshotModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "date", Value: -1}})

	if limit > 0 {
		q = q.Limit(int64(limit))
	}
	if offset > 0 {
		q = q.Skip(int64(offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: list snapshots: %w", err)
	}

	result := make([]*snapshot.Snapshot, len(models))
	for i := range models {
		snap, err := fromSnapshotModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = snap
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

func typeStrings(types []transaction.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tally collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colItems: {
			{
				Keys:    bson.D{{Key: "standardized_name", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"standardized_name": bson.M{"$ne": ""}}),
			},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "supplier_id", Value: 1}}},
		},
		colTransactions: {
			{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "source", Value: 1}, {Key: "type", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		},
		colTxnBackups: {
			{Keys: bson.D{{Key: "purged_at", Value: -1}}},
			{Keys: bson.D{{Key: "txn_id", Value: 1}}},
		},
		colSnapshots: {
			{
				Keys:    bson.D{{Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCategories: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colSuppliers: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	}
}
