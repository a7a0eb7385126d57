package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	tallystore "github.com/xraph/tally/store"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
)

// compile-time interface check
var _ tallystore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tally/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tally/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetItem(ctx context.Context, itemID id.ItemID) (*item.Item, error) {
	m := new(itemModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", itemID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrItemNotFound
		}
		return nil, err
	}
	return fromItemModel(m)
}

func (s *Store) GetItemByStandardizedName(ctx context.Context, name string) (*item.Item, error) {
	m := new(itemModel)
	err := s.pg.NewSelect(m).
		Where("standardized_name = $1", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrItemNotFound
		}
		return nil, err
	}
	return fromItemModel(m)
}

func (s *Store) ListItems(ctx context.Context, opts item.ListOpts) ([]*item.Item, error) {
	var models []itemModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.Category != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("category = $%d", argIdx), opts.Category)
	}
	if !opts.Supplier.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("supplier_id = $%d", argIdx), opts.Supplier.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("name ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tally.ErrItemNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	_, err := s.pg.NewDelete((*itemModel)(nil)).
		Where("id = $1", itemID.String()).
		Exec(ctx)
	return err
}

// ==================== Category Store ====================

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	m := toCategoryModel(c)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCategory(ctx context.Context, catID id.CategoryID) (*category.Category, error) {
	m := new(categoryModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", catID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrCategoryNotFound
		}
		return nil, err
	}
	return fromCategoryModel(m)
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*category.Category, error) {
	m := new(categoryModel)
	err := s.pg.NewSelect(m).
		Where("name = $1", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrCategoryNotFound
		}
		return nil, err
	}
	return fromCategoryModel(m)
}

func (s *Store) ListCategories(ctx context.Context) ([]*category.Category, error) {
	var models []categoryModel
	err := s.pg.NewSelect(&models).
		OrderExpr("display_order ASC, name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tally.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, catID id.CategoryID) error {
	_, err := s.pg.NewDelete((*categoryModel)(nil)).
		Where("id = $1", catID.String()).
		Exec(ctx)
	return err
}

// ==================== Supplier Store ====================

func (s *Store) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	m := toSupplierModel(sup)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSupplier(ctx context.Context, supID id.SupplierID) (*supplier.Supplier, error) {
	m := new(supplierModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", supID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrSupplierNotFound
		}
		return nil, err
	}
	return fromSupplierModel(m)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]*supplier.Supplier, error) {
	var models []supplierModel
	err := s.pg.NewSelect(&models).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tally.ErrSupplierNotFound
	}
	return nil
}

func (s *Store) DeleteSupplier(ctx context.Context, supID id.SupplierID) error {
	_, err := s.pg.NewDelete((*supplierModel)(nil)).
		Where("id = $1", supID.String()).
		Exec(ctx)
	return err
}

// ==================== Transaction Store ====================

func (s *Store) AppendTransaction(ctx context.Context, tx *transaction.Transaction) error {
	m := toTransactionModel(tx)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTransaction(ctx context.Context, txID id.TransactionID) (*transaction.Transaction, error) {
	m := new(transactionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", txID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrTransactionNotFound
		}
		return nil, err
	}
	return fromTransactionModel(m)
}

func (s *Store) QueryTransactions(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	var models []transactionModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if !f.ItemID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("item_id = $%d", argIdx), f.ItemID.String())
	}
	if len(f.Types) > 0 {
		q = q.Where(typeInClause(argIdx, f.Types), typeArgs(f.Types)...)
		argIdx += len(f.Types)
	}
	if f.Source != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("source = $%d", argIdx), f.Source)
	}
	if !f.From.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("timestamp > $%d", argIdx), f.From)
	}
	if !f.To.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("timestamp <= $%d", argIdx), f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	q = q.OrderExpr("timestamp ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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

	var purged []transactionModel
	err := s.pg.NewSelect(&purged).
		Where("source = $1", source).
		Where(typeInClause(1, types), typeArgs(types)...).
		Where(fmt.Sprintf("timestamp >= $%d", len(types)+2), dayStart).
		Where(fmt.Sprintf("timestamp < $%d", len(types)+3), dayEnd).
		Scan(ctx)
	if err != nil {
		return 0, err
	}

	if len(purged) > 0 {
		purgedAt := now()
		backups := make([]transactionBackupModel, len(purged))
		for i := range purged {
			backups[i] = *toBackupModel(&purged[i], purgedAt)
		}
		if _, err := s.pg.NewInsert(&backups).Exec(ctx); err != nil {
			return 0, fmt.Errorf("tally/postgres: retain purged usage: %w", err)
		}

		_, err = s.pg.NewDelete((*transactionModel)(nil)).
			Where("source = $1", source).
			Where(typeInClause(1, types), typeArgs(types)...).
			Where(fmt.Sprintf("timestamp >= $%d", len(types)+2), dayStart).
			Where(fmt.Sprintf("timestamp < $%d", len(types)+3), dayEnd).
			Exec(ctx)
		if err != nil {
			return 0, err
		}
	}

	if len(txns) > 0 {
		models := make([]transactionModel, len(txns))
		for i, tx := range txns {
			models[i] = *toTransactionModel(tx)
		}
		if _, err := s.pg.NewInsert(&models).Exec(ctx); err != nil {
			return 0, err
		}
	}

	return len(purged), nil
}

// ==================== Snapshot Store ====================

func (s *Store) PutSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	// One canonical snapshot per date: purge any predecessor first.
	_, err := s.pg.NewDelete((*snapshotModel)(nil)).
		Where("date = $1", snap.Date).
		Exec(ctx)
	if err != nil {
		return err
	}

	m := toSnapshotModel(snap)
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSnapshot(ctx context.Context, snapID id.SnapshotID) (*snapshot.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", snapID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, err
	}
	return fromSnapshotModel(m)
}

func (s *Store) GetSnapshotForDate(ctx context.Context, date string) (*snapshot.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		Where("date = $1", date).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, err
	}
	return fromSnapshotModel(m)
}

func (s *Store) LatestSnapshotOnOrBefore(ctx context.Context, date string) (*snapshot.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		Where("date <= $1", date).
		OrderExpr("date DESC, created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tally.ErrSnapshotNotFound
		}
		return nil, err
	}
	return fromSnapshotModel(m)
}

func (s *Store) ListSnapshots(ctx context.Context, limit, offset int) ([]*snapshot.Snapshot, error) {
	var models []snapshotModel
	q := s.pg.NewSelect(&models).OrderExpr("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
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

// typeInClause builds a "type IN ($n, ...)" clause with placeholders
// numbered from after the given offset.
func typeInClause(offset int, types []transaction.Type) string {
	placeholders := make([]string, len(types))
	for i := range types {
		placeholders[i] = fmt.Sprintf("$%d", offset+i+1)
	}
	return "type IN (" + strings.Join(placeholders, ", ") + ")"
}

func typeArgs(types []transaction.Type) []any {
	args := make([]any, len(types))
	for i, t := range types {
		args[i] = string(t)
	}
	return args
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
