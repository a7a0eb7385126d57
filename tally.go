package tally

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xraph/tally/catalog"
	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/pos"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
	"github.com/xraph/tally/types"
)

// internalSupplierName is the supplier assigned to auto-provisioned items.
const internalSupplierName = "Internal"

// Tally is the main stock ledger engine.
type Tally struct {
	store   store.Store
	catalog *catalog.Catalog
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   func() time.Time
}

// New creates a new Tally instance.
func New(s store.Store, opts ...Option) *Tally {
	t := &Tally{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default().With("component", "tally"),
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Option configures a Tally instance.
type Option func(*Tally)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tally) {
		t.logger = logger
		t.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(t *Tally) {
		_ = t.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCatalog sets the POS mapping catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(t *Tally) {
		t.catalog = c
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tally) {
		t.clock = clock
	}
}

// Catalog returns the configured mapping catalog, or nil.
func (t *Tally) Catalog() *catalog.Catalog { return t.catalog }

// Start migrates the store and initializes plugins.
func (t *Tally) Start(ctx context.Context) error {
	if err := t.store.Migrate(ctx); err != nil {
		return err
	}

	t.plugins.EmitInit(ctx, t)

	t.logger.Info("tally started",
		"catalog_loaded", t.catalog != nil,
		"plugins", t.plugins.Count(),
	)

	return nil
}

// Stop shuts down the engine.
func (t *Tally) Stop(ctx context.Context) error {
	t.plugins.EmitShutdown(ctx)
	return t.store.Close()
}

// ──────────────────────────────────────────────────
// Item Management
// ──────────────────────────────────────────────────

// CreateItem creates a new stock item.
func (t *Tally) CreateItem(ctx context.Context, i *item.Item) error {
	if err := validateItem(i); err != nil {
		return err
	}

	if i.ID.IsNil() {
		i.ID = id.NewItemID()
	}
	i.Entity = types.NewEntity()

	if err := t.store.CreateItem(ctx, i); err != nil {
		return err
	}

	t.plugins.EmitItemCreated(ctx, i)
	return nil
}

// GetItem retrieves an item by ID.
func (t *Tally) GetItem(ctx context.Context, itemID id.ItemID) (*item.Item, error) {
	return t.store.GetItem(ctx, itemID)
}

// ListItems lists items, optionally filtered.
func (t *Tally) ListItems(ctx context.Context, opts item.ListOpts) ([]*item.Item, error) {
	return t.store.ListItems(ctx, opts)
}

// UpdateItem updates an existing item.
func (t *Tally) UpdateItem(ctx context.Context, i *item.Item) error {
	if err := validateItem(i); err != nil {
		return err
	}

	old, err := t.store.GetItem(ctx, i.ID)
	if err != nil {
		return err
	}

	i.CreatedAt = old.CreatedAt
	i.Touch()

	if err := t.store.UpdateItem(ctx, i); err != nil {
		return err
	}

	t.plugins.EmitItemUpdated(ctx, old, i)
	return nil
}

// DeleteItem deletes an item. Items with recorded transactions are retained.
func (t *Tally) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	txns, err := t.store.QueryTransactions(ctx, transaction.Filter{ItemID: itemID, Limit: 1})
	if err != nil {
		return err
	}
	if len(txns) > 0 {
		return ErrItemInUse
	}

	if err := t.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	t.plugins.EmitItemDeleted(ctx, itemID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Category Management
// ──────────────────────────────────────────────────

// CreateCategory creates a new category.
func (t *Tally) CreateCategory(ctx context.Context, c *category.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}

	if c.ID.IsNil() {
		c.ID = id.NewCategoryID()
	}
	c.Entity = types.NewEntity()

	return t.store.CreateCategory(ctx, c)
}

// GetCategory retrieves a category by ID.
func (t *Tally) GetCategory(ctx context.Context, catID id.CategoryID) (*category.Category, error) {
	return t.store.GetCategory(ctx, catID)
}

// ListCategories lists all categories in display order.
func (t *Tally) ListCategories(ctx context.Context) ([]*category.Category, error) {
	return t.store.ListCategories(ctx)
}

// UpdateCategory updates an existing category.
func (t *Tally) UpdateCategory(ctx context.Context, c *category.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	c.Touch()
	return t.store.UpdateCategory(ctx, c)
}

// DeleteCategory deletes a category.
func (t *Tally) DeleteCategory(ctx context.Context, catID id.CategoryID) error {
	return t.store.DeleteCategory(ctx, catID)
}

// ──────────────────────────────────────────────────
// Supplier Management
// ──────────────────────────────────────────────────

// CreateSupplier creates a new supplier.
func (t *Tally) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	if err := validateSupplier(sup); err != nil {
		return err
	}

	if sup.ID.IsNil() {
		sup.ID = id.NewSupplierID()
	}
	sup.Entity = types.NewEntity()

	return t.store.CreateSupplier(ctx, sup)
}

// GetSupplier retrieves a supplier by ID.
func (t *Tally) GetSupplier(ctx context.Context, supID id.SupplierID) (*supplier.Supplier, error) {
	return t.store.GetSupplier(ctx, supID)
}

// ListSuppliers lists all suppliers.
func (t *Tally) ListSuppliers(ctx context.Context) ([]*supplier.Supplier, error) {
	return t.store.ListSuppliers(ctx)
}

// UpdateSupplier updates an existing supplier.
func (t *Tally) UpdateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	if err := validateSupplier(sup); err != nil {
		return err
	}
	sup.Touch()
	return t.store.UpdateSupplier(ctx, sup)
}

// DeleteSupplier deletes a supplier.
func (t *Tally) DeleteSupplier(ctx context.Context, supID id.SupplierID) error {
	return t.store.DeleteSupplier(ctx, supID)
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

// RecordTransaction validates and appends a stock transaction.
func (t *Tally) RecordTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if errs := tx.Validate(); len(errs) > 0 {
		return fieldErrors(errs)
	}

	if _, err := t.store.GetItem(ctx, tx.ItemID); err != nil {
		return err
	}

	if tx.ID.IsNil() {
		tx.ID = id.NewTransactionID()
	}
	tx.Entity = types.NewEntity()
	if tx.Timestamp.IsZero() {
		tx.Timestamp = t.clock()
	}

	if err := t.store.AppendTransaction(ctx, tx); err != nil {
		return err
	}

	t.plugins.EmitTransactionRecorded(ctx, tx)
	if tx.Type == transaction.TypeDelivery {
		t.plugins.EmitDeliveryRecorded(ctx, tx)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (t *Tally) GetTransaction(ctx context.Context, txID id.TransactionID) (*transaction.Transaction, error) {
	return t.store.GetTransaction(ctx, txID)
}

// QueryTransactions returns transactions matching the filter.
func (t *Tally) QueryTransactions(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	return t.store.QueryTransactions(ctx, f)
}

// ──────────────────────────────────────────────────
// Snapshots
// ──────────────────────────────────────────────────

// CreateSnapshot records a physical count. When no levels are supplied the
// current computed levels for the snapshot date are captured instead.
func (t *Tally) CreateSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap.Date == "" {
		snap.Date = t.clock().Format(snapshot.DateLayout)
	}
	day, err := time.ParseInLocation(snapshot.DateLayout, snap.Date, time.Local)
	if err != nil {
		return fmt.Errorf("tally: snapshot date %q: %w", snap.Date, ErrInvalidInput)
	}

	if snap.Levels == nil {
		endOfDay := day.Add(24*time.Hour - time.Nanosecond)
		levels, err := t.Levels(ctx, endOfDay)
		if err != nil {
			return err
		}
		snap.Levels = levels
	}
	if len(snap.Levels) == 0 {
		return ErrSnapshotEmpty
	}

	if snap.ID.IsNil() {
		snap.ID = id.NewSnapshotID()
	}
	snap.Entity = types.NewEntity()

	if err := t.store.PutSnapshot(ctx, snap); err != nil {
		return err
	}

	t.plugins.EmitSnapshotCreated(ctx, snap)
	return nil
}

// GetSnapshot retrieves a snapshot by ID.
func (t *Tally) GetSnapshot(ctx context.Context, snapID id.SnapshotID) (*snapshot.Snapshot, error) {
	return t.store.GetSnapshot(ctx, snapID)
}

// GetSnapshotForDate retrieves the snapshot for an exact date.
func (t *Tally) GetSnapshotForDate(ctx context.Context, date string) (*snapshot.Snapshot, error) {
	return t.store.GetSnapshotForDate(ctx, date)
}

// ListSnapshots lists snapshots, newest first.
func (t *Tally) ListSnapshots(ctx context.Context, limit, offset int) ([]*snapshot.Snapshot, error) {
	return t.store.ListSnapshots(ctx, limit, offset)
}

// ──────────────────────────────────────────────────
// POS Extract Processing
// ──────────────────────────────────────────────────

// ProcessExtract loads a POS extract, resolves it against the catalog, and
// commits the resulting usage for the given business date.
func (t *Tally) ProcessExtract(ctx context.Context, itemsCSV, modifiersCSV io.Reader, date time.Time, source string) (*CommitReport, error) {
	if t.catalog == nil {
		return nil, ErrCatalogRequired
	}

	ext, err := pos.LoadExtract(itemsCSV, modifiersCSV)
	if err != nil {
		return nil, err
	}

	resolver := pos.NewResolver(t.catalog, pos.WithLogger(t.logger))
	res := resolver.Resolve(ext, date.Format(snapshot.DateLayout))
	t.plugins.EmitUsageResolved(ctx, res)

	return t.CommitUsage(ctx, res, source)
}

// ──────────────────────────────────────────────────
// Defaults
// ──────────────────────────────────────────────────

// SeedDefaults installs the default categories and the internal supplier.
// It is idempotent: existing entries are left untouched.
func (t *Tally) SeedDefaults(ctx context.Context) error {
	defaults := []category.Category{
		{Name: "espresso beans", DefaultUnit: "shot", DisplayOrder: 1},
		{Name: "milk & dairy", DefaultUnit: "unit", RequiresRefrigeration: true, DefaultShelfLifeDays: 7, DisplayOrder: 2},
		{Name: "syrups & flavorings", DefaultUnit: "unit", DisplayOrder: 3},
		{Name: "cups & lids", DefaultUnit: "cup", DisplayOrder: 4},
		{Name: "food", DefaultUnit: "unit", RequiresRefrigeration: true, DefaultShelfLifeDays: 3, DisplayOrder: 5},
		{Name: "cleaning", DefaultUnit: "unit", DisplayOrder: 6},
		{Name: "other", DefaultUnit: "unit", DisplayOrder: 7},
	}

	for i := range defaults {
		c := defaults[i]
		if _, err := t.store.GetCategoryByName(ctx, c.Name); err == nil {
			continue
		} else if !IsNotFound(err) {
			return err
		}
		c.ID = id.NewCategoryID()
		c.Entity = types.NewEntity()
		if err := t.store.CreateCategory(ctx, &c); err != nil {
			return err
		}
	}

	suppliers, err := t.store.ListSuppliers(ctx)
	if err != nil {
		return err
	}
	for _, sup := range suppliers {
		if sup.Name == internalSupplierName {
			return nil
		}
	}

	internal := &supplier.Supplier{
		Entity: types.NewEntity(),
		ID:     id.NewSupplierID(),
		Name:   internalSupplierName,
		Notes:  "Placeholder supplier for auto-provisioned items",
	}
	return t.store.CreateSupplier(ctx, internal)
}

// ──────────────────────────────────────────────────
// Validation helpers
// ──────────────────────────────────────────────────

func validateItem(i *item.Item) error {
	if errs := i.Validate(); len(errs) > 0 {
		return itemFieldErrors(errs)
	}
	return nil
}

func validateCategory(c *category.Category) error {
	if errs := c.Validate(); len(errs) > 0 {
		return categoryFieldErrors(errs)
	}
	return nil
}

func validateSupplier(sup *supplier.Supplier) error {
	if errs := sup.Validate(); len(errs) > 0 {
		return supplierFieldErrors(errs)
	}
	return nil
}

func itemFieldErrors(errs []item.FieldError) error {
	merr := &MultiError{}
	for _, e := range errs {
		merr.Add(&ValidationError{Field: e.Field, Message: e.Message})
	}
	return merr
}

func categoryFieldErrors(errs []category.FieldError) error {
	merr := &MultiError{}
	for _, e := range errs {
		merr.Add(&ValidationError{Field: e.Field, Message: e.Message})
	}
	return merr
}

func supplierFieldErrors(errs []supplier.FieldError) error {
	merr := &MultiError{}
	for _, e := range errs {
		merr.Add(&ValidationError{Field: e.Field, Message: e.Message})
	}
	return merr
}

func fieldErrors(errs []transaction.FieldError) error {
	merr := &MultiError{}
	for _, e := range errs {
		merr.Add(&ValidationError{Field: e.Field, Message: e.Message})
	}
	return merr
}
