// Package file provides a JSON-file backed Store. Each entity collection
// lives in its own document under a data directory, and destructive writes
// are preceded by a timestamped backup of the affected document.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
)

const (
	itemsFile        = "items.json"
	transactionsFile = "transactions.json"
	snapshotsFile    = "snapshots.json"
	categoriesFile   = "categories.json"
	suppliersFile    = "suppliers.json"

	backupDir = "backups"
)

type Store struct {
	mu     sync.RWMutex
	dir    string
	logger *slog.Logger

	items        map[string]*item.Item
	categories   map[string]*category.Category
	suppliers    map[string]*supplier.Supplier
	transactions []*transaction.Transaction
	snapshots    map[string]*snapshot.Snapshot

	closed bool
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens (or creates) a file store rooted at dir. Existing documents are
// loaded eagerly; a document that cannot be read or parsed degrades to an
// empty collection with a logged warning rather than failing the open.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("tally: file store requires a data directory: %w", tally.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tally: create data directory: %w", err)
	}

	s := &Store{
		dir:          dir,
		logger:       slog.Default().With("component", "tally.store.file"),
		items:        make(map[string]*item.Item),
		categories:   make(map[string]*category.Category),
		suppliers:    make(map[string]*supplier.Supplier),
		transactions: make([]*transaction.Transaction, 0),
		snapshots:    make(map[string]*snapshot.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.loadAll()
	return s, nil
}

func (s *Store) loadAll() {
	var items []*item.Item
	if s.loadDoc(itemsFile, &items) {
		for _, i := range items {
			s.items[i.ID.String()] = i
		}
	}

	var categories []*category.Category
	if s.loadDoc(categoriesFile, &categories) {
		for _, c := range categories {
			s.categories[c.ID.String()] = c
		}
	}

	var suppliers []*supplier.Supplier
	if s.loadDoc(suppliersFile, &suppliers) {
		for _, sup := range suppliers {
			s.suppliers[sup.ID.String()] = sup
		}
	}

	var txns []*transaction.Transaction
	if s.loadDoc(transactionsFile, &txns) {
		s.transactions = txns
	}

	var snaps []*snapshot.Snapshot
	if s.loadDoc(snapshotsFile, &snaps) {
		for _, snap := range snaps {
			s.snapshots[snap.Date] = snap
		}
	}
}

func (s *Store) loadDoc(name string, out any) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unreadable document, starting empty", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt document, starting empty", "file", name, "error", err)
		return false
	}
	return true
}

func (s *Store) saveDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("tally: encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("tally: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("tally: replace %s: %w", name, err)
	}
	return nil
}

// backupDoc copies the current document into backups/ with a timestamp
// suffix. Missing documents are not an error.
func (s *Store) backupDoc(name string) error {
	src := filepath.Join(s.dir, name)
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tally: read %s for backup: %w", name, err)
	}
	dir := filepath.Join(s.dir, backupDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tally: create backup directory: %w", err)
	}
	stamp := time.Now().Format("20060102_150405.000000000")
	dst := filepath.Join(dir, fmt.Sprintf("%s.%s", name, stamp))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("tally: write backup %s: %w", dst, err)
	}
	return nil
}

func (s *Store) saveItems() error {
	return s.saveDoc(itemsFile, sortedValues(s.items, func(a, b *item.Item) bool {
		return a.ID.String() < b.ID.String()
	}))
}

func (s *Store) saveCategories() error {
	return s.saveDoc(categoriesFile, sortedValues(s.categories, func(a, b *category.Category) bool {
		return a.ID.String() < b.ID.String()
	}))
}

func (s *Store) saveSuppliers() error {
	return s.saveDoc(suppliersFile, sortedValues(s.suppliers, func(a, b *supplier.Supplier) bool {
		return a.ID.String() < b.ID.String()
	}))
}

func (s *Store) saveTransactions() error {
	return s.saveDoc(transactionsFile, s.transactions)
}

func (s *Store) saveSnapshots() error {
	return s.saveDoc(snapshotsFile, sortedValues(s.snapshots, func(a, b *snapshot.Snapshot) bool {
		return a.Date < b.Date
	}))
}

// Item Store implementation
func (s *Store) CreateItem(_ context.Context, i *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[i.ID.String()]; exists {
		return tally.ErrDuplicateItem
	}
	s.items[i.ID.String()] = i
	return s.saveItems()
}

func (s *Store) GetItem(_ context.Context, itemID id.ItemID) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.items[itemID.String()]; ok {
		return i, nil
	}
	return nil, tally.ErrItemNotFound
}

func (s *Store) GetItemByStandardizedName(_ context.Context, name string) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, i := range s.items {
		if i.StandardizedName == name {
			return i, nil
		}
	}
	return nil, tally.ErrItemNotFound
}

func (s *Store) ListItems(_ context.Context, opts item.ListOpts) ([]*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*item.Item, 0)
	for _, i := range s.items {
		if opts.Category != "" && i.Category != opts.Category {
			continue
		}
		if !opts.Supplier.IsNil() && i.SupplierID.String() != opts.Supplier.String() {
			continue
		}
		result = append(result, i)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateItem(_ context.Context, i *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[i.ID.String()]; !exists {
		return tally.ErrItemNotFound
	}
	s.items[i.ID.String()] = i
	return s.saveItems()
}

func (s *Store) DeleteItem(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[itemID.String()]; !exists {
		return nil
	}
	if err := s.backupDoc(itemsFile); err != nil {
		return err
	}
	delete(s.items, itemID.String())
	return s.saveItems()
}

// Category Store implementation
func (s *Store) CreateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.ID.String()]; exists {
		return tally.ErrAlreadyExists
	}
	s.categories[c.ID.String()] = c
	return s.saveCategories()
}

func (s *Store) GetCategory(_ context.Context, catID id.CategoryID) (*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.categories[catID.String()]; ok {
		return c, nil
	}
	return nil, tally.ErrCategoryNotFound
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, tally.ErrCategoryNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*category.Category, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].DisplayOrder != result[b].DisplayOrder {
			return result[a].DisplayOrder < result[b].DisplayOrder
		}
		return result[a].Name < result[b].Name
	})
	return result, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.ID.String()]; !exists {
		return tally.ErrCategoryNotFound
	}
	s.categories[c.ID.String()] = c
	return s.saveCategories()
}

func (s *Store) DeleteCategory(_ context.Context, catID id.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[catID.String()]; !exists {
		return nil
	}
	if err := s.backupDoc(categoriesFile); err != nil {
		return err
	}
	delete(s.categories, catID.String())
	return s.saveCategories()
}

// Supplier Store implementation
func (s *Store) CreateSupplier(_ context.Context, sup *supplier.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[sup.ID.String()]; exists {
		return tally.ErrAlreadyExists
	}
	s.suppliers[sup.ID.String()] = sup
	return s.saveSuppliers()
}

func (s *Store) GetSupplier(_ context.Context, supID id.SupplierID) (*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sup, ok := s.suppliers[supID.String()]; ok {
		return sup, nil
	}
	return nil, tally.ErrSupplierNotFound
}

func (s *Store) ListSuppliers(_ context.Context) ([]*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*supplier.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		result = append(result, sup)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return result, nil
}

func (s *Store) UpdateSupplier(_ context.Context, sup *supplier.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[sup.ID.String()]; !exists {
		return tally.ErrSupplierNotFound
	}
	s.suppliers[sup.ID.String()] = sup
	return s.saveSuppliers()
}

func (s *Store) DeleteSupplier(_ context.Context, supID id.SupplierID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[supID.String()]; !exists {
		return nil
	}
	if err := s.backupDoc(suppliersFile); err != nil {
		return err
	}
	delete(s.suppliers, supID.String())
	return s.saveSuppliers()
}

// Transaction Store implementation
func (s *Store) AppendTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	return s.saveTransactions()
}

func (s *Store) GetTransaction(_ context.Context, txID id.TransactionID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.ID.String() == txID.String() {
			return tx, nil
		}
	}
	return nil, tally.ErrTransactionNotFound
}

func (s *Store) QueryTransactions(_ context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*transaction.Transaction, 0)
	for _, tx := range s.transactions {
		if f.Matches(tx) {
			result = append(result, tx)
		}
	}
	return paginate(result, f.Offset, f.Limit), nil
}

func (s *Store) ReplaceDailyUsage(_ context.Context, source string, date time.Time, types []transaction.Type, txns []*transaction.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	purgeType := make(map[transaction.Type]bool, len(types))
	for _, t := range types {
		purgeType[t] = true
	}

	kept := make([]*transaction.Transaction, 0, len(s.transactions))
	removed := 0
	for _, tx := range s.transactions {
		if tx.Source == source && purgeType[tx.Type] &&
			!tx.Timestamp.Before(dayStart) && tx.Timestamp.Before(dayEnd) {
			removed++
			continue
		}
		kept = append(kept, tx)
	}

	if removed > 0 {
		if err := s.backupDoc(transactionsFile); err != nil {
			return 0, err
		}
	}

	s.transactions = append(kept, txns...)
	if err := s.saveTransactions(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Snapshot Store implementation
func (s *Store) PutSnapshot(_ context.Context, snap *snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshots[snap.Date]; exists {
		if err := s.backupDoc(snapshotsFile); err != nil {
			return err
		}
	}
	s.snapshots[snap.Date] = snap
	return s.saveSnapshots()
}

func (s *Store) GetSnapshot(_ context.Context, snapID id.SnapshotID) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, snap := range s.snapshots {
		if snap.ID.String() == snapID.String() {
			return snap, nil
		}
	}
	return nil, tally.ErrSnapshotNotFound
}

func (s *Store) GetSnapshotForDate(_ context.Context, date string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.snapshots[date]; ok {
		return snap, nil
	}
	return nil, tally.ErrSnapshotNotFound
}

func (s *Store) LatestSnapshotOnOrBefore(_ context.Context, date string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *snapshot.Snapshot
	for _, snap := range s.snapshots {
		if snap.Date > date {
			continue
		}
		if best == nil || snap.Date > best.Date ||
			(snap.Date == best.Date && snap.CreatedAt.After(best.CreatedAt)) {
			best = snap
		}
	}
	if best == nil {
		return nil, tally.ErrSnapshotNotFound
	}
	return best, nil
}

func (s *Store) ListSnapshots(_ context.Context, limit, offset int) ([]*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*snapshot.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		result = append(result, snap)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Date > result[b].Date })
	return paginate(result, offset, limit), nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // Documents are created lazily on first write
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tally.ErrStoreClosed
	}
	_, err := os.Stat(s.dir)
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Helper functions
func sortedValues[T any](m map[string]T, less func(a, b T) bool) []T {
	result := make([]T, 0, len(m))
	for _, v := range m {
		result = append(result, v)
	}
	sort.Slice(result, func(a, b int) bool { return less(result[a], result[b]) })
	return result
}

func paginate[T any](result []T, offset, limit int) []T {
	start := offset
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
