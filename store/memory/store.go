// Package memory provides an in-memory Store for tests and ephemeral use.
package memory

import (
	"context"
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

type Store struct {
	mu sync.RWMutex

	// Item storage
	items map[string]*item.Item

	// Category storage
	categories map[string]*category.Category

	// Supplier storage
	suppliers map[string]*supplier.Supplier

	// Transaction log, append order preserved
	transactions []*transaction.Transaction

	// Backups of purged transaction rows, keyed by purge time
	txnBackups map[time.Time][]*transaction.Transaction

	// Snapshot storage keyed by date; one canonical snapshot per date
	snapshots map[string]*snapshot.Snapshot
}

func New() *Store {
	return &Store{
		items:        make(map[string]*item.Item),
		categories:   make(map[string]*category.Category),
		suppliers:    make(map[string]*supplier.Supplier),
		transactions: make([]*transaction.Transaction, 0),
		txnBackups:   make(map[time.Time][]*transaction.Transaction),
		snapshots:    make(map[string]*snapshot.Snapshot),
	}
}

// Item Store implementation
func (s *Store) CreateItem(_ context.Context, i *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[i.ID.String()]; exists {
		return tally.ErrDuplicateItem
	}
	s.items[i.ID.String()] = i
	return nil
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
	return nil
}

func (s *Store) DeleteItem(_ context.Context, itemID id.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, itemID.String())
	return nil
}

// Category Store implementation
func (s *Store) CreateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.ID.String()]; exists {
		return tally.ErrAlreadyExists
	}
	s.categories[c.ID.String()] = c
	return nil
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
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, catID id.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories, catID.String())
	return nil
}

// Supplier Store implementation
func (s *Store) CreateSupplier(_ context.Context, sup *supplier.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[sup.ID.String()]; exists {
		return tally.ErrAlreadyExists
	}
	s.suppliers[sup.ID.String()] = sup
	return nil
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
	return nil
}

func (s *Store) DeleteSupplier(_ context.Context, supID id.SupplierID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.suppliers, supID.String())
	return nil
}

// Transaction Store implementation
func (s *Store) AppendTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	return nil
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
	purged := make([]*transaction.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.Source == source && purgeType[tx.Type] &&
			!tx.Timestamp.Before(dayStart) && tx.Timestamp.Before(dayEnd) {
			purged = append(purged, tx)
			continue
		}
		kept = append(kept, tx)
	}

	if len(purged) > 0 {
		s.txnBackups[time.Now()] = purged
	}

	s.transactions = append(kept, txns...)
	return len(purged), nil
}

// Backups returns retained purge backups, newest first.
func (s *Store) Backups() [][]*transaction.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stamps := make([]time.Time, 0, len(s.txnBackups))
	for ts := range s.txnBackups {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(a, b int) bool { return stamps[a].After(stamps[b]) })

	result := make([][]*transaction.Transaction, 0, len(stamps))
	for _, ts := range stamps {
		result = append(result, s.txnBackups[ts])
	}
	return result
}

// Snapshot Store implementation
func (s *Store) PutSnapshot(_ context.Context, snap *snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same-date snapshots supersede: last write wins.
	s.snapshots[snap.Date] = snap
	return nil
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
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions
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
