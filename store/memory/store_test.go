package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/transaction"
	"github.com/xraph/tally/types"
)

func newItem(name, standardized string) *item.Item {
	return &item.Item{
		Entity:           types.NewEntity(),
		ID:               id.NewItemID(),
		Name:             name,
		Category:         "espresso",
		Unit:             "shot",
		ParLevel:         100,
		ReorderPoint:     25,
		StandardizedName: standardized,
	}
}

func newUsage(itemID id.ItemID, source string, ts time.Time, qty float64) *transaction.Transaction {
	return &transaction.Transaction{
		Entity:    types.NewEntity(),
		ID:        id.NewTransactionID(),
		ItemID:    itemID,
		Type:      transaction.TypeUsage,
		Quantity:  qty,
		Timestamp: ts,
		User:      "pos_automation",
		Source:    source,
	}
}

func TestItemCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	i := newItem("Barocco Beans", "espresso_barocco")
	if err := s.CreateItem(ctx, i); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := s.CreateItem(ctx, i); !errors.Is(err, tally.ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}

	got, err := s.GetItem(ctx, i.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Barocco Beans" {
		t.Errorf("unexpected item name %q", got.Name)
	}

	byName, err := s.GetItemByStandardizedName(ctx, "espresso_barocco")
	if err != nil {
		t.Fatalf("GetItemByStandardizedName: %v", err)
	}
	if byName.ID.String() != i.ID.String() {
		t.Error("standardized-name lookup returned wrong item")
	}
	if _, err := s.GetItemByStandardizedName(ctx, "espresso_missing"); !errors.Is(err, tally.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	i.ParLevel = 200
	if err := s.UpdateItem(ctx, i); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	if err := s.DeleteItem(ctx, i.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := s.GetItem(ctx, i.ID); !errors.Is(err, tally.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
	}
}

func TestListItemsFiltering(t *testing.T) {
	s := New()
	ctx := context.Background()

	espresso := newItem("Barocco Beans", "espresso_barocco")
	milk := newItem("Whole Milk", "milk_whole")
	milk.Category = "dairy"

	for _, i := range []*item.Item{espresso, milk} {
		if err := s.CreateItem(ctx, i); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	dairy, err := s.ListItems(ctx, item.ListOpts{Category: "dairy"})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(dairy) != 1 || dairy[0].Name != "Whole Milk" {
		t.Errorf("category filter returned %d items", len(dairy))
	}

	paged, err := s.ListItems(ctx, item.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListItems paged: %v", err)
	}
	if len(paged) != 1 {
		t.Errorf("expected 1 paged item, got %d", len(paged))
	}
}

func TestQueryTransactions(t *testing.T) {
	s := New()
	ctx := context.Background()

	itemID := id.NewItemID()
	day := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	usage := newUsage(itemID, "pos_import", day, 12)
	delivery := newUsage(id.NewItemID(), "manual", day.Add(-6*time.Hour), 5)
	delivery.Type = transaction.TypeDelivery

	for _, tx := range []*transaction.Transaction{usage, delivery} {
		if err := s.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction: %v", err)
		}
	}

	byItem, err := s.QueryTransactions(ctx, transaction.Filter{ItemID: itemID})
	if err != nil {
		t.Fatalf("QueryTransactions: %v", err)
	}
	if len(byItem) != 1 || byItem[0].ID.String() != usage.ID.String() {
		t.Errorf("item filter returned %d transactions", len(byItem))
	}

	byType, err := s.QueryTransactions(ctx, transaction.Filter{Types: []transaction.Type{transaction.TypeDelivery}})
	if err != nil {
		t.Fatalf("QueryTransactions by type: %v", err)
	}
	if len(byType) != 1 || byType[0].Type != transaction.TypeDelivery {
		t.Errorf("type filter returned %d transactions", len(byType))
	}

	if _, err := s.GetTransaction(ctx, id.NewTransactionID()); !errors.Is(err, tally.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestReplaceDailyUsageIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	itemID := id.NewItemID()
	day := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	// A manual transaction on the same day must survive replacement.
	manual := newUsage(itemID, "manual", day.Add(-2*time.Hour), 3)
	if err := s.AppendTransaction(ctx, manual); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	batch := func(qty float64) []*transaction.Transaction {
		return []*transaction.Transaction{newUsage(itemID, "pos_import", day, qty)}
	}
	usageOnly := []transaction.Type{transaction.TypeUsage}

	removed, err := s.ReplaceDailyUsage(ctx, "pos_import", day, usageOnly, batch(10))
	if err != nil {
		t.Fatalf("ReplaceDailyUsage: %v", err)
	}
	if removed != 0 {
		t.Errorf("first commit removed %d rows, want 0", removed)
	}

	removed, err = s.ReplaceDailyUsage(ctx, "pos_import", day, usageOnly, batch(10))
	if err != nil {
		t.Fatalf("ReplaceDailyUsage rerun: %v", err)
	}
	if removed != 1 {
		t.Errorf("rerun removed %d rows, want 1", removed)
	}

	all, err := s.QueryTransactions(ctx, transaction.Filter{})
	if err != nil {
		t.Fatalf("QueryTransactions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 transactions after rerun, got %d", len(all))
	}

	// Replaced rows are retained, not destroyed.
	backups := s.Backups()
	if len(backups) != 1 || len(backups[0]) != 1 {
		t.Errorf("expected one backup of one row, got %v", backups)
	}
}

func TestReplaceDailyUsageScopedByDay(t *testing.T) {
	s := New()
	ctx := context.Background()

	itemID := id.NewItemID()
	monday := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	if err := s.AppendTransaction(ctx, newUsage(itemID, "pos_import", monday, 4)); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	removed, err := s.ReplaceDailyUsage(ctx, "pos_import", tuesday,
		[]transaction.Type{transaction.TypeUsage},
		[]*transaction.Transaction{newUsage(itemID, "pos_import", tuesday, 6)})
	if err != nil {
		t.Fatalf("ReplaceDailyUsage: %v", err)
	}
	if removed != 0 {
		t.Errorf("tuesday commit removed %d monday rows", removed)
	}

	all, _ := s.QueryTransactions(ctx, transaction.Filter{ItemID: itemID})
	if len(all) != 2 {
		t.Errorf("expected both days retained, got %d transactions", len(all))
	}
}

func TestSnapshotSupersession(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := &snapshot.Snapshot{
		Entity:    types.NewEntity(),
		ID:        id.NewSnapshotID(),
		Date:      "2026-03-10",
		Levels:    map[string]float64{"item_x": 40},
		CreatedBy: "alice",
	}
	second := &snapshot.Snapshot{
		Entity:    types.NewEntity(),
		ID:        id.NewSnapshotID(),
		Date:      "2026-03-10",
		Levels:    map[string]float64{"item_x": 38},
		CreatedBy: "bob",
	}

	if err := s.PutSnapshot(ctx, first); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if err := s.PutSnapshot(ctx, second); err != nil {
		t.Fatalf("PutSnapshot second: %v", err)
	}

	got, err := s.GetSnapshotForDate(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("GetSnapshotForDate: %v", err)
	}
	if got.ID.String() != second.ID.String() {
		t.Error("second snapshot did not supersede the first")
	}

	list, err := s.ListSnapshots(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 snapshot for the date, got %d", len(list))
	}
}

func TestLatestSnapshotOnOrBefore(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, date := range []string{"2026-03-01", "2026-03-08", "2026-03-15"} {
		snap := &snapshot.Snapshot{
			Entity: types.NewEntity(),
			ID:     id.NewSnapshotID(),
			Date:   date,
			Levels: map[string]float64{},
		}
		if err := s.PutSnapshot(ctx, snap); err != nil {
			t.Fatalf("PutSnapshot %s: %v", date, err)
		}
	}

	tests := []struct {
		name string
		date string
		want string
	}{
		{"exact match", "2026-03-08", "2026-03-08"},
		{"between snapshots", "2026-03-10", "2026-03-08"},
		{"after all", "2026-04-01", "2026-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.LatestSnapshotOnOrBefore(ctx, tt.date)
			if err != nil {
				t.Fatalf("LatestSnapshotOnOrBefore: %v", err)
			}
			if got.Date != tt.want {
				t.Errorf("got snapshot for %s, want %s", got.Date, tt.want)
			}
		})
	}

	if _, err := s.LatestSnapshotOnOrBefore(ctx, "2026-02-01"); !errors.Is(err, tally.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}
