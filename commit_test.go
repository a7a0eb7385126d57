package tally_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/catalog"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/pos"
	"github.com/xraph/tally/transaction"
)

func usageResult(date string, comps map[string]pos.ComponentUsage) *pos.Result {
	return &pos.Result{Success: true, Date: date, Components: comps}
}

func TestCommitUsageWritesDailyBatch(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := &item.Item{
		Name:             "Barocco Beans",
		Category:         "espresso beans",
		Unit:             "shot",
		ParLevel:         500,
		ReorderPoint:     120,
		StandardizedName: "espresso_barocco",
	}
	if err := eng.CreateItem(ctx, beans); err != nil {
		t.Fatal(err)
	}

	report, err := eng.CommitUsage(ctx, usageResult("2026-03-03", map[string]pos.ComponentUsage{
		"espresso_barocco": tally.Shots(4),
	}), "")
	if err != nil {
		t.Fatal(err)
	}
	if report.Committed != 1 || report.Replaced != 0 {
		t.Fatalf("expected 1 committed, 0 replaced, got %+v", report)
	}

	txns, err := eng.QueryTransactions(ctx, transaction.Filter{ItemID: beans.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}

	tx := txns[0]
	if tx.Type != transaction.TypeUsage {
		t.Errorf("expected usage type, got %s", tx.Type)
	}
	if tx.Quantity != 4 {
		t.Errorf("expected quantity 4, got %v", tx.Quantity)
	}
	if tx.User != "pos_automation" {
		t.Errorf("expected user pos_automation, got %q", tx.User)
	}
	if tx.Source != "pos_import" {
		t.Errorf("expected default source pos_import, got %q", tx.Source)
	}
	want := time.Date(2026, 3, 3, 23, 59, 0, 0, time.Local)
	if !tx.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, tx.Timestamp)
	}
	if tx.Notes != "POS daily usage: espresso_barocco" {
		t.Errorf("unexpected notes %q", tx.Notes)
	}
}

func TestCommitUsageIdempotent(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")
	// A manual correction on the same day must survive re-imports.
	record(t, eng, beans.ID, transaction.TypeWaste, 2, day(3, 14))

	res := usageResult("2026-03-03", map[string]pos.ComponentUsage{
		beans.ID.String(): tally.Units(10),
	})

	report, err := eng.CommitUsage(ctx, res, "pos_import")
	if err != nil {
		t.Fatal(err)
	}
	if report.Replaced != 0 {
		t.Fatalf("first commit replaced %d", report.Replaced)
	}

	// Re-running the day with a corrected quantity replaces, not appends.
	res.Components[beans.ID.String()] = tally.Units(7)
	report, err = eng.CommitUsage(ctx, res, "pos_import")
	if err != nil {
		t.Fatal(err)
	}
	if report.Committed != 1 || report.Replaced != 1 {
		t.Fatalf("expected 1 committed, 1 replaced, got %+v", report)
	}

	txns, err := eng.QueryTransactions(ctx, transaction.Filter{ItemID: beans.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected waste plus one usage row, got %d", len(txns))
	}

	level, err := eng.ItemLevel(ctx, beans.ID, day(4, 0))
	if err != nil {
		t.Fatal(err)
	}
	// 0 - 2 waste - 7 usage, clamped.
	if level != 0 {
		t.Fatalf("expected 0, got %v", level)
	}
}

func TestCommitUsageProvisionsUnknownComponents(t *testing.T) {
	cat, err := catalog.Parse([]byte(docsCatalog))
	if err != nil {
		t.Fatal(err)
	}
	eng := newEngine(t, tally.WithCatalog(cat))
	ctx := context.Background()

	if err := eng.SeedDefaults(ctx); err != nil {
		t.Fatal(err)
	}

	report, err := eng.CommitUsage(ctx, usageResult("2026-03-03", map[string]pos.ComponentUsage{
		"cups_hot_12oz": tally.Cups(3),
		"mystery_thing": tally.Of(1, ""),
	}), "pos_import")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Provisioned) != 2 {
		t.Fatalf("expected 2 provisioned items, got %v", report.Provisioned)
	}

	items, err := eng.ListItems(ctx, item.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	byKey := make(map[string]*item.Item)
	for _, i := range items {
		byKey[i.StandardizedName] = i
	}

	// Known to the catalog: display name, base unit and group carry over.
	cup := byKey["cups_hot_12oz"]
	if cup == nil {
		t.Fatal("cup item was not provisioned")
	}
	if cup.Name != "12oz Hot Cup" || cup.Unit != "cup" || cup.Category != "cups" {
		t.Errorf("unexpected cup item: %+v", cup)
	}
	if cup.ParLevel != 0 || cup.ReorderPoint != 0 || cup.CostPerUnit != 0 {
		t.Errorf("provisioned item should have zero thresholds: %+v", cup)
	}
	if cup.Notes != "Auto-created by POS usage processor" {
		t.Errorf("unexpected notes %q", cup.Notes)
	}

	// The internal supplier is assigned when seeded.
	suppliers, err := eng.ListSuppliers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var internalID string
	for _, sup := range suppliers {
		if sup.Name == "Internal" {
			internalID = sup.ID.String()
		}
	}
	if internalID == "" {
		t.Fatal("internal supplier missing after SeedDefaults")
	}
	if cup.SupplierID.String() != internalID {
		t.Errorf("expected internal supplier, got %s", cup.SupplierID)
	}

	// Unknown to the catalog: key becomes the name, category falls back.
	mystery := byKey["mystery_thing"]
	if mystery == nil {
		t.Fatal("mystery item was not provisioned")
	}
	if mystery.Name != "mystery_thing" || mystery.Category != "supplies" || mystery.Unit != "unit" {
		t.Errorf("unexpected fallback item: %+v", mystery)
	}

	// A second commit reuses the provisioned items.
	report, err = eng.CommitUsage(ctx, usageResult("2026-03-04", map[string]pos.ComponentUsage{
		"cups_hot_12oz": tally.Cups(2),
	}), "pos_import")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Provisioned) != 0 {
		t.Fatalf("expected no new provisioning, got %v", report.Provisioned)
	}
}

func TestCommitUsageSkipsNonPositiveQuantities(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")

	report, err := eng.CommitUsage(ctx, usageResult("2026-03-03", map[string]pos.ComponentUsage{
		beans.ID.String(): tally.ZeroOf("unit"),
	}), "pos_import")
	if err != nil {
		t.Fatal(err)
	}
	if report.Committed != 0 {
		t.Fatalf("expected nothing committed, got %d", report.Committed)
	}
}

func TestCommitUsageRequiresDatedResult(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	if _, err := eng.CommitUsage(ctx, nil, ""); !errors.Is(err, tally.ErrInvalidInput) {
		t.Fatalf("expected invalid input for nil result, got %v", err)
	}
	if _, err := eng.CommitUsage(ctx, usageResult("", nil), ""); !errors.Is(err, tally.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing date, got %v", err)
	}
	if _, err := eng.CommitUsage(ctx, usageResult("03/03/2026", nil), ""); !errors.Is(err, tally.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad date, got %v", err)
	}
}
