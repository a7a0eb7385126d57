package tally_test

import (
	"context"
	"testing"

	"github.com/xraph/tally"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/transaction"
)

func TestLowStock(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	stock := func(name string, par, reorder, level float64) *item.Item {
		i := &item.Item{Name: name, Category: "food", Unit: "unit", ParLevel: par, ReorderPoint: reorder}
		if err := eng.CreateItem(ctx, i); err != nil {
			t.Fatal(err)
		}
		if level > 0 {
			record(t, eng, i.ID, transaction.TypeDelivery, level, day(1, 9))
		}
		return i
	}

	stock("flour", 100, 20, 5)   // critical: at or below half the reorder point
	stock("sugar", 50, 20, 15)   // warning
	stock("coffee", 100, 20, 80) // healthy

	alerts, err := eng.LowStock(ctx, day(1, 23))
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}

	if alerts[0].Item.Name != "flour" || alerts[0].Severity != tally.SeverityCritical {
		t.Errorf("expected flour critical first, got %s %s", alerts[0].Item.Name, alerts[0].Severity)
	}
	if alerts[0].SuggestedOrder != 95 {
		t.Errorf("expected suggested order 95, got %v", alerts[0].SuggestedOrder)
	}
	if alerts[1].Item.Name != "sugar" || alerts[1].Severity != tally.SeverityWarning {
		t.Errorf("expected sugar warning second, got %s %s", alerts[1].Item.Name, alerts[1].Severity)
	}
}

func TestUsageStats(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")
	record(t, eng, beans.ID, transaction.TypeDelivery, 100, day(1, 8))
	record(t, eng, beans.ID, transaction.TypeUsage, 10, day(1, 12))
	record(t, eng, beans.ID, transaction.TypeUsage, 20, day(2, 12))
	record(t, eng, beans.ID, transaction.TypeWaste, 10, day(3, 12))
	record(t, eng, beans.ID, transaction.TypeUsage, 99, day(5, 12)) // outside range

	stats, err := eng.UsageStats(ctx, beans.ID, day(1, 0), day(3, 23))
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalUsage != 30 {
		t.Errorf("expected usage 30, got %v", stats.TotalUsage)
	}
	if stats.TotalWaste != 10 {
		t.Errorf("expected waste 10, got %v", stats.TotalWaste)
	}
	if stats.Days != 3 {
		t.Errorf("expected 3 days, got %d", stats.Days)
	}
	if stats.AverageDailyUsage != 10 {
		t.Errorf("expected average 10, got %v", stats.AverageDailyUsage)
	}
	if stats.WasteRatio != 0.25 {
		t.Errorf("expected waste ratio 0.25, got %v", stats.WasteRatio)
	}
}

func TestRecordDeliveryUpdatesCost(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")

	cost := 1.75
	tx, err := eng.RecordDelivery(ctx, beans.ID, 40, &cost, "alice", "weekly order")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Type != transaction.TypeDelivery || tx.Quantity != 40 {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	updated, err := eng.GetItem(ctx, beans.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CostPerUnit != 1.75 {
		t.Errorf("expected cost 1.75, got %v", updated.CostPerUnit)
	}

	// No cost supplied leaves the item's cost alone.
	if _, err := eng.RecordDelivery(ctx, beans.ID, 10, nil, "alice", ""); err != nil {
		t.Fatal(err)
	}
	updated, err = eng.GetItem(ctx, beans.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CostPerUnit != 1.75 {
		t.Errorf("expected cost unchanged, got %v", updated.CostPerUnit)
	}
}
