package tally_test

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/transaction"
)

func newEngine(t *testing.T, opts ...tally.Option) *tally.Tally {
	t.Helper()
	eng := tally.New(memory.New(), opts...)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = eng.Stop(context.Background()) })
	return eng
}

func mustCreateItem(t *testing.T, eng *tally.Tally, name string) *item.Item {
	t.Helper()
	i := &item.Item{
		Name:         name,
		Category:     "food",
		Unit:         "unit",
		ParLevel:     100,
		ReorderPoint: 20,
	}
	if err := eng.CreateItem(context.Background(), i); err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return i
}

func record(t *testing.T, eng *tally.Tally, itemID id.ItemID, typ transaction.Type, qty float64, ts time.Time) {
	t.Helper()
	err := eng.RecordTransaction(context.Background(), &transaction.Transaction{
		ItemID:    itemID,
		Type:      typ,
		Quantity:  qty,
		Timestamp: ts,
		User:      "test",
	})
	if err != nil {
		t.Fatalf("record %s %v: %v", typ, qty, err)
	}
}

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.Local)
}

func TestLevelsFullHistoryWithoutSnapshot(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")
	record(t, eng, beans.ID, transaction.TypeDelivery, 50, day(1, 9))
	record(t, eng, beans.ID, transaction.TypeUsage, 12, day(2, 12))
	record(t, eng, beans.ID, transaction.TypeWaste, 3, day(2, 18))
	record(t, eng, beans.ID, transaction.TypeAdjustment, -5, day(3, 8))

	level, err := eng.ItemLevel(ctx, beans.ID, day(3, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 30 {
		t.Fatalf("expected 30, got %v", level)
	}

	// asOf before the later transactions only replays the prefix.
	level, err = eng.ItemLevel(ctx, beans.ID, day(2, 13))
	if err != nil {
		t.Fatal(err)
	}
	if level != 38 {
		t.Fatalf("expected 38 mid-history, got %v", level)
	}

	// An item with no transactions sits at zero.
	idle := mustCreateItem(t, eng, "idle")
	level, err = eng.ItemLevel(ctx, idle.ID, day(3, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 0 {
		t.Fatalf("expected 0 for idle item, got %v", level)
	}
}

func TestLevelsSnapshotBaseline(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")
	milk := mustCreateItem(t, eng, "milk")

	// History before and on the snapshot day must not leak into replay.
	record(t, eng, beans.ID, transaction.TypeDelivery, 40, day(1, 10))
	record(t, eng, beans.ID, transaction.TypeUsage, 99, day(1, 20))

	err := eng.CreateSnapshot(ctx, &snapshot.Snapshot{
		Date:      "2026-03-01",
		Levels:    map[string]float64{beans.ID.String(): 33},
		CreatedBy: "alice",
	})
	if err != nil {
		t.Fatal(err)
	}

	record(t, eng, beans.ID, transaction.TypeUsage, 5, day(2, 12))
	record(t, eng, milk.ID, transaction.TypeDelivery, 10, day(2, 9))
	record(t, eng, milk.ID, transaction.TypeUsage, 4, day(2, 15))

	level, err := eng.ItemLevel(ctx, beans.ID, day(2, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 28 {
		t.Fatalf("expected snapshot 33 minus usage 5 = 28, got %v", level)
	}

	// Items absent from the count start at zero and still replay.
	level, err = eng.ItemLevel(ctx, milk.ID, day(2, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 6 {
		t.Fatalf("expected 6 for uncovered item, got %v", level)
	}
}

func TestLevelsOrderIndependence(t *testing.T) {
	ctx := context.Background()

	// The same transaction set recorded in different wall orders must
	// replay to the same level.
	type txn struct {
		typ transaction.Type
		qty float64
		ts  time.Time
	}
	history := []txn{
		{transaction.TypeDelivery, 20, day(2, 9)},
		{transaction.TypeUsage, 15, day(3, 10)},
		{transaction.TypeWaste, 3, day(4, 11)},
		{transaction.TypeAdjustment, 6, day(5, 12)},
		{transaction.TypeDelivery, 4, day(6, 13)},
	}
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 2, 0, 3, 1},
	}

	levels := make([]float64, len(orders))
	for n, order := range orders {
		eng := newEngine(t)
		beans := mustCreateItem(t, eng, "beans")
		for _, i := range order {
			record(t, eng, beans.ID, history[i].typ, history[i].qty, history[i].ts)
		}
		level, err := eng.ItemLevel(ctx, beans.ID, day(7, 0))
		if err != nil {
			t.Fatal(err)
		}
		levels[n] = level
	}

	// 20 - 15 - 3 + 6 + 4
	if levels[0] != 12 {
		t.Fatalf("expected 12, got %v", levels[0])
	}
	if levels[0] != levels[1] {
		t.Fatalf("recording order changed the level: %v vs %v", levels[0], levels[1])
	}
}

func TestLevelsClampIsTerminal(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")

	// Usage lands first; clamping per transaction would lose the deficit
	// and report 18 instead of 3.
	record(t, eng, beans.ID, transaction.TypeUsage, 15, day(1, 9))
	record(t, eng, beans.ID, transaction.TypeDelivery, 10, day(1, 10))
	record(t, eng, beans.ID, transaction.TypeDelivery, 8, day(1, 11))

	level, err := eng.ItemLevel(ctx, beans.ID, day(1, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 3 {
		t.Fatalf("expected 3, got %v", level)
	}

	// A net-negative history clamps to zero.
	record(t, eng, beans.ID, transaction.TypeUsage, 50, day(2, 9))
	level, err = eng.ItemLevel(ctx, beans.ID, day(2, 23))
	if err != nil {
		t.Fatal(err)
	}
	if level != 0 {
		t.Fatalf("expected clamp to 0, got %v", level)
	}
}

func TestLevelsBaselineSelection(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")

	for date, count := range map[string]float64{
		"2026-03-01": 10,
		"2026-03-05": 50,
	} {
		err := eng.CreateSnapshot(ctx, &snapshot.Snapshot{
			Date:      date,
			Levels:    map[string]float64{beans.ID.String(): count},
			CreatedBy: "alice",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		asOf time.Time
		want float64
	}{
		{"between snapshots", day(3, 12), 10},
		{"after latest", day(6, 12), 50},
		{"on snapshot day", day(5, 12), 50},
		{"before all snapshots", time.Date(2026, 2, 20, 12, 0, 0, 0, time.Local), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := eng.ItemLevel(ctx, beans.ID, tt.asOf)
			if err != nil {
				t.Fatal(err)
			}
			if level != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, level)
			}
		})
	}
}

func TestSnapshotSupersession(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")

	for _, count := range []float64{10, 99} {
		err := eng.CreateSnapshot(ctx, &snapshot.Snapshot{
			Date:      "2026-03-01",
			Levels:    map[string]float64{beans.ID.String(): count},
			CreatedBy: "bob",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	snaps, err := eng.ListSnapshots(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected one snapshot per date, got %d", len(snaps))
	}

	level, err := eng.ItemLevel(ctx, beans.ID, day(2, 12))
	if err != nil {
		t.Fatal(err)
	}
	if level != 99 {
		t.Fatalf("expected the recount to win, got %v", level)
	}
}

func TestCreateSnapshotCapturesComputedLevels(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	beans := mustCreateItem(t, eng, "beans")
	record(t, eng, beans.ID, transaction.TypeDelivery, 25, day(1, 9))

	snap := &snapshot.Snapshot{Date: "2026-03-01", CreatedBy: "alice"}
	if err := eng.CreateSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if got := snap.Levels[beans.ID.String()]; got != 25 {
		t.Fatalf("expected captured level 25, got %v", got)
	}
}

func TestItemLevelUnknownItem(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.ItemLevel(context.Background(), id.NewItemID(), day(1, 12))
	if !tally.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
