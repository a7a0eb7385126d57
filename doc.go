// Package tally provides a consumable-stock ledger engine for single-location
// retail and food operations.
//
// Tally is designed as a library, not a service. Import it directly into your
// Go application. It provides:
//
//   - An append-oriented transaction log over categories, suppliers and items
//   - Snapshot-baseline level computation with bounded replay cost
//   - Daily POS extract resolution (drink recipes plus a standardized catalog)
//   - Idempotent usage commits: re-importing a day replaces, never duplicates
//   - Auto-provisioning of stock items for components first seen in POS data
//   - Low stock and usage/waste analysis
//
// # Quick Start
//
// Create a tally instance with your preferred store:
//
//	import (
//	    "github.com/xraph/tally"
//	    "github.com/xraph/tally/store/memory"
//	)
//
//	cat, err := catalog.Load("pos_mapping.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t := tally.New(memory.New(), tally.WithCatalog(cat))
//
//	if err := t.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop(ctx)
//
// # Core Concepts
//
// Items are the tracked consumables, each with par level and reorder point:
//
//	i := &item.Item{
//	    Name:         "Barocco Beans",
//	    Category:     "espresso beans",
//	    Unit:         "shot",
//	    ParLevel:     500,
//	    ReorderPoint: 120,
//	}
//	err := t.CreateItem(ctx, i)
//
// Transactions move stock: deliveries and adjustments add, usage and waste
// subtract. Levels replay the log on top of the latest physical count:
//
//	level, err := t.ItemLevel(ctx, i.ID, time.Now())
//
// Daily POS extracts resolve to component usage and commit in one call:
//
//	report, err := t.ProcessExtract(ctx, itemsCSV, modifiersCSV, date, "pos_import")
//
// Re-running the same extract for the same date is safe: the committer
// replaces that day's prior import atomically.
//
// # Stock Levels
//
// Level computation is baseline plus delta: the most recent snapshot dated on
// or before the reference time seeds each item, then transactions strictly
// after the snapshot date replay on top. The result is clamped at zero only
// after replay, so transaction application order never changes the outcome.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	item_01h2xcejqtf2nbrexx3vqjhp41  // Item ID
//	txn_01h2xcejqtf2nbrexx3vqjhp41   // Transaction ID
//	snap_01h455vb4pex5vsknk084sn02q  // Snapshot ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package tally
