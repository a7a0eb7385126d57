package tally

import (
	"context"
	"sort"
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/transaction"
)

// Severity grades a low stock alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// LowStockAlert flags an item at or below its reorder point.
type LowStockAlert struct {
	Item           *item.Item `json:"item"`
	Level          float64    `json:"level"`
	Severity       Severity   `json:"severity"`
	SuggestedOrder float64    `json:"suggested_order"`
}

// LowStock returns all items at or below their reorder point as of the given
// time, critical when the level has fallen to half the reorder point or less.
func (t *Tally) LowStock(ctx context.Context, asOf time.Time) ([]LowStockAlert, error) {
	items, err := t.store.ListItems(ctx, item.ListOpts{})
	if err != nil {
		return nil, err
	}

	levels, err := t.Levels(ctx, asOf)
	if err != nil {
		return nil, err
	}

	var alerts []LowStockAlert
	for _, i := range items {
		level := levels[i.ID.String()]
		if !i.BelowReorder(level) {
			continue
		}

		severity := SeverityWarning
		if level <= i.ReorderPoint/2 {
			severity = SeverityCritical
		}

		alerts = append(alerts, LowStockAlert{
			Item:           i,
			Level:          level,
			Severity:       severity,
			SuggestedOrder: i.SuggestedOrder(level),
		})
		t.plugins.EmitLowStock(ctx, i.ID.String(), level, i.ReorderPoint)
	}

	// Critical first, then by name for a stable report.
	sort.Slice(alerts, func(a, b int) bool {
		if alerts[a].Severity != alerts[b].Severity {
			return alerts[a].Severity == SeverityCritical
		}
		return alerts[a].Item.Name < alerts[b].Item.Name
	})

	return alerts, nil
}

// ItemUsageStats aggregates consumption for one item over a date range.
type ItemUsageStats struct {
	ItemID            id.ItemID `json:"item_id"`
	TotalUsage        float64   `json:"total_usage"`
	TotalWaste        float64   `json:"total_waste"`
	AverageDailyUsage float64   `json:"average_daily_usage"`
	WasteRatio        float64   `json:"waste_ratio"`
	Days              int       `json:"days"`
}

// UsageStats summarizes usage and waste for an item between from and to.
func (t *Tally) UsageStats(ctx context.Context, itemID id.ItemID, from, to time.Time) (*ItemUsageStats, error) {
	if _, err := t.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	txns, err := t.store.QueryTransactions(ctx, transaction.Filter{
		ItemID: itemID,
		Types:  []transaction.Type{transaction.TypeUsage, transaction.TypeWaste},
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, err
	}

	stats := &ItemUsageStats{ItemID: itemID}
	for _, tx := range txns {
		switch tx.Type {
		case transaction.TypeUsage:
			stats.TotalUsage += tx.Quantity
		case transaction.TypeWaste:
			stats.TotalWaste += tx.Quantity
		}
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	stats.Days = days
	stats.AverageDailyUsage = stats.TotalUsage / float64(days)

	if consumed := stats.TotalUsage + stats.TotalWaste; consumed > 0 {
		stats.WasteRatio = stats.TotalWaste / consumed
	}

	return stats, nil
}

// RecordDelivery records a delivery transaction and, when a unit cost is
// supplied, updates the item's cost per unit to the delivered price.
func (t *Tally) RecordDelivery(ctx context.Context, itemID id.ItemID, quantity float64, unitCost *float64, user, notes string) (*transaction.Transaction, error) {
	tx := &transaction.Transaction{
		ItemID:   itemID,
		Type:     transaction.TypeDelivery,
		Quantity: quantity,
		UnitCost: unitCost,
		User:     user,
		Notes:    notes,
	}
	if err := t.RecordTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if unitCost != nil {
		i, err := t.store.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		i.CostPerUnit = *unitCost
		i.Touch()
		if err := t.store.UpdateItem(ctx, i); err != nil {
			return nil, err
		}
	}

	return tx, nil
}
