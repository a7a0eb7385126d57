// Package observability provides a metrics extension for Tally that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/pos"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/transaction"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnItemCreated         = (*MetricsExtension)(nil)
	_ plugin.OnItemUpdated         = (*MetricsExtension)(nil)
	_ plugin.OnItemDeleted         = (*MetricsExtension)(nil)
	_ plugin.OnItemProvisioned     = (*MetricsExtension)(nil)
	_ plugin.OnTransactionRecorded = (*MetricsExtension)(nil)
	_ plugin.OnDeliveryRecorded    = (*MetricsExtension)(nil)
	_ plugin.OnSnapshotCreated     = (*MetricsExtension)(nil)
	_ plugin.OnUsageResolved       = (*MetricsExtension)(nil)
	_ plugin.OnUsageCommitted      = (*MetricsExtension)(nil)
	_ plugin.OnLowStock            = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Tally plugin to automatically track stock metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Item metrics
	ItemCreated     Counter
	ItemUpdated     Counter
	ItemDeleted     Counter
	ItemProvisioned Counter

	// Transaction metrics
	TransactionsRecorded Counter
	DeliveriesRecorded   Counter
	DeliveryQuantity     Histogram

	// Snapshot metrics
	SnapshotsCreated Counter
	SnapshotSize     Histogram

	// POS usage metrics
	UsageResolved     Counter
	UsageComponents   Histogram
	UsageUnmatched    Histogram
	UsageCommitted    Counter
	UsageCommitSize   Histogram
	UsageCommitTiming Histogram

	// Stock alert metrics
	LowStockAlerts Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Item metrics
		ItemCreated:     factory.Counter("tally.item.created"),
		ItemUpdated:     factory.Counter("tally.item.updated"),
		ItemDeleted:     factory.Counter("tally.item.deleted"),
		ItemProvisioned: factory.Counter("tally.item.provisioned"),

		// Transaction metrics
		TransactionsRecorded: factory.Counter("tally.transaction.recorded"),
		DeliveriesRecorded:   factory.Counter("tally.delivery.recorded"),
		DeliveryQuantity:     factory.Histogram("tally.delivery.quantity"),

		// Snapshot metrics
		SnapshotsCreated: factory.Counter("tally.snapshot.created"),
		SnapshotSize:     factory.Histogram("tally.snapshot.items"),

		// POS usage metrics
		UsageResolved:     factory.Counter("tally.usage.resolved"),
		UsageComponents:   factory.Histogram("tally.usage.components"),
		UsageUnmatched:    factory.Histogram("tally.usage.unmatched"),
		UsageCommitted:    factory.Counter("tally.usage.committed"),
		UsageCommitSize:   factory.Histogram("tally.usage.commit.size"),
		UsageCommitTiming: factory.Histogram("tally.usage.commit.latency_ms"),

		// Stock alert metrics
		LowStockAlerts: factory.Counter("tally.stock.low_alerts"),

		// Error metrics
		StoreErrors:  factory.Counter("tally.store.errors"),
		PluginErrors: factory.Counter("tally.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Item lifecycle hooks
// ──────────────────────────────────────────────────

// OnItemCreated implements plugin.OnItemCreated.
func (m *MetricsExtension) OnItemCreated(_ context.Context, _ interface{}) error {
	m.ItemCreated.Inc()
	return nil
}

// OnItemUpdated implements plugin.OnItemUpdated.
func (m *MetricsExtension) OnItemUpdated(_ context.Context, _, _ interface{}) error {
	m.ItemUpdated.Inc()
	return nil
}

// OnItemDeleted implements plugin.OnItemDeleted.
func (m *MetricsExtension) OnItemDeleted(_ context.Context, _ string) error {
	m.ItemDeleted.Inc()
	return nil
}

// OnItemProvisioned implements plugin.OnItemProvisioned.
func (m *MetricsExtension) OnItemProvisioned(_ context.Context, _ interface{}, _ string) error {
	m.ItemProvisioned.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionRecorded implements plugin.OnTransactionRecorded.
func (m *MetricsExtension) OnTransactionRecorded(_ context.Context, _ interface{}) error {
	m.TransactionsRecorded.Inc()
	return nil
}

// OnDeliveryRecorded implements plugin.OnDeliveryRecorded.
func (m *MetricsExtension) OnDeliveryRecorded(_ context.Context, txn interface{}) error {
	m.DeliveriesRecorded.Inc()
	if tx, ok := txn.(*transaction.Transaction); ok {
		m.DeliveryQuantity.Observe(tx.Quantity)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Snapshot hooks
// ──────────────────────────────────────────────────

// OnSnapshotCreated implements plugin.OnSnapshotCreated.
func (m *MetricsExtension) OnSnapshotCreated(_ context.Context, snap interface{}) error {
	m.SnapshotsCreated.Inc()
	if s, ok := snap.(*snapshot.Snapshot); ok {
		m.SnapshotSize.Observe(float64(len(s.Levels)))
	}
	return nil
}

// ──────────────────────────────────────────────────
// POS usage hooks
// ──────────────────────────────────────────────────

// OnUsageResolved implements plugin.OnUsageResolved.
func (m *MetricsExtension) OnUsageResolved(_ context.Context, result interface{}) error {
	m.UsageResolved.Inc()
	if res, ok := result.(*pos.Result); ok {
		m.UsageComponents.Observe(float64(len(res.Components)))
		m.UsageUnmatched.Observe(float64(len(res.Unmatched)))
	}
	return nil
}

// OnUsageCommitted implements plugin.OnUsageCommitted.
func (m *MetricsExtension) OnUsageCommitted(_ context.Context, _ string, count int, elapsed time.Duration) error {
	m.UsageCommitted.Inc()
	m.UsageCommitSize.Observe(float64(count))
	m.UsageCommitTiming.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Stock level hooks
// ──────────────────────────────────────────────────

// OnLowStock implements plugin.OnLowStock.
func (m *MetricsExtension) OnLowStock(_ context.Context, _ string, _, _ float64) error {
	m.LowStockAlerts.Inc()
	return nil
}
