// Package plugin provides an extensible plugin system for Tally.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, t interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Item lifecycle hooks
// ──────────────────────────────────────────────────

// OnItemCreated is called when a new stock item is created.
type OnItemCreated interface {
	Plugin
	OnItemCreated(ctx context.Context, item interface{}) error
}

// OnItemUpdated is called when a stock item is updated.
type OnItemUpdated interface {
	Plugin
	OnItemUpdated(ctx context.Context, oldItem, newItem interface{}) error
}

// OnItemDeleted is called when a stock item is deleted.
type OnItemDeleted interface {
	Plugin
	OnItemDeleted(ctx context.Context, itemID string) error
}

// OnItemProvisioned is called when an item is auto-created during a POS
// usage commit.
type OnItemProvisioned interface {
	Plugin
	OnItemProvisioned(ctx context.Context, item interface{}, componentKey string) error
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionRecorded is called when a stock transaction is recorded.
type OnTransactionRecorded interface {
	Plugin
	OnTransactionRecorded(ctx context.Context, txn interface{}) error
}

// OnDeliveryRecorded is called when a delivery is recorded.
type OnDeliveryRecorded interface {
	Plugin
	OnDeliveryRecorded(ctx context.Context, txn interface{}) error
}

// ──────────────────────────────────────────────────
// Snapshot hooks
// ──────────────────────────────────────────────────

// OnSnapshotCreated is called when a physical count snapshot is recorded.
type OnSnapshotCreated interface {
	Plugin
	OnSnapshotCreated(ctx context.Context, snap interface{}) error
}

// ──────────────────────────────────────────────────
// POS usage hooks
// ──────────────────────────────────────────────────

// OnUsageCommitted is called after a daily POS usage batch is committed.
type OnUsageCommitted interface {
	Plugin
	OnUsageCommitted(ctx context.Context, date string, count int, elapsed time.Duration) error
}

// OnUsageResolved is called when a POS extract has been resolved into
// component usage, before any transactions are written.
type OnUsageResolved interface {
	Plugin
	OnUsageResolved(ctx context.Context, result interface{}) error
}

// ──────────────────────────────────────────────────
// Stock level hooks
// ──────────────────────────────────────────────────

// OnLowStock is called when an item's computed level falls to or below its
// reorder point.
type OnLowStock interface {
	Plugin
	OnLowStock(ctx context.Context, itemID string, level, reorderPoint float64) error
}

// ──────────────────────────────────────────────────
// Usage resolvers
// ──────────────────────────────────────────────────

// UsageResolver provides custom POS row resolution logic for menu items
// the catalog cannot map.
type UsageResolver interface {
	Plugin
	ResolverName() string
	ResolveRow(ctx context.Context, menuItem, menuGroup string, qty float64) (map[string]float64, error)
}
