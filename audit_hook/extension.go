// Package audithook bridges Tally lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter that bridges
// to the concrete backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/tally/item"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/transaction"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnItemCreated         = (*Extension)(nil)
	_ plugin.OnItemUpdated         = (*Extension)(nil)
	_ plugin.OnItemDeleted         = (*Extension)(nil)
	_ plugin.OnItemProvisioned     = (*Extension)(nil)
	_ plugin.OnTransactionRecorded = (*Extension)(nil)
	_ plugin.OnDeliveryRecorded    = (*Extension)(nil)
	_ plugin.OnSnapshotCreated     = (*Extension)(nil)
	_ plugin.OnUsageCommitted      = (*Extension)(nil)
	_ plugin.OnLowStock            = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import a
// backend directly — callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Tally lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Item lifecycle hooks
// ──────────────────────────────────────────────────

// OnItemCreated implements plugin.OnItemCreated.
func (e *Extension) OnItemCreated(ctx context.Context, i interface{}) error {
	id, name := itemRef(i)
	return e.record(ctx, ActionItemCreated, SeverityInfo, OutcomeSuccess,
		ResourceItem, id, CategoryInventory, nil,
		"name", name,
	)
}

// OnItemUpdated implements plugin.OnItemUpdated.
func (e *Extension) OnItemUpdated(ctx context.Context, _, newItem interface{}) error {
	id, name := itemRef(newItem)
	return e.record(ctx, ActionItemUpdated, SeverityInfo, OutcomeSuccess,
		ResourceItem, id, CategoryInventory, nil,
		"name", name,
	)
}

// OnItemDeleted implements plugin.OnItemDeleted.
func (e *Extension) OnItemDeleted(ctx context.Context, itemID string) error {
	return e.record(ctx, ActionItemDeleted, SeverityWarning, OutcomeSuccess,
		ResourceItem, itemID, CategoryInventory, nil,
		"item_id", itemID,
	)
}

// OnItemProvisioned implements plugin.OnItemProvisioned.
func (e *Extension) OnItemProvisioned(ctx context.Context, i interface{}, componentKey string) error {
	id, name := itemRef(i)
	return e.record(ctx, ActionItemProvisioned, SeverityInfo, OutcomeSuccess,
		ResourceItem, id, CategoryInventory, nil,
		"name", name,
		"component", componentKey,
	)
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTransactionRecorded implements plugin.OnTransactionRecorded.
func (e *Extension) OnTransactionRecorded(ctx context.Context, txn interface{}) error {
	evt := []any{"event", "transaction_recorded"}
	var id string
	if tx, ok := txn.(*transaction.Transaction); ok {
		id = tx.ID.String()
		evt = append(evt,
			"item_id", tx.ItemID.String(),
			"type", string(tx.Type),
			"quantity", tx.Quantity,
			"source", tx.Source,
		)
	}
	return e.record(ctx, ActionTransactionRecorded, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryMovement, nil, evt...)
}

// OnDeliveryRecorded implements plugin.OnDeliveryRecorded.
func (e *Extension) OnDeliveryRecorded(ctx context.Context, txn interface{}) error {
	var id string
	if tx, ok := txn.(*transaction.Transaction); ok {
		id = tx.ID.String()
	}
	return e.record(ctx, ActionDeliveryRecorded, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryMovement, nil,
		"event", "delivery_recorded",
	)
}

// ──────────────────────────────────────────────────
// Snapshot hooks
// ──────────────────────────────────────────────────

// OnSnapshotCreated implements plugin.OnSnapshotCreated.
func (e *Extension) OnSnapshotCreated(ctx context.Context, snap interface{}) error {
	evt := []any{"event", "snapshot_created"}
	var id string
	if s, ok := snap.(*snapshot.Snapshot); ok {
		id = s.ID.String()
		evt = append(evt,
			"date", s.Date,
			"items", len(s.Levels),
			"created_by", s.CreatedBy,
		)
	}
	return e.record(ctx, ActionSnapshotCreated, SeverityInfo, OutcomeSuccess,
		ResourceSnapshot, id, CategoryCount, nil, evt...)
}

// ──────────────────────────────────────────────────
// POS usage hooks
// ──────────────────────────────────────────────────

// OnUsageCommitted implements plugin.OnUsageCommitted.
func (e *Extension) OnUsageCommitted(ctx context.Context, date string, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionUsageCommitted, SeverityInfo, OutcomeSuccess,
		ResourceUsage, date, CategoryPOS, nil,
		"date", date,
		"transactions", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Stock level hooks
// ──────────────────────────────────────────────────

// OnLowStock implements plugin.OnLowStock.
func (e *Extension) OnLowStock(ctx context.Context, itemID string, level, reorderPoint float64) error {
	severity := SeverityWarning
	if level <= reorderPoint/2 {
		severity = SeverityCritical
	}
	return e.record(ctx, ActionLowStock, severity, OutcomeSuccess,
		ResourceStock, itemID, CategoryAlert, nil,
		"item_id", itemID,
		"level", level,
		"reorder_point", reorderPoint,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func itemRef(v interface{}) (id, name string) {
	if i, ok := v.(*item.Item); ok {
		return i.ID.String(), i.Name
	}
	return "", ""
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
