package audithook

// Action constants for audit events.
const (
	// Item actions
	ActionItemCreated     = "item.created"
	ActionItemUpdated     = "item.updated"
	ActionItemDeleted     = "item.deleted"
	ActionItemProvisioned = "item.provisioned"

	// Transaction actions
	ActionTransactionRecorded = "transaction.recorded"
	ActionDeliveryRecorded    = "delivery.recorded"

	// Snapshot actions
	ActionSnapshotCreated = "snapshot.created"

	// POS usage actions
	ActionUsageResolved  = "usage.resolved"
	ActionUsageCommitted = "usage.committed"

	// Stock level actions
	ActionLowStock = "stock.low"
)

// Resource constants for audit events.
const (
	ResourceItem        = "item"
	ResourceTransaction = "transaction"
	ResourceSnapshot    = "snapshot"
	ResourceUsage       = "usage"
	ResourceStock       = "stock"
)

// Category constants for audit events.
const (
	CategoryInventory = "inventory"
	CategoryMovement  = "movement"
	CategoryCount     = "count"
	CategoryPOS       = "pos"
	CategoryAlert     = "alert"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
