package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onItemCreated         []OnItemCreated
	onItemUpdated         []OnItemUpdated
	onItemDeleted         []OnItemDeleted
	onItemProvisioned     []OnItemProvisioned
	onTransactionRecorded []OnTransactionRecorded
	onDeliveryRecorded    []OnDeliveryRecorded
	onSnapshotCreated     []OnSnapshotCreated
	onUsageCommitted      []OnUsageCommitted
	onUsageResolved       []OnUsageResolved
	onLowStock            []OnLowStock
	usageResolvers        map[string]UsageResolver
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:         slog.Default(),
		usageResolvers: make(map[string]UsageResolver),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnItemCreated); ok {
		r.onItemCreated = append(r.onItemCreated, v)
	}
	if v, ok := p.(OnItemUpdated); ok {
		r.onItemUpdated = append(r.onItemUpdated, v)
	}
	if v, ok := p.(OnItemDeleted); ok {
		r.onItemDeleted = append(r.onItemDeleted, v)
	}
	if v, ok := p.(OnItemProvisioned); ok {
		r.onItemProvisioned = append(r.onItemProvisioned, v)
	}
	if v, ok := p.(OnTransactionRecorded); ok {
		r.onTransactionRecorded = append(r.onTransactionRecorded, v)
	}
	if v, ok := p.(OnDeliveryRecorded); ok {
		r.onDeliveryRecorded = append(r.onDeliveryRecorded, v)
	}
	if v, ok := p.(OnSnapshotCreated); ok {
		r.onSnapshotCreated = append(r.onSnapshotCreated, v)
	}
	if v, ok := p.(OnUsageCommitted); ok {
		r.onUsageCommitted = append(r.onUsageCommitted, v)
	}
	if v, ok := p.(OnUsageResolved); ok {
		r.onUsageResolved = append(r.onUsageResolved, v)
	}
	if v, ok := p.(OnLowStock); ok {
		r.onLowStock = append(r.onLowStock, v)
	}
	if v, ok := p.(UsageResolver); ok {
		r.usageResolvers[v.ResolverName()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnItemCreated)(nil)).Elem(), "OnItemCreated")
	checkInterface(reflect.TypeOf((*OnItemProvisioned)(nil)).Elem(), "OnItemProvisioned")
	checkInterface(reflect.TypeOf((*OnTransactionRecorded)(nil)).Elem(), "OnTransactionRecorded")
	checkInterface(reflect.TypeOf((*OnSnapshotCreated)(nil)).Elem(), "OnSnapshotCreated")
	checkInterface(reflect.TypeOf((*OnUsageCommitted)(nil)).Elem(), "OnUsageCommitted")
	checkInterface(reflect.TypeOf((*OnLowStock)(nil)).Elem(), "OnLowStock")
	checkInterface(reflect.TypeOf((*UsageResolver)(nil)).Elem(), "UsageResolver")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, t interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, t)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemCreated emits an item created event.
func (r *Registry) EmitItemCreated(ctx context.Context, item interface{}) {
	r.mu.RLock()
	plugins := r.onItemCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemCreated(ctx, item)
		}); err != nil {
			r.logger.Warn("plugin OnItemCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemUpdated emits an item updated event.
func (r *Registry) EmitItemUpdated(ctx context.Context, oldItem, newItem interface{}) {
	r.mu.RLock()
	plugins := r.onItemUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemUpdated(ctx, oldItem, newItem)
		}); err != nil {
			r.logger.Warn("plugin OnItemUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemDeleted emits an item deleted event.
func (r *Registry) EmitItemDeleted(ctx context.Context, itemID string) {
	r.mu.RLock()
	plugins := r.onItemDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemDeleted(ctx, itemID)
		}); err != nil {
			r.logger.Warn("plugin OnItemDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemProvisioned emits an item provisioned event.
func (r *Registry) EmitItemProvisioned(ctx context.Context, item interface{}, componentKey string) {
	r.mu.RLock()
	plugins := r.onItemProvisioned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemProvisioned(ctx, item, componentKey)
		}); err != nil {
			r.logger.Warn("plugin OnItemProvisioned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransactionRecorded emits a transaction recorded event.
func (r *Registry) EmitTransactionRecorded(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onTransactionRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransactionRecorded(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnTransactionRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDeliveryRecorded emits a delivery recorded event.
func (r *Registry) EmitDeliveryRecorded(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onDeliveryRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDeliveryRecorded(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnDeliveryRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSnapshotCreated emits a snapshot created event.
func (r *Registry) EmitSnapshotCreated(ctx context.Context, snap interface{}) {
	r.mu.RLock()
	plugins := r.onSnapshotCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSnapshotCreated(ctx, snap)
		}); err != nil {
			r.logger.Warn("plugin OnSnapshotCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUsageCommitted emits a usage committed event.
func (r *Registry) EmitUsageCommitted(ctx context.Context, date string, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onUsageCommitted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUsageCommitted(ctx, date, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnUsageCommitted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUsageResolved emits a usage resolved event.
func (r *Registry) EmitUsageResolved(ctx context.Context, result interface{}) {
	r.mu.RLock()
	plugins := r.onUsageResolved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUsageResolved(ctx, result)
		}); err != nil {
			r.logger.Warn("plugin OnUsageResolved failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLowStock emits a low stock event.
func (r *Registry) EmitLowStock(ctx context.Context, itemID string, level, reorderPoint float64) {
	r.mu.RLock()
	plugins := r.onLowStock
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLowStock(ctx, itemID, level, reorderPoint)
		}); err != nil {
			r.logger.Warn("plugin OnLowStock failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetUsageResolver returns a usage resolver by name.
func (r *Registry) GetUsageResolver(name string) UsageResolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usageResolvers[name]
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the stock pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
