package tally

import (
	"context"
	"sort"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/types"
)

// provisionNote marks items synthesized during a usage commit.
const provisionNote = "Auto-created by POS usage processor"

// resolveOrProvisionItem ensures a stock item exists for a component key.
//
// Resolution order: an item whose ID is the component key itself, then an
// item whose standardized name matches, then a synthesized item built from
// the catalog component definition. Synthesized items carry zero par, reorder
// and cost so a later manual pass can set real thresholds.
func (t *Tally) resolveOrProvisionItem(ctx context.Context, componentKey, unit string) (*item.Item, bool, error) {
	if itemID, err := id.ParseItemID(componentKey); err == nil {
		if i, err := t.store.GetItem(ctx, itemID); err == nil {
			return i, false, nil
		} else if !IsNotFound(err) {
			return nil, false, err
		}
	}

	if i, err := t.store.GetItemByStandardizedName(ctx, componentKey); err == nil {
		return i, false, nil
	} else if !IsNotFound(err) {
		return nil, false, err
	}

	name := componentKey
	categoryName := "supplies"
	if t.catalog != nil {
		if comp, ok := t.catalog.Component(componentKey); ok {
			if comp.DisplayName != "" {
				name = comp.DisplayName
			}
			if comp.BaseUnit != "" {
				unit = comp.BaseUnit
			}
			if comp.Group != "" {
				categoryName = comp.Group
			}
		}
	}
	if unit == "" {
		unit = "unit"
	}

	supplierID, err := t.defaultSupplierID(ctx)
	if err != nil {
		return nil, false, err
	}

	provisioned := &item.Item{
		Entity:           types.NewEntity(),
		ID:               id.NewItemID(),
		Name:             name,
		Category:         categoryName,
		Unit:             unit,
		SupplierID:       supplierID,
		StandardizedName: componentKey,
		Notes:            provisionNote,
	}

	if err := t.store.CreateItem(ctx, provisioned); err != nil {
		return nil, false, err
	}

	t.logger.Info("provisioned stock item for component",
		"component", componentKey,
		"item_id", provisioned.ID.String(),
		"category", categoryName,
	)
	t.plugins.EmitItemProvisioned(ctx, provisioned, componentKey)

	return provisioned, true, nil
}

// defaultSupplierID picks the internal supplier when present, otherwise the
// first supplier by sorted ID. A nil ID is fine: provisioned items may have
// no supplier until one is assigned.
func (t *Tally) defaultSupplierID(ctx context.Context) (id.SupplierID, error) {
	suppliers, err := t.store.ListSuppliers(ctx)
	if err != nil {
		return id.SupplierID{}, err
	}
	if len(suppliers) == 0 {
		return id.SupplierID{}, nil
	}

	for _, sup := range suppliers {
		if sup.Name == internalSupplierName {
			return sup.ID, nil
		}
	}

	sort.Slice(suppliers, func(a, b int) bool {
		return suppliers[a].ID.String() < suppliers[b].ID.String()
	})
	return suppliers[0].ID, nil
}
