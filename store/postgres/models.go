package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tally/category"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/item"
	"github.com/xraph/tally/snapshot"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/transaction"
	"github.com/xraph/tally/types"
)

// ==================== Item models ====================

type itemModel struct {
	grove.BaseModel `grove:"table:tally_items"`

	ID               string    `grove:"id,pk"`
	Name             string    `grove:"name"`
	Category         string    `grove:"category"`
	Unit             string    `grove:"unit"`
	ParLevel         float64   `grove:"par_level"`
	ReorderPoint     float64   `grove:"reorder_point"`
	SupplierID       string    `grove:"supplier_id"`
	CostPerUnit      float64   `grove:"cost_per_unit"`
	StandardizedName string    `grove:"standardized_name"`
	Notes            string    `grove:"notes"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toItemModel(i *item.Item) *itemModel {
	return &itemModel{
		ID:               i.ID.String(),
		Name:             i.Name,
		Category:         i.Category,
		Unit:             i.Unit,
		ParLevel:         i.ParLevel,
		ReorderPoint:     i.ReorderPoint,
		SupplierID:       i.SupplierID.String(),
		CostPerUnit:      i.CostPerUnit,
		StandardizedName: i.StandardizedName,
		Notes:            i.Notes,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func fromItemModel(m *itemModel) (*item.Item, error) {
	itemID, err := id.ParseItemID(m.ID)
	if err != nil {
		return nil, err
	}

	var supplierID id.SupplierID
	if m.SupplierID != "" {
		supplierID, err = id.ParseSupplierID(m.SupplierID)
		if err != nil {
			return nil, err
		}
	}

	return &item.Item{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:               itemID,
		Name:             m.Name,
		Category:         m.Category,
		Unit:             m.Unit,
		ParLevel:         m.ParLevel,
		ReorderPoint:     m.ReorderPoint,
		SupplierID:       supplierID,
		CostPerUnit:      m.CostPerUnit,
		StandardizedName: m.StandardizedName,
		Notes:            m.Notes,
	}, nil
}

// ==================== Transaction models ====================

type transactionModel struct {
	grove.BaseModel `grove:"table:tally_transactions"`

	ID        string    `grove:"id,pk"`
	ItemID    string    `grove:"item_id"`
	Type      string    `grove:"type"`
	Quantity  float64   `grove:"quantity"`
	UnitCost  *float64  `grove:"unit_cost"`
	Timestamp time.Time `grove:"timestamp"`
	User      string    `grove:"user_name"`
	Notes     string    `grove:"notes"`
	Source    string    `grove:"source"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toTransactionModel(tx *transaction.Transaction) *transactionModel {
	return &transactionModel{
		ID:        tx.ID.String(),
		ItemID:    tx.ItemID.String(),
		Type:      string(tx.Type),
		Quantity:  tx.Quantity,
		UnitCost:  tx.UnitCost,
		Timestamp: tx.Timestamp,
		User:      tx.User,
		Notes:     tx.Notes,
		Source:    tx.Source,
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}

func fromTransactionModel(m *transactionModel) (*transaction.Transaction, error) {
	txID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}
	itemID, err := id.ParseItemID(m.ItemID)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        txID,
		ItemID:    itemID,
		Type:      transaction.Type(m.Type),
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Timestamp: m.Timestamp,
		User:      m.User,
		Notes:     m.Notes,
		Source:    m.Source,
	}, nil
}

// transactionBackupModel retains rows purged by ReplaceDailyUsage.
type transactionBackupModel struct {
	grove.BaseModel `grove:"table:tally_txn_backups"`

	ID        string    `grove:"id,pk"`
	TxnID     string    `grove:"txn_id"`
	ItemID    string    `grove:"item_id"`
	Type      string    `grove:"type"`
	Quantity  float64   `grove:"quantity"`
	UnitCost  *float64  `grove:"unit_cost"`
	Timestamp time.Time `grove:"timestamp"`
	User      string    `grove:"user_name"`
	Notes     string    `grove:"notes"`
	Source    string    `grove:"source"`
	PurgedAt  time.Time `grove:"purged_at"`
}

func toBackupModel(m *transactionModel, purgedAt time.Time) *transactionBackupModel {
	return &transactionBackupModel{
		ID:        id.NewTransactionID().String(),
		TxnID:     m.ID,
		ItemID:    m.ItemID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Timestamp: m.Timestamp,
		User:      m.User,
		Notes:     m.Notes,
		Source:    m.Source,
		PurgedAt:  purgedAt,
	}
}

// ==================== Snapshot models ====================

type snapshotModel struct {
	grove.BaseModel `grove:"table:tally_snapshots"`

	ID        string          `grove:"id,pk"`
	Date      string          `grove:"date"`
	Levels    json.RawMessage `grove:"levels,type:jsonb"`
	CreatedBy string          `grove:"created_by"`
	Notes     string          `grove:"notes"`
	CreatedAt time.Time       `grove:"created_at"`
	UpdatedAt time.Time       `grove:"updated_at"`
}

func toSnapshotModel(snap *snapshot.Snapshot) *snapshotModel {
	levels, _ := json.Marshal(snap.Levels) //nolint:errcheck // best-effort

	return &snapshotModel{
		ID:        snap.ID.String(),
		Date:      snap.Date,
		Levels:    levels,
		CreatedBy: snap.CreatedBy,
		Notes:     snap.Notes,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func fromSnapshotModel(m *snapshotModel) (*snapshot.Snapshot, error) {
	snapID, err := id.ParseSnapshotID(m.ID)
	if err != nil {
		return nil, err
	}

	levels := make(map[string]float64)
	if len(m.Levels) > 0 {
		_ = json.Unmarshal(m.Levels, &levels) //nolint:errcheck // best-effort
	}

	return &snapshot.Snapshot{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        snapID,
		Date:      m.Date,
		Levels:    levels,
		CreatedBy: m.CreatedBy,
		Notes:     m.Notes,
	}, nil
}

// ==================== Category models ====================

type categoryModel struct {
	grove.BaseModel `grove:"table:tally_categories"`

	ID                    string    `grove:"id,pk"`
	Name                  string    `grove:"name"`
	DefaultUnit           string    `grove:"default_unit"`
	RequiresRefrigeration bool      `grove:"requires_refrigeration"`
	DefaultShelfLifeDays  int       `grove:"default_shelf_life_days"`
	DisplayOrder          int       `grove:"display_order"`
	CreatedAt             time.Time `grove:"created_at"`
	UpdatedAt             time.Time `grove:"updated_at"`
}

func toCategoryModel(c *category.Category) *categoryModel {
	return &categoryModel{
		ID:                    c.ID.String(),
		Name:                  c.Name,
		DefaultUnit:           c.DefaultUnit,
		RequiresRefrigeration: c.RequiresRefrigeration,
		DefaultShelfLifeDays:  c.DefaultShelfLifeDays,
		DisplayOrder:          c.DisplayOrder,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func fromCategoryModel(m *categoryModel) (*category.Category, error) {
	catID, err := id.ParseCategoryID(m.ID)
	if err != nil {
		return nil, err
	}

	return &category.Category{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                    catID,
		Name:                  m.Name,
		DefaultUnit:           m.DefaultUnit,
		RequiresRefrigeration: m.RequiresRefrigeration,
		DefaultShelfLifeDays:  m.DefaultShelfLifeDays,
		DisplayOrder:          m.DisplayOrder,
	}, nil
}

// ==================== Supplier models ====================

type supplierModel struct {
	grove.BaseModel `grove:"table:tally_suppliers"`

	ID           string          `grove:"id,pk"`
	Name         string          `grove:"name"`
	ContactEmail string          `grove:"contact_email"`
	Phone        string          `grove:"phone"`
	DeliveryDays json.RawMessage `grove:"delivery_days,type:jsonb"`
	Notes        string          `grove:"notes"`
	CreatedAt    time.Time       `grove:"created_at"`
	UpdatedAt    time.Time       `grove:"updated_at"`
}

func toSupplierModel(sup *supplier.Supplier) *supplierModel {
	days, _ := json.Marshal(sup.DeliveryDays) //nolint:errcheck // best-effort

	return &supplierModel{
		ID:           sup.ID.String(),
		Name:         sup.Name,
		ContactEmail: sup.ContactEmail,
		Phone:        sup.Phone,
		DeliveryDays: days,
		Notes:        sup.Notes,
		CreatedAt:    sup.CreatedAt,
		UpdatedAt:    sup.UpdatedAt,
	}
}

func fromSupplierModel(m *supplierModel) (*supplier.Supplier, error) {
	supID, err := id.ParseSupplierID(m.ID)
	if err != nil {
		return nil, err
	}

	var days []string
	if len(m.DeliveryDays) > 0 {
		_ = json.Unmarshal(m.DeliveryDays, &days) //nolint:errcheck // best-effort
	}

	return &supplier.Supplier{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           supID,
		Name:         m.Name,
		ContactEmail: m.ContactEmail,
		Phone:        m.Phone,
		DeliveryDays: days,
		Notes:        m.Notes,
	}, nil
}
