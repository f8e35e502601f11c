package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber             string                       `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex"`
	SupplierID           uuid.UUID                    `gorm:"type:uuid;not null;index"`
	SupplierName         string                       `gorm:"type:varchar(200);not null"`
	OrderDate            time.Time                    `gorm:"not null;index"`
	ExpectedDeliveryDate *time.Time
	Status               pharmacy.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes                string                       `gorm:"type:text"`
	TotalAmount          decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy            *uuid.UUID                   `gorm:"type:uuid"`
	SentAt               *time.Time
	ReceivedAt           *time.Time
	CancelledAt          *time.Time
	CancelReason         string                   `gorm:"type:varchar(500)"`
	Items                []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *pharmacy.PurchaseOrder {
	order := &pharmacy.PurchaseOrder{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		PONumber:             m.PONumber,
		SupplierID:           m.SupplierID,
		SupplierName:         m.SupplierName,
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		Status:               m.Status,
		Notes:                m.Notes,
		TotalAmount:          m.TotalAmount,
		CreatedBy:            m.CreatedBy,
		SentAt:               m.SentAt,
		ReceivedAt:           m.ReceivedAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
		Items:                make([]pharmacy.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(o *pharmacy.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.PONumber = o.PONumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.OrderDate = o.OrderDate
	m.ExpectedDeliveryDate = o.ExpectedDeliveryDate
	m.Status = o.Status
	m.Notes = o.Notes
	m.TotalAmount = o.TotalAmount
	m.CreatedBy = o.CreatedBy
	m.SentAt = o.SentAt
	m.ReceivedAt = o.ReceivedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(o.ID, &o.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *pharmacy.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	MedicineID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MedicineName     string          `gorm:"type:varchar(200);not null"`
	OrderedQuantity  int             `gorm:"not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BatchNumber      string          `gorm:"type:varchar(100)"`
	ExpiryDate       *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem
func (m *PurchaseOrderItemModel) ToDomain() pharmacy.PurchaseOrderItem {
	return pharmacy.PurchaseOrderItem{
		ID:               m.ID,
		OrderID:          m.OrderID,
		MedicineID:       m.MedicineID,
		MedicineName:     m.MedicineName,
		OrderedQuantity:  m.OrderedQuantity,
		ReceivedQuantity: m.ReceivedQuantity,
		UnitCost:         m.UnitCost,
		TotalPrice:       m.TotalPrice,
		BatchNumber:      m.BatchNumber,
		ExpiryDate:       m.ExpiryDate,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain item belonging to orderID
func (m *PurchaseOrderItemModel) FromDomain(orderID uuid.UUID, i *pharmacy.PurchaseOrderItem) {
	m.ID = i.ID
	m.OrderID = orderID
	m.MedicineID = i.MedicineID
	m.MedicineName = i.MedicineName
	m.OrderedQuantity = i.OrderedQuantity
	m.ReceivedQuantity = i.ReceivedQuantity
	m.UnitCost = i.UnitCost
	m.TotalPrice = i.TotalPrice
	m.BatchNumber = i.BatchNumber
	m.ExpiryDate = i.ExpiryDate
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// ReceiptLogModel is the persistence model for one applied receipt line.
// Rows are append-only.
type ReceiptLogModel struct {
	ID             uuid.UUID                    `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ItemID         uuid.UUID                    `gorm:"type:uuid;not null;index"`
	MedicineID     uuid.UUID                    `gorm:"type:uuid;not null"`
	Quantity       int                          `gorm:"not null"`
	BatchNumber    string                       `gorm:"type:varchar(100)"`
	ExpiryDate     *time.Time
	ReceivedDate   time.Time                    `gorm:"not null"`
	Notes          string                       `gorm:"type:text"`
	MarkAsComplete bool                         `gorm:"not null;default:false"`
	ResultStatus   pharmacy.PurchaseOrderStatus `gorm:"type:varchar(20);not null"`
	Reference      string                       `gorm:"type:varchar(200)"`
	CreatedAt      time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptLogModel) TableName() string {
	return "receipt_logs"
}

// ToDomain converts the persistence model to a domain ReceiptLog
func (m *ReceiptLogModel) ToDomain() pharmacy.ReceiptLog {
	return pharmacy.ReceiptLog{
		ID:             m.ID,
		OrderID:        m.OrderID,
		ItemID:         m.ItemID,
		MedicineID:     m.MedicineID,
		Quantity:       m.Quantity,
		BatchNumber:    m.BatchNumber,
		ExpiryDate:     m.ExpiryDate,
		ReceivedDate:   m.ReceivedDate,
		Notes:          m.Notes,
		MarkAsComplete: m.MarkAsComplete,
		ResultStatus:   m.ResultStatus,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt,
	}
}

// ReceiptLogModelFromDomain creates a persistence model from a domain ReceiptLog
func ReceiptLogModelFromDomain(l *pharmacy.ReceiptLog) *ReceiptLogModel {
	return &ReceiptLogModel{
		ID:             l.ID,
		OrderID:        l.OrderID,
		ItemID:         l.ItemID,
		MedicineID:     l.MedicineID,
		Quantity:       l.Quantity,
		BatchNumber:    l.BatchNumber,
		ExpiryDate:     l.ExpiryDate,
		ReceivedDate:   l.ReceivedDate,
		Notes:          l.Notes,
		MarkAsComplete: l.MarkAsComplete,
		ResultStatus:   l.ResultStatus,
		Reference:      l.Reference,
		CreatedAt:      l.CreatedAt,
	}
}
