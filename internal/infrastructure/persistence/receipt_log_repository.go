package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const receiptLogBatchSize = 100

// GormReceiptLogRepository implements ReceiptLogRepository using GORM.
// Receipt log rows are only ever inserted.
type GormReceiptLogRepository struct {
	db *gorm.DB
}

// NewGormReceiptLogRepository creates a new GormReceiptLogRepository
func NewGormReceiptLogRepository(db *gorm.DB) *GormReceiptLogRepository {
	return &GormReceiptLogRepository{db: db}
}

// SaveBatch inserts receipt log records in one transaction
func (r *GormReceiptLogRepository) SaveBatch(ctx context.Context, logs []pharmacy.ReceiptLog) error {
	if len(logs) == 0 {
		return nil
	}
	logModels := make([]*models.ReceiptLogModel, len(logs))
	for i := range logs {
		if logs[i].ID == uuid.Nil {
			logs[i].ID = uuid.New()
		}
		logModels[i] = models.ReceiptLogModelFromDomain(&logs[i])
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(logModels, receiptLogBatchSize).Error
	})
}

// FindByOrder returns the receipt log of an order, oldest first
func (r *GormReceiptLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]pharmacy.ReceiptLog, error) {
	var logModels []models.ReceiptLogModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, received_date ASC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]pharmacy.ReceiptLog, len(logModels))
	for i := range logModels {
		logs[i] = logModels[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormReceiptLogRepository implements ReceiptLogRepository
var _ pharmacy.ReceiptLogRepository = (*GormReceiptLogRepository)(nil)
