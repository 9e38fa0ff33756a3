package repository

import (
	"context"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// История статусов только дописывается: ни Update, ни Delete здесь нет
// намеренно.
type StatusHistoryRepo interface {
	Append(ctx context.Context, h *models.OrderStatusHistory) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

type statusHistoryRepo struct{ db *gorm.DB }

func NewStatusHistoryRepo(db *gorm.DB) StatusHistoryRepo { return &statusHistoryRepo{db: db} }

func (r *statusHistoryRepo) Append(ctx context.Context, h *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *statusHistoryRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}
