package repository

import (
	"context"
	"errors"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepo interface {
	Create(ctx context.Context, t *models.PaymentTransaction) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentTransaction, error)
	UpdateStatusByOrder(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus, transactionID *string) error
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) PaymentRepo { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, t *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentTransaction, error) {
	var t models.PaymentTransaction
	err := r.db.WithContext(ctx).First(&t, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *paymentRepo) UpdateStatusByOrder(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus, transactionID *string) error {
	upd := map[string]any{"status": status}
	if transactionID != nil {
		upd["transaction_id"] = *transactionID
	}
	return r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("order_id = ?", orderID).Updates(upd).Error
}
