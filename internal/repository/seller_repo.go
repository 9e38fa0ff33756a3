package repository

import (
	"context"
	"errors"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SellerRepo interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	// HasItemsInOrder — есть ли у продавца хотя бы одна позиция в заказе;
	// основа авторизации продавцовых переходов статуса.
	HasItemsInOrder(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)
}

type sellerRepo struct{ db *gorm.DB }

func NewSellerRepo(db *gorm.DB) SellerRepo { return &sellerRepo{db: db} }

func (r *sellerRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var p models.SellerProfile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *sellerRepo) HasItemsInOrder(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Raw(`
SELECT COUNT(*)
FROM order_items oi
JOIN products p ON oi.product_id = p.id
WHERE oi.order_id = @oid AND p.seller_id = @sid
`, map[string]any{"oid": orderID, "sid": sellerID}).Scan(&cnt).Error
	return cnt > 0, err
}
