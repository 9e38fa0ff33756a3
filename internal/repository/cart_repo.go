package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine — строка корзины, обогащённая данными каталога для снимка
// в order_items и проверки остатков.
type CartLine struct {
	CartID       uuid.UUID
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	Quantity     int32
	PriceAtTime  decimal.Decimal
	ProductName  string
	VariantName  string
	VariantValue string
	SKU          string
	SellerID     uuid.UUID
	ProductStock int32
	VariantStock *int32
}

// AvailableStock: остаток варианта авторитетен, если вариант выбран.
func (l CartLine) AvailableStock() int32 {
	if l.VariantID != nil && l.VariantStock != nil {
		return *l.VariantStock
	}
	return l.ProductStock
}

type CartRepo interface {
	GetCartID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	GetLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	Clear(ctx context.Context, cartID uuid.UUID) (int64, error)
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) GetCartID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	tx := r.db.WithContext(ctx).Raw(`SELECT id FROM cart WHERE user_id = @uid`, map[string]any{
		"uid": userID,
	}).Scan(&id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return &id, nil
}

func (r *cartRepo) GetLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	var lines []CartLine
	err := r.db.WithContext(ctx).Raw(`
SELECT
    ci.cart_id,
    ci.product_id,
    ci.variant_id,
    ci.quantity,
    ci.price_at_time,
    p.name                       AS product_name,
    COALESCE(pv.variant_name,'') AS variant_name,
    COALESCE(pv.variant_value,'')AS variant_value,
    p.sku,
    p.seller_id,
    p.quantity_in_stock          AS product_stock,
    pv.quantity_in_stock         AS variant_stock
FROM cart_items ci
JOIN cart c ON ci.cart_id = c.id
JOIN products p ON ci.product_id = p.id
LEFT JOIN product_variants pv ON ci.variant_id = pv.id
WHERE c.user_id = @uid
ORDER BY ci.created_at ASC
`, map[string]any{"uid": userID}).Scan(&lines).Error
	return lines, err
}

func (r *cartRepo) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Exec(`DELETE FROM cart_items WHERE cart_id = @cid`, map[string]any{
		"cid": cartID,
	})
	return tx.RowsAffected, tx.Error
}
