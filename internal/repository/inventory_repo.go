package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepo interface {
	// Списание остатка (атомарно):
	// if quantity_in_stock >= qty then quantity_in_stock -= qty
	DeductProduct(ctx context.Context, productID uuid.UUID, qty int32) (bool, error)
	DeductVariant(ctx context.Context, variantID uuid.UUID, qty int32) (bool, error)

	// Возврат остатка при отмене — строго обратная операция к списанию:
	// позиции с вариантом возвращаются на вариант, без варианта — на товар.
	RestoreForOrder(ctx context.Context, orderID uuid.UUID) error
	RestoreForOrderSeller(ctx context.Context, orderID, sellerID uuid.UUID) error

	ProductStock(ctx context.Context, productID uuid.UUID) (int32, error)
	VariantStock(ctx context.Context, variantID uuid.UUID) (int32, error)
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepo(db *gorm.DB) InventoryRepo { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DeductProduct(ctx context.Context, productID uuid.UUID, qty int32) (bool, error) {
	// атомарно: списываем только если хватает
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET quantity_in_stock = quantity_in_stock - @q,
    updated_at = now()
WHERE id = @pid
  AND quantity_in_stock >= @q
`, map[string]any{"pid": productID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) DeductVariant(ctx context.Context, variantID uuid.UUID, qty int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET quantity_in_stock = quantity_in_stock - @q,
    updated_at = now()
WHERE id = @vid
  AND quantity_in_stock >= @q
`, map[string]any{"vid": variantID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) RestoreForOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Exec(`
UPDATE products AS p
SET quantity_in_stock = p.quantity_in_stock + oi.quantity,
    updated_at = now()
FROM order_items oi
WHERE oi.product_id = p.id
  AND oi.order_id = @oid
  AND oi.variant_id IS NULL
`, map[string]any{"oid": orderID}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
UPDATE product_variants AS pv
SET quantity_in_stock = pv.quantity_in_stock + oi.quantity,
    updated_at = now()
FROM order_items oi
WHERE oi.variant_id = pv.id
  AND oi.order_id = @oid
`, map[string]any{"oid": orderID}).Error
}

func (r *inventoryRepo) RestoreForOrderSeller(ctx context.Context, orderID, sellerID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Exec(`
UPDATE products AS p
SET quantity_in_stock = p.quantity_in_stock + oi.quantity,
    updated_at = now()
FROM order_items oi
WHERE oi.product_id = p.id
  AND oi.order_id = @oid
  AND oi.variant_id IS NULL
  AND p.seller_id = @sid
`, map[string]any{"oid": orderID, "sid": sellerID}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
UPDATE product_variants AS pv
SET quantity_in_stock = pv.quantity_in_stock + oi.quantity,
    updated_at = now()
FROM order_items oi
JOIN products p ON oi.product_id = p.id
WHERE oi.variant_id = pv.id
  AND oi.order_id = @oid
  AND p.seller_id = @sid
`, map[string]any{"oid": orderID, "sid": sellerID}).Error
}

func (r *inventoryRepo) ProductStock(ctx context.Context, productID uuid.UUID) (int32, error) {
	var stock int32
	err := r.db.WithContext(ctx).Raw(
		`SELECT quantity_in_stock FROM products WHERE id = @pid`,
		map[string]any{"pid": productID},
	).Scan(&stock).Error
	return stock, err
}

func (r *inventoryRepo) VariantStock(ctx context.Context, variantID uuid.UUID) (int32, error) {
	var stock int32
	err := r.db.WithContext(ctx).Raw(
		`SELECT quantity_in_stock FROM product_variants WHERE id = @vid`,
		map[string]any{"vid": variantID},
	).Scan(&stock).Error
	return stock, err
}
