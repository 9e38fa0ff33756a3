package repository

import (
	"context"
	"errors"
	"time"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type SellerOrderFilter struct {
	Status   *models.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int
	Offset   int
}

// SellerOrderRow — срез заказа глазами продавца: только его позиции,
// комиссия и выплата по его ставке.
type SellerOrderRow struct {
	ID             uuid.UUID
	OrderNumber    string
	UserID         uuid.UUID
	Status         models.OrderStatus
	PaymentStatus  models.PaymentStatus
	PaymentMethod  models.PaymentMethod
	DeliveryOption models.DeliveryOption
	CustomerName   string
	CreatedAt      time.Time
	ItemCount      int64
	SellerSubtotal decimal.Decimal
	CommissionRate decimal.Decimal
	MarketplaceFee decimal.Decimal
	SellerPayout   decimal.Decimal
}

type SellerStats struct {
	PendingCount    int64
	ProcessingCount int64
	ShippedCount    int64
	DeliveredCount  int64
	CancelledCount  int64
	TotalOrders     int64
	TotalRevenue    decimal.Decimal
}

type RevenuePoint struct {
	OrderDate  time.Time
	Revenue    decimal.Decimal
	OrderCount int64
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, f OrderListFilter) ([]*models.Order, int64, error)
	ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// UpdateStatus проставляет статус и соответствующий ему timestamp,
	// не трогая ранее выставленные отметки времени.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, trackingNumber *string, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) error

	ListForSeller(ctx context.Context, sellerID uuid.UUID, f SellerOrderFilter) ([]SellerOrderRow, int64, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)
	SellerRevenue(ctx context.Context, sellerID uuid.UUID, days int) ([]RevenuePoint, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) ListForUser(ctx context.Context, userID uuid.UUID, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", orderNumber).Count(&cnt).Error
	return cnt > 0, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, trackingNumber *string, at time.Time) error {
	upd := map[string]any{"status": status, "updated_at": at}

	switch status {
	case models.OrderStatusShipped:
		upd["shipped_at"] = at
		if trackingNumber != nil {
			upd["tracking_number"] = *trackingNumber
		}
	case models.OrderStatusDelivered:
		upd["delivered_at"] = at
	case models.OrderStatusCancelled:
		upd["cancelled_at"] = at
	}

	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) error {
	upd := map[string]any{"payment_status": status, "updated_at": at}
	if status == models.PaymentStatusPaid {
		upd["paid_at"] = at
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error
}

const sellerOrderConditions = `
FROM orders o
JOIN order_items oi ON o.id = oi.order_id
JOIN products p ON oi.product_id = p.id
LEFT JOIN seller_profiles sp ON p.seller_id = sp.user_id
WHERE p.seller_id = @sid
  AND (@status = '' OR o.status = @status)
  AND (@from::timestamptz IS NULL OR o.created_at >= @from)
  AND (@to::timestamptz IS NULL OR o.created_at <= @to)
  AND (@search = '' OR o.order_number ILIKE @pattern OR o.shipping_full_name ILIKE @pattern)
`

func (r *orderRepo) ListForSeller(ctx context.Context, sellerID uuid.UUID, f SellerOrderFilter) ([]SellerOrderRow, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	status := ""
	if f.Status != nil {
		status = string(*f.Status)
	}

	args := map[string]any{
		"sid":     sellerID,
		"status":  status,
		"from":    f.DateFrom,
		"to":      f.DateTo,
		"search":  f.Search,
		"pattern": "%" + f.Search + "%",
		"limit":   f.Limit,
		"offset":  f.Offset,
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT o.id) `+sellerOrderConditions, args,
	).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SellerOrderRow
	err := r.db.WithContext(ctx).Raw(`
SELECT
    o.id,
    o.order_number,
    o.user_id,
    o.status,
    o.payment_status,
    o.payment_method,
    o.delivery_option,
    o.shipping_full_name AS customer_name,
    o.created_at,
    COUNT(oi.id)         AS item_count,
    SUM(oi.subtotal)     AS seller_subtotal,
    COALESCE(sp.commission_rate, 10.00) AS commission_rate,
    ROUND(SUM(oi.subtotal) * COALESCE(sp.commission_rate, 10.00) / 100, 2) AS marketplace_fee,
    SUM(oi.subtotal) - ROUND(SUM(oi.subtotal) * COALESCE(sp.commission_rate, 10.00) / 100, 2) AS seller_payout
`+sellerOrderConditions+`
GROUP BY o.id, sp.commission_rate
ORDER BY o.created_at DESC
LIMIT @limit OFFSET @offset
`, args).Scan(&rows).Error
	return rows, total, err
}

func (r *orderRepo) SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error) {
	var stats SellerStats
	err := r.db.WithContext(ctx).Raw(`
SELECT
    COUNT(DISTINCT CASE WHEN o.status = 'pending'    THEN o.id END) AS pending_count,
    COUNT(DISTINCT CASE WHEN o.status = 'processing' THEN o.id END) AS processing_count,
    COUNT(DISTINCT CASE WHEN o.status = 'shipped'    THEN o.id END) AS shipped_count,
    COUNT(DISTINCT CASE WHEN o.status = 'delivered'  THEN o.id END) AS delivered_count,
    COUNT(DISTINCT CASE WHEN o.status = 'cancelled'  THEN o.id END) AS cancelled_count,
    COUNT(DISTINCT o.id)          AS total_orders,
    COALESCE(SUM(oi.subtotal), 0) AS total_revenue
FROM orders o
JOIN order_items oi ON o.id = oi.order_id
JOIN products p ON oi.product_id = p.id
WHERE p.seller_id = @sid
`, map[string]any{"sid": sellerID}).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *orderRepo) SellerRevenue(ctx context.Context, sellerID uuid.UUID, days int) ([]RevenuePoint, error) {
	var points []RevenuePoint
	err := r.db.WithContext(ctx).Raw(`
SELECT
    DATE(o.created_at)    AS order_date,
    SUM(oi.subtotal)      AS revenue,
    COUNT(DISTINCT o.id)  AS order_count
FROM orders o
JOIN order_items oi ON o.id = oi.order_id
JOIN products p ON oi.product_id = p.id
WHERE p.seller_id = @sid
  AND o.created_at >= now() - make_interval(days => @days)
  AND o.status NOT IN ('cancelled')
GROUP BY DATE(o.created_at)
ORDER BY order_date ASC
`, map[string]any{"sid": sellerID, "days": days}).Scan(&points).Error
	return points, err
}
