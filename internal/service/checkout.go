package service

import (
	"context"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
)

type ShippingInfo struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
}

type CheckoutInput struct {
	PaymentMethod  models.PaymentMethod
	Shipping       ShippingInfo
	DeliveryOption models.DeliveryOption
	CustomerNotes  *string
	// IdempotencyKey опционален; пустая строка — старое поведение.
	IdempotencyKey string
}

type CheckoutResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Pricing     Pricing
	// Replayed — заказ не создавался, вернулся результат по Idempotency-Key.
	Replayed bool
}

type CartTotals struct {
	Pricing   Pricing
	ItemCount int
}

type OrderListFilter struct {
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	CalculateTotals(ctx context.Context, opt models.DeliveryOption) (*CartTotals, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)
	// CancelOrder — клиентская отмена: узкая точка входа, но тот же
	// валидатор переходов, что и у продавца.
	CancelOrder(ctx context.Context, orderID uuid.UUID, notes *string) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus, transactionID *string) error
}
