package service

import (
	"errors"
	"fmt"

	"minimall-backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrSellerAccessRequired  = errors.New("seller access required")
	ErrOrderNotFound         = errors.New("order not found")
	ErrCartNotFound          = errors.New("cart not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrQuantityInvalid       = errors.New("quantity must be > 0")
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
	ErrInvalidPaymentStatus  = errors.New("invalid payment status")
	ErrOrderNumberCollision  = errors.New("could not generate unique order number")
	// ErrCheckoutInProgress: параллельный запрос с тем же Idempotency-Key
	// ещё не завершил свою транзакцию.
	ErrCheckoutInProgress = errors.New("checkout with this idempotency key is already in progress")
)

// InsufficientStockError прерывает чекаут целиком: частичных заказов не бывает.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// TerminalStateError — заказ в конечном статусе, переходы из него запрещены.
type TerminalStateError struct {
	Status models.OrderStatus
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("order is in terminal status %s", e.Status)
}
