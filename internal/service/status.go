package service

import "minimall-backend/internal/models"

// Машина статусов заказа. Единственное место, где закодированы правила
// переходов — и продавцовые, и клиентские запросы идут через неё.
//
// pending -> processing -> shipped -> delivered, строго по одному шагу.
// cancelled достижим только из pending/processing.
// delivered и cancelled — конечные.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

func ValidOrderStatus(s models.OrderStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// ValidateTransition возвращает nil, если переход разрешён.
// Запрос текущего статуса — идемпотентный no-op, но только для
// незавершённых заказов: из конечного статуса нельзя даже «в себя»,
// иначе повторная отмена заново вернёт остатки на склад.
func ValidateTransition(from, to models.OrderStatus) error {
	if !ValidOrderStatus(to) {
		return ErrInvalidOrderStatus
	}
	if !ValidOrderStatus(from) {
		return ErrInvalidOrderStatus
	}
	next := allowedTransitions[from]
	if len(next) == 0 {
		return &TerminalStateError{Status: from}
	}
	if from == to {
		return nil
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// IsCancellable — окно отмены: только pending и processing.
func IsCancellable(s models.OrderStatus) bool {
	return s == models.OrderStatusPending || s == models.OrderStatusProcessing
}

func ValidPaymentStatus(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentStatusPending, models.PaymentStatusPaid,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	}
	return false
}
