package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type checkoutService struct {
	repo   *repository.Repository
	idem   IdempotencyStore
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func NewCheckoutService(repo *repository.Repository, idem IdempotencyStore, events EventBus, log *zap.Logger) CheckoutService {
	return &checkoutService{
		repo:   repo,
		idem:   idem,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	principal, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if !ValidDeliveryOption(in.DeliveryOption) {
		return nil, ErrInvalidDeliveryOption
	}

	// Ключ идемпотентности резервируется до транзакции: повтор с тем же
	// ключом либо получает уже созданный заказ, либо явный отказ, пока
	// первый запрос ещё не закоммитился. Два заказа с одним ключом
	// невозможны.
	idemReserved := false
	if s.idem != nil && in.IdempotencyKey != "" {
		existing, reserved, err := s.idem.Reserve(ctx, principal.ID, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn("idempotency store unavailable, proceeding without it", zap.Error(err))
		case existing != nil:
			ord, err := s.repo.Orders.GetByIDForUser(ctx, *existing, principal.ID)
			if err != nil {
				return nil, err
			}
			if ord != nil {
				return &CheckoutResult{
					OrderID:     ord.ID,
					OrderNumber: ord.OrderNumber,
					Pricing:     pricingFromOrder(ord),
					Replayed:    true,
				}, nil
			}
			// ключ ссылается на недоступный заказ — перезаписываем его
			idemReserved = true
		case reserved:
			idemReserved = true
		default:
			return nil, ErrCheckoutInProgress
		}
	}

	res, err := s.createOrder(ctx, principal, in)
	if err != nil {
		if idemReserved {
			if rerr := s.idem.Release(ctx, principal.ID, in.IdempotencyKey); rerr != nil {
				s.log.Warn("failed to release idempotency key", zap.Error(rerr))
			}
		}
		return nil, err
	}

	if idemReserved {
		if err := s.idem.Complete(ctx, principal.ID, in.IdempotencyKey, res.OrderID); err != nil {
			s.log.Warn("failed to save idempotency key", zap.Error(err))
		}
	}
	return res, nil
}

func (s *checkoutService) createOrder(ctx context.Context, principal Principal, in CheckoutInput) (*CheckoutResult, error) {
	lines, err := s.repo.Carts.GetLines(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		cartID, err := s.repo.Carts.GetCartID(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		if cartID == nil {
			return nil, ErrCartNotFound
		}
		return nil, ErrEmptyCart
	}
	cartID := lines[0].CartID

	// Предварительная проверка остатков: первая нехватка валит весь чекаут.
	// Окончательная гарантия — условный UPDATE внутри транзакции.
	for _, l := range lines {
		if avail := l.AvailableStock(); avail < l.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Available:   avail,
				Requested:   l.Quantity,
			}
		}
	}

	pricingLines := make([]PricingLine, 0, len(lines))
	for _, l := range lines {
		pricingLines = append(pricingLines, PricingLine{Price: l.PriceAtTime, Quantity: l.Quantity})
	}
	pricing, err := CalculatePricing(pricingLines, in.DeliveryOption)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		UserID:         principal.ID,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		PaymentMethod:  in.PaymentMethod,
		Subtotal:       pricing.Subtotal,
		Tax:            pricing.Tax,
		ShippingFee:    pricing.ShippingFee,
		MarketplaceFee: pricing.MarketplaceFee,
		Discount:       pricing.Discount,
		Total:          pricing.Total,

		ShippingFullName:     in.Shipping.FullName,
		ShippingPhone:        in.Shipping.Phone,
		ShippingAddressLine1: in.Shipping.AddressLine1,
		ShippingAddressLine2: in.Shipping.AddressLine2,
		ShippingCity:         in.Shipping.City,
		ShippingState:        in.Shipping.State,
		ShippingPostalCode:   in.Shipping.PostalCode,

		DeliveryOption: in.DeliveryOption,
		CustomerNotes:  in.CustomerNotes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Списание остатков -> заказ -> позиции -> история -> платёж ->
	// очистка корзины: один коммит, любая ошибка откатывает всё.
	// Предварительная проверка номера заказа не закрывает гонку между
	// проверкой и вставкой, её закрывает UNIQUE-индекс: на коллизии
	// повторяем транзакцию с новым номером.
	for attempt := 0; ; attempt++ {
		orderNumber, err := s.generateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		order.ID = uuid.Nil
		order.OrderNumber = orderNumber

		txErr := s.repo.WithTx(func(tx *repository.Repository) error {
			for _, l := range lines {
				var (
					ok  bool
					err error
				)
				if l.VariantID != nil {
					ok, err = tx.Inventory.DeductVariant(ctx, *l.VariantID, l.Quantity)
				} else {
					ok, err = tx.Inventory.DeductProduct(ctx, l.ProductID, l.Quantity)
				}
				if err != nil {
					return err
				}
				if !ok {
					// кто-то успел выкупить остаток между проверкой и списанием
					return &InsufficientStockError{
						ProductID:   l.ProductID,
						ProductName: l.ProductName,
						Available:   0,
						Requested:   l.Quantity,
					}
				}
			}

			if err := tx.Orders.Create(ctx, order); err != nil {
				return err
			}

			items := make([]models.OrderItem, 0, len(lines))
			for _, l := range lines {
				items = append(items, models.OrderItem{
					OrderID:      order.ID,
					ProductID:    l.ProductID,
					VariantID:    l.VariantID,
					ProductName:  l.ProductName,
					VariantName:  l.VariantName,
					VariantValue: l.VariantValue,
					SKU:          l.SKU,
					Quantity:     l.Quantity,
					Price:        l.PriceAtTime,
					Subtotal:     l.PriceAtTime.Mul(decimal.NewFromInt32(l.Quantity)).Round(2),
					CreatedAt:    now,
				})
			}
			if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
				return err
			}

			actor := principal.ID
			if err := tx.History.Append(ctx, &models.OrderStatusHistory{
				OrderID:   order.ID,
				Status:    models.OrderStatusPending,
				Notes:     "Order created",
				CreatedBy: &actor,
				CreatedAt: now,
			}); err != nil {
				return err
			}

			if err := tx.Payments.Create(ctx, &models.PaymentTransaction{
				OrderID:       order.ID,
				PaymentMethod: in.PaymentMethod,
				Amount:        pricing.Total,
				Status:        models.PaymentStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}

			_, err := tx.Carts.Clear(ctx, cartID)
			return err
		})
		if txErr == nil {
			break
		}
		if errors.Is(txErr, gorm.ErrDuplicatedKey) && attempt < 2 {
			s.log.Warn("order number collision, retrying",
				zap.String("order_number", orderNumber))
			continue
		}
		return nil, txErr
	}

	if s.events != nil {
		evItems := make([]OrderItemEvent, 0, len(lines))
		for _, l := range lines {
			evItems = append(evItems, OrderItemEvent{
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
				Price:     l.PriceAtTime,
				Subtotal:  l.PriceAtTime.Mul(decimal.NewFromInt32(l.Quantity)).Round(2),
			})
		}
		_ = s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Items:       evItems,
			Total:       order.Total,
			CreatedAt:   order.CreatedAt,
		})
	}

	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", principal.ID.String()),
		zap.String("total", order.Total.String()))

	return &CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Pricing:     *pricing,
	}, nil
}

func (s *checkoutService) CalculateTotals(ctx context.Context, opt models.DeliveryOption) (*CartTotals, error) {
	principal, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.Carts.GetLines(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	pricingLines := make([]PricingLine, 0, len(lines))
	for _, l := range lines {
		pricingLines = append(pricingLines, PricingLine{Price: l.PriceAtTime, Quantity: l.Quantity})
	}
	pricing, err := CalculatePricing(pricingLines, opt)
	if err != nil {
		return nil, err
	}

	return &CartTotals{Pricing: *pricing, ItemCount: len(lines)}, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	principal, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.Order
	if principal.Role == RoleAdmin {
		ord, err = s.repo.Orders.GetByID(ctx, orderID)
	} else {
		ord, err = s.repo.Orders.GetByIDForUser(ctx, orderID, principal.ID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *checkoutService) ListOrders(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	principal, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.Status != nil && !ValidOrderStatus(*f.Status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	return s.repo.Orders.ListForUser(ctx, principal.ID, repository.OrderListFilter{
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

func (s *checkoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, notes *string) error {
	principal, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	ord, err := s.repo.Orders.GetByIDForUser(ctx, orderID, principal.ID)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrOrderNotFound
	}

	if err := ValidateTransition(ord.Status, models.OrderStatusCancelled); err != nil {
		return err
	}

	now := s.now()
	historyNotes := "Order cancelled by customer"
	if notes != nil && *notes != "" {
		historyNotes = *notes
	}

	actor := principal.ID
	err = s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Orders.UpdateStatus(ctx, ord.ID, models.OrderStatusCancelled, nil, now); err != nil {
			return err
		}
		if err := tx.History.Append(ctx, &models.OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    models.OrderStatusCancelled,
			Notes:     historyNotes,
			CreatedBy: &actor,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		// клиентская отмена возвращает остатки по всем позициям заказа
		return tx.Inventory.RestoreForOrder(ctx, ord.ID)
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:     ord.ID,
			OrderNumber: ord.OrderNumber,
			UserID:      ord.UserID,
			From:        ord.Status,
			To:          models.OrderStatusCancelled,
			ActorID:     principal.ID,
			Notes:       historyNotes,
			ChangedAt:   now,
		})
	}

	return nil
}

func (s *checkoutService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus, transactionID *string) error {
	principal, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	if !ValidPaymentStatus(status) {
		return ErrInvalidPaymentStatus
	}

	// Админ/продавец — любой заказ; покупатель — только свой.
	if !principal.SellerPrivileged() {
		ord, err := s.repo.Orders.GetByIDForUser(ctx, orderID, principal.ID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
	}

	now := s.now()
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Orders.UpdatePaymentStatus(ctx, orderID, status, now); err != nil {
			return err
		}
		return tx.Payments.UpdateStatusByOrder(ctx, orderID, status, transactionID)
	})
}

// Номер заказа: датированный префикс плюс случайный суффикс, уникальность
// проверяем по базе, при коллизии пробуем снова.
func (s *checkoutService) generateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		n := fmt.Sprintf("ORD-%s-%X", s.now().Format("20060102"), buf)

		exists, err := s.repo.Orders.ExistsOrderNumber(ctx, n)
		if err != nil {
			return "", err
		}
		if !exists {
			return n, nil
		}
	}
	return "", ErrOrderNumberCollision
}

func pricingFromOrder(o *models.Order) Pricing {
	return Pricing{
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		ShippingFee:    o.ShippingFee,
		MarketplaceFee: o.MarketplaceFee,
		Discount:       o.Discount,
		Total:          o.Total,
	}
}
