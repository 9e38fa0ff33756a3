package service

import (
	"context"
	"fmt"
	"time"

	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SellerOrderDetail — заказ глазами продавца: его позиции и расчёт
// выплаты по его комиссии. Администратор видит все позиции заказа.
type SellerOrderDetail struct {
	Order          *models.Order
	Items          []models.OrderItem
	SellerSubtotal decimal.Decimal
	CommissionRate decimal.Decimal
	MarketplaceFee decimal.Decimal
	SellerPayout   decimal.Decimal
	History        []models.OrderStatusHistory
}

type UpdateStatusInput struct {
	Status         models.OrderStatus
	TrackingNumber *string
	Notes          *string
}

type OrderService interface {
	ListSellerOrders(ctx context.Context, f repository.SellerOrderFilter) ([]repository.SellerOrderRow, int64, error)
	GetSellerOrder(ctx context.Context, orderID uuid.UUID) (*SellerOrderDetail, error)
	// UpdateStatus — единственная точка смены статуса продавцом;
	// повторная установка текущего статуса — no-op с записью в историю.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, in UpdateStatusInput) error
	SellerStats(ctx context.Context) (*repository.SellerStats, error)
	SellerRevenue(ctx context.Context, days int) ([]repository.RevenuePoint, error)
	StatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

type orderService struct {
	repo   *repository.Repository
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func NewOrderService(repo *repository.Repository, events EventBus, log *zap.Logger) OrderService {
	return &orderService{repo: repo, events: events, log: log, now: time.Now}
}

func requireSeller(ctx context.Context) (Principal, error) {
	p, err := requireAuth(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !p.SellerPrivileged() {
		return Principal{}, ErrSellerAccessRequired
	}
	return p, nil
}

func (s *orderService) ListSellerOrders(ctx context.Context, f repository.SellerOrderFilter) ([]repository.SellerOrderRow, int64, error) {
	principal, err := requireSeller(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.Status != nil && !ValidOrderStatus(*f.Status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	return s.repo.Orders.ListForSeller(ctx, principal.ID, f)
}

func (s *orderService) GetSellerOrder(ctx context.Context, orderID uuid.UUID) (*SellerOrderDetail, error) {
	principal, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	// Чужой заказ для продавца неотличим от несуществующего.
	if principal.Role != RoleAdmin {
		has, err := s.repo.Sellers.HasItemsInOrder(ctx, orderID, principal.ID)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, ErrOrderNotFound
		}
	}

	// Продавец видит только свои позиции, администратор — весь заказ.
	var items []models.OrderItem
	if principal.Role == RoleAdmin {
		items, err = s.repo.OrderItems.GetByOrderID(ctx, orderID)
	} else {
		items, err = s.repo.OrderItems.GetSellerItems(ctx, orderID, principal.ID)
	}
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	rate, err := s.commissionRate(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	fee := subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

	return &SellerOrderDetail{
		Order:          ord,
		Items:          items,
		SellerSubtotal: subtotal,
		CommissionRate: rate,
		MarketplaceFee: fee,
		SellerPayout:   subtotal.Sub(fee),
		History:        history,
	}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, in UpdateStatusInput) error {
	principal, err := requireSeller(ctx)
	if err != nil {
		return err
	}
	if !ValidOrderStatus(in.Status) {
		return ErrInvalidOrderStatus
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrOrderNotFound
	}
	if principal.Role != RoleAdmin {
		has, err := s.repo.Sellers.HasItemsInOrder(ctx, orderID, principal.ID)
		if err != nil {
			return err
		}
		if !has {
			return ErrOrderNotFound
		}
	}

	if err := ValidateTransition(ord.Status, in.Status); err != nil {
		return err
	}

	now := s.now()
	notes := s.historyNotes(ord.Status, in)
	actor := principal.ID

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		if in.Status != ord.Status {
			if err := tx.Orders.UpdateStatus(ctx, ord.ID, in.Status, in.TrackingNumber, now); err != nil {
				return err
			}
		}
		if err := tx.History.Append(ctx, &models.OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    in.Status,
			Notes:     notes,
			CreatedBy: &actor,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if in.Status == models.OrderStatusCancelled && in.Status != ord.Status {
			// Продавец возвращает на склад только свои позиции,
			// админ — весь заказ целиком.
			if principal.Role == RoleAdmin {
				return tx.Inventory.RestoreForOrder(ctx, ord.ID)
			}
			return tx.Inventory.RestoreForOrderSeller(ctx, ord.ID, principal.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.events != nil && in.Status != ord.Status {
		_ = s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:     ord.ID,
			OrderNumber: ord.OrderNumber,
			UserID:      ord.UserID,
			From:        ord.Status,
			To:          in.Status,
			ActorID:     principal.ID,
			Notes:       notes,
			ChangedAt:   now,
		})
	}

	s.log.Info("статус заказа обновлён",
		zap.String("order_number", ord.OrderNumber),
		zap.String("from", string(ord.Status)),
		zap.String("to", string(in.Status)),
		zap.String("actor_id", principal.ID.String()))

	return nil
}

func (s *orderService) SellerStats(ctx context.Context) (*repository.SellerStats, error) {
	principal, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Orders.SellerStats(ctx, principal.ID)
}

func (s *orderService) SellerRevenue(ctx context.Context, days int) ([]repository.RevenuePoint, error) {
	principal, err := requireSeller(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	return s.repo.Orders.SellerRevenue(ctx, principal.ID, days)
}

// StatusHistory доступна и покупателю (по своему заказу), и продавцу
// с позициями в заказе, и админу.
func (s *orderService) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	principal, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	allowed := principal.Role == RoleAdmin || ord.UserID == principal.ID
	if !allowed && principal.SellerPrivileged() {
		allowed, err = s.repo.Sellers.HasItemsInOrder(ctx, orderID, principal.ID)
		if err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, ErrOrderNotFound
	}

	return s.repo.History.ListByOrder(ctx, orderID)
}

func (s *orderService) commissionRate(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	profile, err := s.repo.Sellers.GetProfileByUserID(ctx, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	if profile == nil {
		return decimal.NewFromFloat(10.00), nil
	}
	return profile.CommissionRate, nil
}

func (s *orderService) historyNotes(from models.OrderStatus, in UpdateStatusInput) string {
	if in.Notes != nil && *in.Notes != "" {
		return *in.Notes
	}
	if in.Status == from {
		return fmt.Sprintf("Status reconfirmed as %s by seller", in.Status)
	}
	notes := fmt.Sprintf("Status changed to %s by seller", in.Status)
	if in.TrackingNumber != nil && *in.TrackingNumber != "" {
		notes += fmt.Sprintf(" - Tracking: %s", *in.TrackingNumber)
	}
	return notes
}
