package service_test

import (
	"context"
	"errors"
	"testing"

	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"
	"minimall-backend/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sellerEnv struct {
	*checkoutEnv
	orders   service.OrderService
	sellerID uuid.UUID
}

func newSellerEnv(t *testing.T) *sellerEnv {
	t.Helper()
	env := newCheckoutEnv(t)

	sellerID := uuid.New()
	err := env.db.Create(&models.SellerProfile{
		UserID:         sellerID,
		StoreName:      "Лавка у дома",
		SellerStatus:   models.SellerStatusActive,
		CommissionRate: dec("10.00"),
	}).Error
	if err != nil {
		t.Fatalf("seed seller profile: %v", err)
	}

	return &sellerEnv{
		checkoutEnv: env,
		orders:      service.NewOrderService(env.repo, env.events, zap.NewNop()),
		sellerID:    sellerID,
	}
}

func (e *sellerEnv) sellerCtx() context.Context {
	return service.WithPrincipal(context.Background(), service.Principal{
		ID:           e.sellerID,
		Role:         service.RoleSeller,
		IsSeller:     true,
		SellerStatus: models.SellerStatusActive,
	})
}

// Заказ с одной позицией этого продавца, созданный через обычный чекаут.
func (e *sellerEnv) placeOrder(t *testing.T, price string, qty int32, stock int32) (*service.CheckoutResult, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	p := e.seedProduct(t, e.sellerID, price, stock)
	e.seedCart(t, userID, models.CartItem{ProductID: p.ID, Quantity: qty, PriceAtTime: dec(price)})
	res, err := e.checkout.Checkout(customerCtx(userID), validInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return res, p.ID
}

func TestSellerWorkflow_ForwardProgression(t *testing.T) {
	env := newSellerEnv(t)
	ctx := env.sellerCtx()

	res, _ := env.placeOrder(t, "100.00", 1, 5)

	if err := env.orders.UpdateStatus(ctx, res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusProcessing,
	}); err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}

	tracking := "TRACK-42"
	if err := env.orders.UpdateStatus(ctx, res.OrderID, service.UpdateStatusInput{
		Status:         models.OrderStatusShipped,
		TrackingNumber: &tracking,
	}); err != nil {
		t.Fatalf("processing -> shipped: %v", err)
	}

	if err := env.orders.UpdateStatus(ctx, res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusDelivered,
	}); err != nil {
		t.Fatalf("shipped -> delivered: %v", err)
	}

	ord, _ := env.repo.Orders.GetByID(context.Background(), res.OrderID)
	if ord.Status != models.OrderStatusDelivered {
		t.Errorf("status = %s, want delivered", ord.Status)
	}
	if ord.ShippedAt == nil || ord.DeliveredAt == nil {
		t.Error("shipped_at/delivered_at not set")
	}
	if ord.TrackingNumber == nil || *ord.TrackingNumber != tracking {
		t.Errorf("tracking = %v, want %s", ord.TrackingNumber, tracking)
	}

	// запись на каждый переход плюс запись о создании
	history, _ := env.repo.History.ListByOrder(context.Background(), res.OrderID)
	if len(history) != 4 {
		t.Errorf("history len = %d, want 4", len(history))
	}

	// доставленный заказ дальше не двигается
	err := env.orders.UpdateStatus(ctx, res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusCancelled,
	})
	var termErr *service.TerminalStateError
	if !errors.As(err, &termErr) {
		t.Errorf("delivered -> cancelled: err = %v, want TerminalStateError", err)
	}
}

func TestSellerWorkflow_NoStatusSkipping(t *testing.T) {
	env := newSellerEnv(t)
	res, _ := env.placeOrder(t, "100.00", 1, 5)

	err := env.orders.UpdateStatus(env.sellerCtx(), res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusDelivered,
	})
	var invErr *service.InvalidTransitionError
	if !errors.As(err, &invErr) {
		t.Errorf("pending -> delivered: err = %v, want InvalidTransitionError", err)
	}

	ord, _ := env.repo.Orders.GetByID(context.Background(), res.OrderID)
	if ord.Status != models.OrderStatusPending {
		t.Errorf("status changed to %s on rejected transition", ord.Status)
	}
}

func TestSellerWorkflow_SameStatusNoOp(t *testing.T) {
	env := newSellerEnv(t)
	res, _ := env.placeOrder(t, "100.00", 1, 5)

	if err := env.orders.UpdateStatus(env.sellerCtx(), res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusPending,
	}); err != nil {
		t.Fatalf("pending -> pending: %v", err)
	}

	ord, _ := env.repo.Orders.GetByID(context.Background(), res.OrderID)
	if ord.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want pending", ord.Status)
	}
	// no-op всё равно оставляет след в истории
	history, _ := env.repo.History.ListByOrder(context.Background(), res.OrderID)
	if len(history) != 2 {
		t.Errorf("history len = %d, want 2", len(history))
	}
}

func TestSellerCancel_RestoresOnlyOwnItems(t *testing.T) {
	env := newSellerEnv(t)
	ctx := context.Background()

	otherSeller := uuid.New()
	userID := uuid.New()
	mine := env.seedProduct(t, env.sellerID, "50.00", 10)
	theirs := env.seedProduct(t, otherSeller, "30.00", 10)
	env.seedCart(t, userID,
		models.CartItem{ProductID: mine.ID, Quantity: 2, PriceAtTime: dec("50.00")},
		models.CartItem{ProductID: theirs.ID, Quantity: 3, PriceAtTime: dec("30.00")},
	)

	res, err := env.checkout.Checkout(customerCtx(userID), validInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if err := env.orders.UpdateStatus(env.sellerCtx(), res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusCancelled,
	}); err != nil {
		t.Fatalf("seller cancel: %v", err)
	}

	if s, _ := env.repo.Inventory.ProductStock(ctx, mine.ID); s != 10 {
		t.Errorf("own stock = %d, want 10 (restored)", s)
	}
	if s, _ := env.repo.Inventory.ProductStock(ctx, theirs.ID); s != 7 {
		t.Errorf("foreign stock = %d, want 7 (untouched)", s)
	}
}

func TestSellerAccess(t *testing.T) {
	env := newSellerEnv(t)
	res, _ := env.placeOrder(t, "100.00", 1, 5)

	// обычный покупатель к продавцовым операциям не допускается
	err := env.orders.UpdateStatus(customerCtx(uuid.New()), res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusProcessing,
	})
	if !errors.Is(err, service.ErrSellerAccessRequired) {
		t.Errorf("customer: err = %v, want ErrSellerAccessRequired", err)
	}

	// заблокированный продавец — тоже
	blockedCtx := service.WithPrincipal(context.Background(), service.Principal{
		ID:           uuid.New(),
		Role:         service.RoleSeller,
		IsSeller:     true,
		SellerStatus: models.SellerStatusBlocked,
	})
	err = env.orders.UpdateStatus(blockedCtx, res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusProcessing,
	})
	if !errors.Is(err, service.ErrSellerAccessRequired) {
		t.Errorf("blocked seller: err = %v, want ErrSellerAccessRequired", err)
	}

	// активный продавец без позиций в заказе видит "не найдено"
	strangerCtx := service.WithPrincipal(context.Background(), service.Principal{
		ID:           uuid.New(),
		Role:         service.RoleSeller,
		IsSeller:     true,
		SellerStatus: models.SellerStatusActive,
	})
	err = env.orders.UpdateStatus(strangerCtx, res.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusProcessing,
	})
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("foreign seller: err = %v, want ErrOrderNotFound", err)
	}
}

func TestGetSellerOrder_PayoutMath(t *testing.T) {
	env := newSellerEnv(t)
	res, _ := env.placeOrder(t, "100.00", 2, 5)

	detail, err := env.orders.GetSellerOrder(env.sellerCtx(), res.OrderID)
	if err != nil {
		t.Fatalf("GetSellerOrder: %v", err)
	}

	if !detail.SellerSubtotal.Equal(dec("200.00")) {
		t.Errorf("seller subtotal = %s, want 200.00", detail.SellerSubtotal)
	}
	if !detail.CommissionRate.Equal(dec("10.00")) {
		t.Errorf("commission rate = %s, want 10.00", detail.CommissionRate)
	}
	if !detail.MarketplaceFee.Equal(dec("20.00")) {
		t.Errorf("fee = %s, want 20.00", detail.MarketplaceFee)
	}
	if !detail.SellerPayout.Equal(dec("180.00")) {
		t.Errorf("payout = %s, want 180.00", detail.SellerPayout)
	}
	if len(detail.Items) != 1 {
		t.Errorf("items = %d, want 1", len(detail.Items))
	}
	if len(detail.History) == 0 {
		t.Error("history empty")
	}
}

// Заказ с позициями двух продавцов: каждый видит только свой срез,
// администратор — заказ целиком.
func TestGetSellerOrder_AdminSeesAllItems(t *testing.T) {
	env := newSellerEnv(t)

	otherSeller := uuid.New()
	userID := uuid.New()
	p1 := env.seedProduct(t, env.sellerID, "100.00", 5)
	p2 := env.seedProduct(t, otherSeller, "40.00", 5)
	env.seedCart(t, userID,
		models.CartItem{ProductID: p1.ID, Quantity: 1, PriceAtTime: dec("100.00")},
		models.CartItem{ProductID: p2.ID, Quantity: 1, PriceAtTime: dec("40.00")},
	)
	res, err := env.checkout.Checkout(customerCtx(userID), validInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	detail, err := env.orders.GetSellerOrder(env.sellerCtx(), res.OrderID)
	if err != nil {
		t.Fatalf("GetSellerOrder (seller): %v", err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("seller items = %d, want 1", len(detail.Items))
	}
	if detail.Items[0].ProductID != p1.ID {
		t.Errorf("seller sees foreign item %s", detail.Items[0].ProductID)
	}
	if !detail.SellerSubtotal.Equal(dec("100.00")) {
		t.Errorf("seller subtotal = %s, want 100.00", detail.SellerSubtotal)
	}

	adminCtx := service.WithPrincipal(context.Background(), service.Principal{
		ID:   uuid.New(),
		Role: service.RoleAdmin,
	})
	adminDetail, err := env.orders.GetSellerOrder(adminCtx, res.OrderID)
	if err != nil {
		t.Fatalf("GetSellerOrder (admin): %v", err)
	}
	if len(adminDetail.Items) != 2 {
		t.Fatalf("admin items = %d, want 2", len(adminDetail.Items))
	}
	if !adminDetail.SellerSubtotal.Equal(dec("140.00")) {
		t.Errorf("admin subtotal = %s, want 140.00", adminDetail.SellerSubtotal)
	}
}

func TestListSellerOrders_And_Stats(t *testing.T) {
	env := newSellerEnv(t)
	res1, _ := env.placeOrder(t, "100.00", 1, 5)
	env.placeOrder(t, "200.00", 1, 5)

	if err := env.orders.UpdateStatus(env.sellerCtx(), res1.OrderID, service.UpdateStatusInput{
		Status: models.OrderStatusProcessing,
	}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	rows, total, err := env.orders.ListSellerOrders(env.sellerCtx(), repository.SellerOrderFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListSellerOrders: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(rows))
	}

	status := models.OrderStatusProcessing
	_, total, err = env.orders.ListSellerOrders(env.sellerCtx(), repository.SellerOrderFilter{Status: &status, Limit: 10})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if total != 1 {
		t.Errorf("processing total = %d, want 1", total)
	}

	stats, err := env.orders.SellerStats(env.sellerCtx())
	if err != nil {
		t.Fatalf("SellerStats: %v", err)
	}
	if stats.TotalOrders != 2 || stats.PendingCount != 1 || stats.ProcessingCount != 1 {
		t.Errorf("stats = %+v", stats)
	}

	points, err := env.orders.SellerRevenue(env.sellerCtx(), 7)
	if err != nil {
		t.Fatalf("SellerRevenue: %v", err)
	}
	if len(points) == 0 {
		t.Error("revenue points empty")
	}
}

func TestStatusHistory_Access(t *testing.T) {
	env := newSellerEnv(t)

	owner := uuid.New()
	p := env.seedProduct(t, env.sellerID, "50.00", 5)
	env.seedCart(t, owner, models.CartItem{ProductID: p.ID, Quantity: 1, PriceAtTime: dec("50.00")})
	res, err := env.checkout.Checkout(customerCtx(owner), validInput())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := env.orders.StatusHistory(customerCtx(owner), res.OrderID); err != nil {
		t.Errorf("owner: %v", err)
	}
	if _, err := env.orders.StatusHistory(env.sellerCtx(), res.OrderID); err != nil {
		t.Errorf("seller with items: %v", err)
	}
	if _, err := env.orders.StatusHistory(customerCtx(uuid.New()), res.OrderID); !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("stranger: err = %v, want ErrOrderNotFound", err)
	}
}
