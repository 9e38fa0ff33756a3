package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"minimall-backend/internal/migrate"
	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"
	"minimall-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateMarketplaceDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, price string, stock int32) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID:        sellerID,
		SKU:             "SKU-" + uuid.NewString()[:8],
		Name:            "Test Product",
		Price:           dec(price),
		QuantityInStock: stock,
		IsActive:        true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedVariant(t *testing.T, db *gorm.DB, productID uuid.UUID, price string, stock int32) *models.ProductVariant {
	t.Helper()
	v := &models.ProductVariant{
		ProductID:       productID,
		VariantName:     "Size",
		VariantValue:    "M",
		Price:           dec(price),
		QuantityInStock: stock,
		IsActive:        true,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return v
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, status models.OrderStatus) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderNumber:          "ORD-20260830-" + uuid.NewString()[:6],
		UserID:               userID,
		Status:               status,
		PaymentStatus:        models.PaymentStatusPending,
		PaymentMethod:        models.PaymentCashOnDelivery,
		Subtotal:             dec("100.00"),
		Tax:                  dec("12.00"),
		ShippingFee:          dec("50.00"),
		MarketplaceFee:       dec("2.00"),
		Discount:             decimal.Zero,
		Total:                dec("164.00"),
		ShippingFullName:     "Иван Иванов",
		ShippingPhone:        "+70000000000",
		ShippingAddressLine1: "ул. Ленина, 1",
		ShippingCity:         "Москва",
		ShippingState:        "Москва",
		ShippingPostalCode:   "101000",
		DeliveryOption:       models.DeliveryStandard,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func TestInventoryRepo_DeductProduct(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	ctx := context.Background()

	p := seedProduct(t, db, uuid.New(), "10.00", 5)

	ok, err := inv.DeductProduct(ctx, p.ID, 3)
	if err != nil || !ok {
		t.Fatalf("DeductProduct: ok=%v err=%v", ok, err)
	}
	stock, err := inv.ProductStock(ctx, p.ID)
	if err != nil || stock != 2 {
		t.Fatalf("stock = %d, want 2 (err=%v)", stock, err)
	}

	// нехватка — отказ без изменения остатка
	ok, err = inv.DeductProduct(ctx, p.ID, 3)
	if err != nil {
		t.Fatalf("DeductProduct: %v", err)
	}
	if ok {
		t.Fatal("deduct beyond stock must fail")
	}
	stock, _ = inv.ProductStock(ctx, p.ID)
	if stock != 2 {
		t.Fatalf("stock after failed deduct = %d, want 2", stock)
	}
}

func TestInventoryRepo_LastUnitRace(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	ctx := context.Background()

	p := seedProduct(t, db, uuid.New(), "10.00", 1)

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := inv.DeductProduct(ctx, p.ID, 1)
			if err != nil {
				t.Errorf("DeductProduct: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("last unit: %d deducts succeeded, want exactly 1", succeeded)
	}
	stock, _ := inv.ProductStock(ctx, p.ID)
	if stock != 0 {
		t.Fatalf("stock = %d, want 0", stock)
	}
}

func TestInventoryRepo_RestoreForOrder(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	items := repository.NewOrderItemRepo(db)
	ctx := context.Background()

	sellerID := uuid.New()
	p1 := seedProduct(t, db, sellerID, "10.00", 10)
	p2 := seedProduct(t, db, sellerID, "20.00", 10)
	v2 := seedVariant(t, db, p2.ID, "22.00", 4)

	ord := seedOrder(t, db, uuid.New(), models.OrderStatusPending)
	err := items.BulkCreate(ctx, []models.OrderItem{
		{OrderID: ord.ID, ProductID: p1.ID, ProductName: p1.Name, Quantity: 3, Price: dec("10.00"), Subtotal: dec("30.00")},
		{OrderID: ord.ID, ProductID: p2.ID, VariantID: &v2.ID, ProductName: p2.Name, Quantity: 2, Price: dec("22.00"), Subtotal: dec("44.00")},
	})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	if ok, _ := inv.DeductProduct(ctx, p1.ID, 3); !ok {
		t.Fatal("deduct p1")
	}
	if ok, _ := inv.DeductVariant(ctx, v2.ID, 2); !ok {
		t.Fatal("deduct v2")
	}

	if err := inv.RestoreForOrder(ctx, ord.ID); err != nil {
		t.Fatalf("RestoreForOrder: %v", err)
	}

	// возврат зеркален списанию: вариантная позиция не трогает родительский товар
	if s, _ := inv.ProductStock(ctx, p1.ID); s != 10 {
		t.Errorf("p1 stock = %d, want 10", s)
	}
	if s, _ := inv.ProductStock(ctx, p2.ID); s != 10 {
		t.Errorf("p2 stock = %d, want 10 (untouched)", s)
	}
	if s, _ := inv.VariantStock(ctx, v2.ID); s != 4 {
		t.Errorf("v2 stock = %d, want 4", s)
	}
}

func TestInventoryRepo_RestoreForOrderSeller(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	items := repository.NewOrderItemRepo(db)
	ctx := context.Background()

	sellerA := uuid.New()
	sellerB := uuid.New()
	pa := seedProduct(t, db, sellerA, "10.00", 10)
	pb := seedProduct(t, db, sellerB, "10.00", 10)

	ord := seedOrder(t, db, uuid.New(), models.OrderStatusPending)
	err := items.BulkCreate(ctx, []models.OrderItem{
		{OrderID: ord.ID, ProductID: pa.ID, ProductName: pa.Name, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")},
		{OrderID: ord.ID, ProductID: pb.ID, ProductName: pb.Name, Quantity: 5, Price: dec("10.00"), Subtotal: dec("50.00")},
	})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	inv.DeductProduct(ctx, pa.ID, 2)
	inv.DeductProduct(ctx, pb.ID, 5)

	if err := inv.RestoreForOrderSeller(ctx, ord.ID, sellerA); err != nil {
		t.Fatalf("RestoreForOrderSeller: %v", err)
	}

	if s, _ := inv.ProductStock(ctx, pa.ID); s != 10 {
		t.Errorf("seller A stock = %d, want 10", s)
	}
	if s, _ := inv.ProductStock(ctx, pb.ID); s != 5 {
		t.Errorf("seller B stock = %d, want 5 (not restored)", s)
	}
}

func TestOrderRepo_StatusTimestamps(t *testing.T) {
	db := setupDB(t)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	ord := seedOrder(t, db, uuid.New(), models.OrderStatusProcessing)

	tracking := "TRACK-123"
	now := time.Now().UTC().Truncate(time.Second)
	if err := orders.UpdateStatus(ctx, ord.ID, models.OrderStatusShipped, &tracking, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := orders.GetByID(ctx, ord.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Status != models.OrderStatusShipped {
		t.Errorf("status = %s, want shipped", got.Status)
	}
	if got.ShippedAt == nil {
		t.Error("shipped_at not set")
	}
	if got.TrackingNumber == nil || *got.TrackingNumber != tracking {
		t.Errorf("tracking = %v, want %s", got.TrackingNumber, tracking)
	}
	if got.DeliveredAt != nil || got.CancelledAt != nil {
		t.Error("unrelated timestamps must stay empty")
	}
}

// UNIQUE-индекс по номеру заказа должен приходить в сервис как
// gorm.ErrDuplicatedKey, иначе ретрай на коллизии не сработает.
func TestOrderRepo_DuplicateOrderNumber(t *testing.T) {
	db := setupDB(t)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	first := seedOrder(t, db, uuid.New(), models.OrderStatusPending)

	dup := *first
	dup.ID = uuid.Nil
	err := orders.Create(ctx, &dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestOrderRepo_ListForUser(t *testing.T) {
	db := setupDB(t)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 4; i++ {
		seedOrder(t, db, userID, models.OrderStatusPending)
	}
	seedOrder(t, db, uuid.New(), models.OrderStatusPending) // чужой

	list, total, err := orders.ListForUser(ctx, userID, repository.OrderListFilter{Limit: 3, Offset: 0})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(list) != 3 {
		t.Errorf("page len = %d, want 3", len(list))
	}

	status := models.OrderStatusCancelled
	_, total, err = orders.ListForUser(ctx, userID, repository.OrderListFilter{Status: &status, Limit: 10})
	if err != nil {
		t.Fatalf("ListForUser filtered: %v", err)
	}
	if total != 0 {
		t.Errorf("cancelled total = %d, want 0", total)
	}
}

func TestOrderRepo_ListForSeller(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	sellerID := uuid.New()
	if err := db.Create(&models.SellerProfile{
		UserID:         sellerID,
		StoreName:      "Лавка",
		SellerStatus:   models.SellerStatusActive,
		CommissionRate: dec("10.00"),
	}).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	p := seedProduct(t, db, sellerID, "100.00", 50)

	ord := seedOrder(t, db, uuid.New(), models.OrderStatusPending)
	err := repo.OrderItems.BulkCreate(ctx, []models.OrderItem{
		{OrderID: ord.ID, ProductID: p.ID, ProductName: p.Name, Quantity: 2, Price: dec("100.00"), Subtotal: dec("200.00")},
	})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	// заказ без позиций продавца в выдачу не попадает
	seedOrder(t, db, uuid.New(), models.OrderStatusPending)

	rows, total, err := repo.Orders.ListForSeller(ctx, sellerID, repository.SellerOrderFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListForSeller: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", total, len(rows))
	}

	row := rows[0]
	if !row.SellerSubtotal.Equal(dec("200.00")) {
		t.Errorf("seller subtotal = %s, want 200.00", row.SellerSubtotal)
	}
	if !row.MarketplaceFee.Equal(dec("20.00")) {
		t.Errorf("fee = %s, want 20.00 at 10%%", row.MarketplaceFee)
	}
	if !row.SellerPayout.Equal(dec("180.00")) {
		t.Errorf("payout = %s, want 180.00", row.SellerPayout)
	}
}

func TestCartRepo_GetLines_VariantStockAuthoritative(t *testing.T) {
	db := setupDB(t)
	carts := repository.NewCartRepo(db)
	ctx := context.Background()

	userID := uuid.New()
	cart := &models.Cart{UserID: userID}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	p := seedProduct(t, db, uuid.New(), "10.00", 100)
	v := seedVariant(t, db, p.ID, "12.00", 1)

	err := db.Create(&models.CartItem{
		CartID:      cart.ID,
		ProductID:   p.ID,
		VariantID:   &v.ID,
		Quantity:    2,
		PriceAtTime: dec("12.00"),
	}).Error
	if err != nil {
		t.Fatalf("seed cart item: %v", err)
	}

	lines, err := carts.GetLines(ctx, userID)
	if err != nil {
		t.Fatalf("GetLines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if got := lines[0].AvailableStock(); got != 1 {
		t.Errorf("available stock = %d, want 1 (variant wins over product)", got)
	}
	if !lines[0].PriceAtTime.Equal(dec("12.00")) {
		t.Errorf("price_at_time = %s, want 12.00", lines[0].PriceAtTime)
	}
}

func TestHistoryRepo_AppendOnlyOrdering(t *testing.T) {
	db := setupDB(t)
	history := repository.NewStatusHistoryRepo(db)
	ctx := context.Background()

	ord := seedOrder(t, db, uuid.New(), models.OrderStatusPending)

	base := time.Now().UTC()
	for i, s := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
	} {
		err := history.Append(ctx, &models.OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    s,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	list, err := history.ListByOrder(ctx, ord.ID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("history len = %d, want 3", len(list))
	}
	// новые записи первыми
	if list[0].Status != models.OrderStatusShipped || list[2].Status != models.OrderStatusPending {
		t.Errorf("unexpected ordering: %s .. %s", list[0].Status, list[2].Status)
	}
}
