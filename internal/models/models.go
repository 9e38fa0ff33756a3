package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статус заказа — строковый тип, значения совпадают с тем, что лежит в БД.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type DeliveryOption string

const (
	DeliveryStandard DeliveryOption = "standard"
	DeliveryExpress  DeliveryOption = "express"
	DeliverySameDay  DeliveryOption = "same_day"
	DeliveryPickup   DeliveryOption = "pickup"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentGCash          PaymentMethod = "gcash"
	PaymentPayMaya        PaymentMethod = "paymaya"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

type SellerStatus string

const (
	SellerStatusPending  SellerStatus = "pending"
	SellerStatusActive   SellerStatus = "active"
	SellerStatusApproved SellerStatus = "approved"
	SellerStatusBlocked  SellerStatus = "blocked"
)

type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU             string          `gorm:"type:text;not null"`
	Name            string          `gorm:"type:text;not null"`
	Description     string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	QuantityInStock int32           `gorm:"not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

// Вариант товара. Если выбран вариант — его остаток авторитетен,
// остаток родительского товара не трогаем.
type ProductVariant struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantName     string          `gorm:"type:text;not null"`
	VariantValue    string          `gorm:"type:text;not null"`
	SKU             string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	QuantityInStock int32           `gorm:"not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type SellerProfile struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	StoreName      string          `gorm:"type:text;not null"`
	SellerStatus   SellerStatus    `gorm:"type:text;not null;default:'pending'"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:10.00"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (SellerProfile) TableName() string { return "seller_profiles" }

// Одна активная корзина на пользователя.
type Cart struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string { return "cart" }

type CartItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`
	Quantity  int32      `gorm:"type:int;not null"` // CHECK > 0 добавим в миграции
	// Цена фиксируется при добавлении/обновлении позиции; чекаут
	// считает итоги именно по ней.
	PriceAtTime decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (CartItem) TableName() string { return "cart_items" }

type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string        `gorm:"type:text;not null;uniqueIndex"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status        OrderStatus   `gorm:"type:text;not null;default:'pending';index"`
	PaymentStatus PaymentStatus `gorm:"type:text;not null;default:'pending'"`
	PaymentMethod PaymentMethod `gorm:"type:text;not null"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MarketplaceFee decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Снимок адреса доставки: копия, не FK — правки профиля не должны
	// задним числом менять историю заказов.
	ShippingFullName     string `gorm:"type:text;not null"`
	ShippingPhone        string `gorm:"type:text;not null"`
	ShippingAddressLine1 string `gorm:"type:text;not null"`
	ShippingAddressLine2 string `gorm:"type:text"`
	ShippingCity         string `gorm:"type:text;not null"`
	ShippingState        string `gorm:"type:text;not null"`
	ShippingPostalCode   string `gorm:"type:text;not null"`

	DeliveryOption DeliveryOption `gorm:"type:text;not null;default:'standard'"`
	TrackingNumber *string        `gorm:"type:text"`
	CustomerNotes  *string        `gorm:"type:text"`

	CreatedAt   time.Time `gorm:"not null;default:now();index"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	PaidAt      *time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// Неизменяемый снимок позиции заказа: имя/вариант/SKU денормализованы,
// чтобы история читалась даже после правки или удаления товара.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID    *uuid.UUID      `gorm:"type:uuid"`
	ProductName  string          `gorm:"type:text;not null"`
	VariantName  string          `gorm:"type:text"`
	VariantValue string          `gorm:"type:text"`
	SKU          string          `gorm:"type:text"`
	Quantity     int32           `gorm:"type:int;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

// Журнал переходов статуса: только вставки, никогда не правится.
type OrderStatusHistory struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    OrderStatus `gorm:"type:text;not null"`
	Notes     string      `gorm:"type:text"`
	CreatedBy *uuid.UUID  `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }

type PaymentTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethod PaymentMethod   `gorm:"type:text;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionID *string         `gorm:"type:text"`
	Status        PaymentStatus   `gorm:"type:text;not null;default:'pending'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }
