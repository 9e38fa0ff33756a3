package dto

import (
	"time"

	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"
	"minimall-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShippingInfo struct {
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
}

type CheckoutRequest struct {
	PaymentMethod  string       `json:"payment_method" binding:"required"`
	DeliveryOption string       `json:"delivery_option" binding:"required"`
	Shipping       ShippingInfo `json:"shipping" binding:"required"`
	CustomerNotes  *string      `json:"customer_notes"`
}

type PricingResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
}

type CheckoutResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Pricing     PricingResponse `json:"pricing"`
	Replayed    bool            `json:"replayed,omitempty"`
}

type CartTotalsResponse struct {
	Pricing   PricingResponse `json:"pricing"`
	ItemCount int             `json:"item_count"`
}

type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName  string          `json:"product_name"`
	VariantName  string          `json:"variant_name,omitempty"`
	VariantValue string          `json:"variant_value,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     int32           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	PaymentStatus  string              `json:"payment_status"`
	PaymentMethod  string              `json:"payment_method"`
	Pricing        PricingResponse     `json:"pricing"`
	Shipping       ShippingInfo        `json:"shipping"`
	DeliveryOption string              `json:"delivery_option"`
	TrackingNumber *string             `json:"tracking_number,omitempty"`
	CustomerNotes  *string             `json:"customer_notes,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type CancelOrderRequest struct {
	Notes *string `json:"notes"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string  `json:"payment_status" binding:"required"`
	TransactionID *string `json:"transaction_id"`
}

type UpdateStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number"`
	Notes          *string `json:"notes"`
}

type ShipOrderRequest struct {
	TrackingNumber *string `json:"tracking_number"`
	Notes          *string `json:"notes"`
}

type SellerOrderResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	DeliveryOption string          `json:"delivery_option"`
	CustomerName   string          `json:"customer_name"`
	ItemCount      int64           `json:"item_count"`
	SellerSubtotal decimal.Decimal `json:"seller_subtotal"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"`
	SellerPayout   decimal.Decimal `json:"seller_payout"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SellerOrderListResponse struct {
	Orders []SellerOrderResponse `json:"orders"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type SellerOrderDetailResponse struct {
	Order          OrderResponse           `json:"order"`
	Items          []OrderItemResponse     `json:"items"`
	SellerSubtotal decimal.Decimal         `json:"seller_subtotal"`
	CommissionRate decimal.Decimal         `json:"commission_rate"`
	MarketplaceFee decimal.Decimal         `json:"marketplace_fee"`
	SellerPayout   decimal.Decimal         `json:"seller_payout"`
	History        []StatusHistoryResponse `json:"history"`
}

type SellerStatsResponse struct {
	PendingCount    int64           `json:"pending_count"`
	ProcessingCount int64           `json:"processing_count"`
	ShippedCount    int64           `json:"shipped_count"`
	DeliveredCount  int64           `json:"delivered_count"`
	CancelledCount  int64           `json:"cancelled_count"`
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

type RevenuePointResponse struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"order_count"`
}

type StatusHistoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromOrder(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, FromOrderItem(it))
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Pricing: PricingResponse{
			Subtotal:       o.Subtotal,
			Tax:            o.Tax,
			ShippingFee:    o.ShippingFee,
			MarketplaceFee: o.MarketplaceFee,
			Discount:       o.Discount,
			Total:          o.Total,
		},
		Shipping: ShippingInfo{
			FullName:     o.ShippingFullName,
			Phone:        o.ShippingPhone,
			AddressLine1: o.ShippingAddressLine1,
			AddressLine2: o.ShippingAddressLine2,
			City:         o.ShippingCity,
			State:        o.ShippingState,
			PostalCode:   o.ShippingPostalCode,
		},
		DeliveryOption: string(o.DeliveryOption),
		TrackingNumber: o.TrackingNumber,
		CustomerNotes:  o.CustomerNotes,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
		PaidAt:         o.PaidAt,
	}
}

func FromOrderItem(it models.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:           it.ID,
		ProductID:    it.ProductID,
		VariantID:    it.VariantID,
		ProductName:  it.ProductName,
		VariantName:  it.VariantName,
		VariantValue: it.VariantValue,
		SKU:          it.SKU,
		Quantity:     it.Quantity,
		Price:        it.Price,
		Subtotal:     it.Subtotal,
	}
}

func FromPricing(p service.Pricing) PricingResponse {
	return PricingResponse{
		Subtotal:       p.Subtotal,
		Tax:            p.Tax,
		ShippingFee:    p.ShippingFee,
		MarketplaceFee: p.MarketplaceFee,
		Discount:       p.Discount,
		Total:          p.Total,
	}
}

func FromSellerOrderRow(r repository.SellerOrderRow) SellerOrderResponse {
	return SellerOrderResponse{
		ID:             r.ID,
		OrderNumber:    r.OrderNumber,
		Status:         string(r.Status),
		PaymentStatus:  string(r.PaymentStatus),
		PaymentMethod:  string(r.PaymentMethod),
		DeliveryOption: string(r.DeliveryOption),
		CustomerName:   r.CustomerName,
		ItemCount:      r.ItemCount,
		SellerSubtotal: r.SellerSubtotal,
		CommissionRate: r.CommissionRate,
		MarketplaceFee: r.MarketplaceFee,
		SellerPayout:   r.SellerPayout,
		CreatedAt:      r.CreatedAt,
	}
}

func FromStatusHistory(h models.OrderStatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:        h.ID,
		Status:    string(h.Status),
		Notes:     h.Notes,
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
	}
}
