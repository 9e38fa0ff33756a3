package service

import (
	"minimall-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Политика ценообразования. Таблица доставки и порог бесплатной доставки
// взяты как каноничные; same_day=300.00 подтвердить у продакт-оунера.
var (
	taxRate            = decimal.RequireFromString("0.12") // 12% налог
	marketplaceFeeRate = decimal.RequireFromString("0.02") // 2% комиссия площадки

	freeShippingThreshold = decimal.RequireFromString("5000.00")

	shippingFees = map[models.DeliveryOption]decimal.Decimal{
		models.DeliveryStandard: decimal.RequireFromString("50.00"),
		models.DeliveryExpress:  decimal.RequireFromString("150.00"),
		models.DeliverySameDay:  decimal.RequireFromString("300.00"),
		models.DeliveryPickup:   decimal.Zero,
	}
)

type PricingLine struct {
	Price    decimal.Decimal
	Quantity int32
}

// Pricing — разбивка стоимости заказа. Считается один раз при создании
// и больше никогда молча не пересчитывается.
type Pricing struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	ShippingFee    decimal.Decimal
	MarketplaceFee decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
}

// CalculatePricing — чистая функция: одинаковый вход — одинаковый выход,
// вся арифметика десятичная.
func CalculatePricing(lines []PricingLine, opt models.DeliveryOption) (*Pricing, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	shippingBase, ok := shippingFees[opt]
	if !ok {
		return nil, ErrInvalidDeliveryOption
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Round(2)
	marketplaceFee := subtotal.Mul(marketplaceFeeRate).Round(2)

	shippingFee := shippingBase
	if opt != models.DeliveryPickup && subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shippingFee = decimal.Zero
	}

	discount := decimal.Zero
	total := subtotal.Add(tax).Add(shippingFee).Add(marketplaceFee).Sub(discount)

	return &Pricing{
		Subtotal:       subtotal,
		Tax:            tax,
		ShippingFee:    shippingFee,
		MarketplaceFee: marketplaceFee,
		Discount:       discount,
		Total:          total,
	}, nil
}

func ValidDeliveryOption(opt models.DeliveryOption) bool {
	_, ok := shippingFees[opt]
	return ok
}

func ValidPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentCreditCard, models.PaymentDebitCard, models.PaymentCashOnDelivery,
		models.PaymentGCash, models.PaymentPayMaya, models.PaymentBankTransfer:
		return true
	}
	return false
}
