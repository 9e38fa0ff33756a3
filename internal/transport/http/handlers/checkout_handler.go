package handlers

import (
	"net/http"
	"strconv"

	"minimall-backend/internal/models"
	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	checkout service.CheckoutService
	log      *zap.Logger
}

func NewCheckoutHandler(checkout service.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, log: log}
}

// Create godoc
// @Summary Оформление заказа из корзины
// @Description Создаёт заказ из текущей корзины: снимает остатки, считает суммы, чистит корзину. Повтор с тем же Idempotency-Key возвращает уже созданный заказ.
// @Tags checkout
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Ключ идемпотентности"
// @Param checkout body dto.CheckoutRequest true "Данные заказа"
// @Success 201 {object} dto.CheckoutResponse "Заказ создан"
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные или нехватка остатков"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет токена"
// @Failure 404 {object} dto.NotFoundErrorResponse "Корзина не найдена"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Security BearerAuth
// @Router /checkout/create [post]
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("невалидное тело чекаута", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	res, err := h.checkout.Checkout(c.Request.Context(), service.CheckoutInput{
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Shipping: service.ShippingInfo{
			FullName:     req.Shipping.FullName,
			Phone:        req.Shipping.Phone,
			AddressLine1: req.Shipping.AddressLine1,
			AddressLine2: req.Shipping.AddressLine2,
			City:         req.Shipping.City,
			State:        req.Shipping.State,
			PostalCode:   req.Shipping.PostalCode,
		},
		DeliveryOption: models.DeliveryOption(req.DeliveryOption),
		CustomerNotes:  req.CustomerNotes,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.CheckoutResponse{
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
		Pricing:     dto.FromPricing(res.Pricing),
		Replayed:    res.Replayed,
	})
}

// CalculateTotal godoc
// @Summary Расчёт сумм по текущей корзине
// @Description Возвращает разбивку суммы без создания заказа
// @Tags checkout
// @Produce json
// @Param delivery_option query string false "Вариант доставки" default(standard)
// @Success 200 {object} dto.CartTotalsResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Пустая корзина или неверный вариант доставки"
// @Failure 401 {object} dto.UnauthorizedErrorResponse "Нет токена"
// @Security BearerAuth
// @Router /checkout/calculate-total [get]
func (h *CheckoutHandler) CalculateTotal(c *gin.Context) {
	opt := models.DeliveryOption(c.DefaultQuery("delivery_option", string(models.DeliveryStandard)))

	totals, err := h.checkout.CalculateTotals(c.Request.Context(), opt)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartTotalsResponse{
		Pricing:   dto.FromPricing(totals.Pricing),
		ItemCount: totals.ItemCount,
	})
}

// GetOrder godoc
// @Summary Заказ покупателя
// @Tags checkout
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Security BearerAuth
// @Router /checkout/order/{id} [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	ord, err := h.checkout.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(ord))
}

// ListOrders godoc
// @Summary Список заказов покупателя
// @Tags checkout
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} dto.OrderListResponse
// @Security BearerAuth
// @Router /checkout/orders [get]
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	f := service.OrderListFilter{
		Limit:  atoiDefault(c.Query("limit"), 20),
		Offset: atoiDefault(c.Query("offset"), 0),
	}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		f.Status = &status
	}

	orders, total, err := h.checkout.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.FromOrder(o))
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Orders: out,
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// CancelOrder godoc
// @Summary Отмена заказа покупателем
// @Description Допустима из pending/processing; остатки возвращаются на склад
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param cancel body dto.CancelOrderRequest false "Причина отмены"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ValidationErrorResponse "Недопустимый переход"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Security BearerAuth
// @Router /checkout/order/{id}/cancel [post]
func (h *CheckoutHandler) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.CancelOrderRequest
	_ = c.ShouldBindJSON(&req) // тело опционально

	if err := h.checkout.CancelOrder(c.Request.Context(), id, req.Notes); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// UpdatePayment godoc
// @Summary Обновление статуса оплаты
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param payment body dto.UpdatePaymentRequest true "Новый статус оплаты"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ValidationErrorResponse "Неверный статус"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Security BearerAuth
// @Router /checkout/order/{id}/payment [put]
func (h *CheckoutHandler) UpdatePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	err = h.checkout.UpdatePaymentStatus(c.Request.Context(), id,
		models.PaymentStatus(req.PaymentStatus), req.TransactionID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
