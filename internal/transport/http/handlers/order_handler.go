package handlers

import (
	"net/http"
	"time"

	"minimall-backend/internal/models"
	"minimall-backend/internal/repository"
	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// ListSellerOrders godoc
// @Summary Заказы продавца
// @Description Заказы, содержащие позиции текущего продавца, с его суммами и выплатой
// @Tags seller-orders
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param date_from query string false "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string false "Конечная дата (YYYY-MM-DD, включительно)"
// @Param search query string false "Поиск по номеру заказа или имени получателя"
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} dto.SellerOrderListResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Нет прав продавца"
// @Security BearerAuth
// @Router /seller/orders [get]
func (h *OrderHandler) ListSellerOrders(c *gin.Context) {
	f := repository.SellerOrderFilter{
		Search: c.Query("search"),
		Limit:  atoiDefault(c.Query("limit"), 20),
		Offset: atoiDefault(c.Query("offset"), 0),
	}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		f.Status = &status
	}
	if d := c.Query("date_from"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid date_from, expected YYYY-MM-DD", nil))
			return
		}
		f.DateFrom = &t
	}
	if d := c.Query("date_to"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid date_to, expected YYYY-MM-DD", nil))
			return
		}
		// включительно до конца дня
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}

	rows, total, err := h.orders.ListSellerOrders(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	out := make([]dto.SellerOrderResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromSellerOrderRow(r))
	}
	c.JSON(http.StatusOK, dto.SellerOrderListResponse{
		Orders: out,
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

// GetSellerOrder godoc
// @Summary Детали заказа для продавца
// @Description Только позиции продавца, комиссия и выплата по его ставке
// @Tags seller-orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.SellerOrderDetailResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден или без позиций продавца"
// @Security BearerAuth
// @Router /seller/orders/{id} [get]
func (h *OrderHandler) GetSellerOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	detail, err := h.orders.GetSellerOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	items := make([]dto.OrderItemResponse, 0, len(detail.Items))
	for _, it := range detail.Items {
		items = append(items, dto.FromOrderItem(it))
	}
	history := make([]dto.StatusHistoryResponse, 0, len(detail.History))
	for _, hh := range detail.History {
		history = append(history, dto.FromStatusHistory(hh))
	}
	c.JSON(http.StatusOK, dto.SellerOrderDetailResponse{
		Order:          dto.FromOrder(detail.Order),
		Items:          items,
		SellerSubtotal: detail.SellerSubtotal,
		CommissionRate: detail.CommissionRate,
		MarketplaceFee: detail.MarketplaceFee,
		SellerPayout:   detail.SellerPayout,
		History:        history,
	})
}

// UpdateStatus godoc
// @Summary Смена статуса заказа продавцом
// @Description Переходы только по машине статусов: pending→processing→shipped→delivered, отмена из pending/processing
// @Tags seller-orders
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param status body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ValidationErrorResponse "Недопустимый переход"
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Security BearerAuth
// @Router /seller/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	h.applyStatus(c, id, service.UpdateStatusInput{
		Status:         models.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
}

// ProcessOrder godoc
// @Summary Взять заказ в работу
// @Tags seller-orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /seller/orders/{id}/process [put]
func (h *OrderHandler) ProcessOrder(c *gin.Context) {
	h.shortcut(c, models.OrderStatusProcessing)
}

// ShipOrder godoc
// @Summary Отметить заказ отправленным
// @Tags seller-orders
// @Accept json
// @Produce json
// @Param id path string true "ID заказа"
// @Param ship body dto.ShipOrderRequest false "Трек-номер"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /seller/orders/{id}/ship [put]
func (h *OrderHandler) ShipOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.ShipOrderRequest
	_ = c.ShouldBindJSON(&req) // тело опционально

	h.applyStatus(c, id, service.UpdateStatusInput{
		Status:         models.OrderStatusShipped,
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
}

// DeliverOrder godoc
// @Summary Отметить заказ доставленным
// @Tags seller-orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /seller/orders/{id}/deliver [put]
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	h.shortcut(c, models.OrderStatusDelivered)
}

// CancelOrder godoc
// @Summary Отмена заказа продавцом
// @Description Возвращает на склад только позиции продавца
// @Tags seller-orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /seller/orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.shortcut(c, models.OrderStatusCancelled)
}

// Stats godoc
// @Summary Сводка по заказам продавца
// @Tags seller-orders
// @Produce json
// @Success 200 {object} dto.SellerStatsResponse
// @Security BearerAuth
// @Router /seller/orders/stats/summary [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.SellerStats(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.SellerStatsResponse{
		PendingCount:    stats.PendingCount,
		ProcessingCount: stats.ProcessingCount,
		ShippedCount:    stats.ShippedCount,
		DeliveredCount:  stats.DeliveredCount,
		CancelledCount:  stats.CancelledCount,
		TotalOrders:     stats.TotalOrders,
		TotalRevenue:    stats.TotalRevenue,
	})
}

// Revenue godoc
// @Summary Выручка продавца по дням
// @Tags seller-orders
// @Produce json
// @Param days query int false "Глубина в днях" default(30)
// @Success 200 {array} dto.RevenuePointResponse
// @Security BearerAuth
// @Router /seller/revenue [get]
func (h *OrderHandler) Revenue(c *gin.Context) {
	days := atoiDefault(c.Query("days"), 30)

	points, err := h.orders.SellerRevenue(c.Request.Context(), days)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	out := make([]dto.RevenuePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.RevenuePointResponse{
			Date:       p.OrderDate.Format("2006-01-02"),
			Revenue:    p.Revenue,
			OrderCount: p.OrderCount,
		})
	}
	c.JSON(http.StatusOK, out)
}

// StatusHistory godoc
// @Summary История статусов заказа
// @Description Доступна владельцу заказа, продавцу с позициями в нём и админу
// @Tags orders
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {array} dto.StatusHistoryResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Security BearerAuth
// @Router /orders/{id}/status-history [get]
func (h *OrderHandler) StatusHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	history, err := h.orders.StatusHistory(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	out := make([]dto.StatusHistoryResponse, 0, len(history))
	for _, hh := range history {
		out = append(out, dto.FromStatusHistory(hh))
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) shortcut(c *gin.Context, status models.OrderStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}
	h.applyStatus(c, id, service.UpdateStatusInput{Status: status})
}

func (h *OrderHandler) applyStatus(c *gin.Context, id uuid.UUID, in service.UpdateStatusInput) {
	if err := h.orders.UpdateStatus(c.Request.Context(), id, in); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(in.Status)})
}
