package handlers

import (
	"errors"
	"net/http"

	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError переводит ошибки сервисного слоя в HTTP-ответы.
// Единственное место маппинга: хэндлеры сами статусы не выбирают.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	var stockErr *service.InsufficientStockError
	var transitionErr *service.InvalidTransitionError
	var terminalErr *service.TerminalStateError

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("access denied"))
	case errors.Is(err, service.ErrSellerAccessRequired):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("seller access required"))
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
	case errors.Is(err, service.ErrCartNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("cart not found"))
	case errors.Is(err, service.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrInvalidDeliveryOption),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidPaymentStatus):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(stockErr.Error(), nil))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(transitionErr.Error(), nil))
	case errors.As(err, &terminalErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(terminalErr.Error(), nil))
	default:
		log.Error("внутренняя ошибка", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
