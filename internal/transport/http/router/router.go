package router

import (
	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/handlers"
	"minimall-backend/internal/transport/http/middleware"

	"github.com/gin-contrib/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func Router(checkout service.CheckoutService, orders service.OrderService, accessSecret []byte, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	checkoutHandler := handlers.NewCheckoutHandler(checkout, log)
	orderHandler := handlers.NewOrderHandler(orders, log)

	authed := r.Group("/", middleware.AuthRequired(accessSecret, log))

	co := authed.Group("/checkout")
	co.POST("/create", checkoutHandler.Create)
	co.GET("/calculate-total", checkoutHandler.CalculateTotal)
	co.GET("/orders", checkoutHandler.ListOrders)
	co.GET("/order/:id", checkoutHandler.GetOrder)
	co.POST("/order/:id/cancel", checkoutHandler.CancelOrder)
	co.PUT("/order/:id/payment", checkoutHandler.UpdatePayment)

	so := authed.Group("/seller/orders")
	so.GET("", orderHandler.ListSellerOrders)
	so.GET("/stats/summary", orderHandler.Stats)
	so.GET("/:id", orderHandler.GetSellerOrder)
	so.PATCH("/:id/status", orderHandler.UpdateStatus)
	so.PUT("/:id/process", orderHandler.ProcessOrder)
	so.PUT("/:id/ship", orderHandler.ShipOrder)
	so.PUT("/:id/deliver", orderHandler.DeliverOrder)
	so.PUT("/:id/cancel", orderHandler.CancelOrder)

	authed.GET("/seller/revenue", orderHandler.Revenue)
	authed.GET("/orders/:id/status-history", orderHandler.StatusHistory)

	return r
}
