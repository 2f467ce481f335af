package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/config"
	"github.com/sangkips/inventario/internal/presentation/http/handler"
	"github.com/sangkips/inventario/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product *handler.ProductHandler
	Sale    *handler.SaleHandler
	Cart    *handler.CartHandler
	Report  *handler.ReportHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg         *config.Config
	Log         logrus.FieldLogger
	Idempotency *middleware.IdempotencyStore
}

// Setup creates the Gin router and registers all routes. Background sweeps
// of the rate limiter stop when ctx is cancelled.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(ctx, middleware.RateLimiterConfigFor(
			deps.Cfg.RateLimit.Requests,
			deps.Cfg.RateLimit.Duration,
		))
		v1.Use(rateLimiter.Middleware())

		registerProductRoutes(v1, h)
		registerSaleRoutes(v1, h, deps)
		registerCartRoutes(v1, h, deps)
		registerReportRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.POST("/import", h.Product.Import)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PATCH("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/stock", h.Product.AdjustStock)
	}
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := v1.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		// Sale creation replays the first response for a repeated key
		sales.POST("", middleware.Idempotency(deps.Idempotency), h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/receipt", h.Printer.PrintSaleReceipt)
	}
}

func registerCartRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	carts := v1.Group("/carts")
	{
		carts.POST("", h.Cart.Create)
		carts.GET("/:id", h.Cart.Get)
		carts.DELETE("/:id", h.Cart.Discard)
		carts.POST("/:id/items", h.Cart.AddItem)
		carts.DELETE("/:id/items/:product_id", h.Cart.RemoveItem)
		carts.POST("/:id/checkout", middleware.Idempotency(deps.Idempotency), h.Cart.Checkout)
	}
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers) {
	reports := v1.Group("/reports")
	{
		reports.GET("/summary", h.Report.Summary)
		reports.GET("/top-products", h.Report.TopProducts)
		reports.GET("/sales/export", h.Report.ExportSales)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
