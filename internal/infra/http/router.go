package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the Gin engine with the API routes and middlewares.
func NewRouter(log *slog.Logger, h *Handler, exposeMetrics bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(slogMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if exposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)
	api.GET("/categories/:id", h.GetCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.PUT("/categories/:id/active", h.SetCategoryActive)

	api.GET("/materials", h.ListMaterials)
	api.POST("/materials", h.CreateMaterial)
	api.GET("/materials/:id", h.GetMaterial)
	api.PUT("/materials/:id/price", h.UpdateMaterialPrice)
	api.PUT("/materials/:id/options", h.UpdateMaterialOptions)
	api.PUT("/materials/:id/active", h.SetMaterialActive)
	api.POST("/materials/:id/stock", h.UpsertStock)

	api.GET("/stock/:id", h.GetStockEntry)
	api.POST("/stock/:id/receive", h.ReceiveStock)
	api.POST("/stock/:id/adjust", h.AdjustStock)
	api.GET("/stock/:id/movements", h.ListMovements)

	api.POST("/quotes", h.Quote)

	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.POST("/orders/:id/cancel", h.CancelOrder)

	api.GET("/reports/price-list.xlsx", h.PriceListReport)
	api.GET("/reports/stock.xlsx", h.StockReport)

	return r
}

func slogMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
