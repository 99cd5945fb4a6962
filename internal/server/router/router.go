package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/metrics"
	"github.com/mamadbah2/shroomtrack/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the endpoint adapters mounted by New.
type Handlers struct {
	Sync        *handlers.SyncHandler
	Batches     *handlers.BatchHandler
	Recipes     *handlers.RecipeHandler
	Finance     *handlers.FinanceHandler
	CRM         *handlers.CRMHandler
	Sales       *handlers.SalesHandler
	Procurement *handlers.ProcurementHandler
	Inventory   *handlers.InventoryHandler
	Dashboard   *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(secureMiddleware())
	r.Use(metricsMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/sync", h.Sync.Post)
	api.GET("/sync", h.Sync.Get)

	api.GET("/overview", h.Dashboard.Overview)
	api.GET("/roles/:uid", h.Dashboard.Role)

	batches := api.Group("/batches")
	batches.GET("", h.Batches.List)
	batches.POST("", h.Batches.Intake)
	batches.GET("/active", h.Batches.ActiveStages)
	batches.GET("/:id", h.Batches.Get)
	batches.POST("/:id/start", h.Batches.Start)
	batches.POST("/:id/recipe", h.Batches.SwitchRecipe)
	batches.POST("/:id/accelerate", h.Batches.Accelerate)
	batches.GET("/:id/stage", h.Batches.Stage)
	batches.POST("/:id/finalize", h.Batches.Finalize)

	recipes := api.Group("/recipes")
	recipes.GET("", h.Recipes.List)
	recipes.POST("", h.Recipes.Save)
	recipes.POST("/dedupe", h.Recipes.Deduplicate)
	recipes.GET("/:id", h.Recipes.Get)
	recipes.PUT("/:id", h.Recipes.Save)
	recipes.DELETE("/:id", h.Recipes.Delete)

	finance := api.Group("/finance")
	finance.GET("/rates", h.Finance.GetRates)
	finance.PUT("/rates", h.Finance.SetRates)
	finance.GET("/costs", h.Finance.DailyCosts)
	finance.PUT("/costs/:id", h.Finance.UpdateDailyCost)
	finance.GET("/revenue", h.Finance.WeeklyRevenue)
	finance.GET("/overview", h.Finance.Overview)
	finance.GET("/report", h.Finance.Report)
	finance.GET("/report/export", h.Finance.Export)
	api.GET("/budgets", h.Finance.GetBudget)
	api.PUT("/budgets", h.Finance.SetBudget)

	crm := api.Group("/crm")
	crm.GET("", h.CRM.List)
	crm.POST("", h.CRM.Add)
	crm.GET("/:id", h.CRM.Get)
	crm.PATCH("/:id", h.CRM.Update)
	crm.GET("/:id/stats", h.CRM.Stats)
	crm.POST("/:id/outreach", h.CRM.Outreach)

	sales := api.Group("/sales")
	sales.GET("", h.Sales.List)
	sales.POST("", h.Sales.Create)
	sales.POST("/online", h.Sales.OnlineOrder)
	sales.GET("/:id", h.Sales.Get)
	sales.POST("/:id/status", h.Sales.Advance)
	sales.POST("/:id/cancel", h.Sales.Cancel)

	orders := api.Group("/purchase-orders")
	orders.GET("", h.Procurement.List)
	orders.POST("", h.Procurement.Create)
	orders.POST("/:id/receive", h.Procurement.Receive)
	orders.POST("/:id/complaint", h.Procurement.Complain)
	orders.POST("/:id/resolve", h.Procurement.Resolve)

	inventory := api.Group("/inventory")
	inventory.GET("", h.Inventory.Items)
	inventory.POST("", h.Inventory.AddItem)
	inventory.GET("/low-stock", h.Inventory.LowStock)
	inventory.DELETE("/:id", h.Inventory.DeleteItem)
	api.GET("/suppliers", h.Inventory.Suppliers)
	api.POST("/suppliers", h.Inventory.AddSupplier)
	api.GET("/finished-goods", h.Inventory.FinishedGoods)
	api.POST("/finished-goods", h.Inventory.Pack)
	api.PUT("/finished-goods/product", h.Inventory.UpdateProduct)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func secureMiddleware() gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
