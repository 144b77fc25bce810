package routes

import (
	"logistics-api/auth"
	"logistics-api/handlers"
	"logistics-api/metrics"
	"logistics-api/middleware"
	"logistics-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the router needs beyond the handlers themselves.
type Deps struct {
	Handler *handlers.Handler
	Tokens  *auth.TokenIssuer
	Users   middleware.UserLookup
	Metrics *metrics.ServerMetrics
	Log     *zap.Logger
}

const (
	registerPath = "/api/v1/user/register"
	loginPath    = "/api/v1/user/login"
	machinePath  = "/api/v1/state-machine"
)

func SetupRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	r.Use(middleware.RequestID(), middleware.Logger(d.Log), middleware.CORS())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(d.Tokens, d.Users, d.Log, registerPath, loginPath, machinePath))

	// ── Public routes ──────────────────────────────────────────────
	api.POST("/user/register", h.Register)
	api.POST("/user/login", h.Login)
	api.GET("/state-machine", h.GetStateMachineInfo)

	// ── User routes ────────────────────────────────────────────────
	user := api.Group("/user")
	{
		user.GET("/info", h.GetInfo)
		user.PUT("/info", h.UpdateInfo)
		user.PUT("/reset-password", h.ResetPassword)
		user.GET("/list", middleware.RoleRequired(models.RoleAdmin), h.ListUsers)
	}

	// ── Order routes ───────────────────────────────────────────────
	order := api.Group("/order")
	{
		order.POST("/create", h.CreateOrder)
		order.GET("/detail/:id", h.GetOrderDetail)
		order.GET("/query", h.QueryOrders)
		order.PUT("/status/:id", h.UpdateOrderStatus)
		order.GET("/history/:id", h.GetOrderHistory)
		order.GET("/tracks/:id", h.GetOrderTracks)
		order.GET("/stats", middleware.RoleRequired(models.RoleAdmin), h.OrderStats)
	}

	// ── Warehouse routes (admin) ───────────────────────────────────
	warehouse := api.Group("/warehouse")
	warehouse.Use(middleware.RoleRequired(models.RoleAdmin))
	{
		warehouse.POST("/create", h.CreateWarehouse)
		warehouse.GET("/list", h.ListWarehouses)
		warehouse.GET("/detail/:id", h.GetWarehouse)
		warehouse.POST("/inbound/:id", h.Inbound)
		warehouse.POST("/outbound/:id", h.Outbound)
		warehouse.GET("/inbound/:id", h.ListInbound)
		warehouse.GET("/outbound/:id", h.ListOutbound)
	}

	// ── Driver routes ──────────────────────────────────────────────
	delivery := api.Group("/delivery")
	delivery.Use(middleware.RoleRequired(models.RoleDriver))
	{
		delivery.GET("/tasks", h.GetMyTasks)
		delivery.GET("/stats", h.GetMyStats)
		delivery.POST("/tasks/:id/track", h.AddTrack)
	}
}
