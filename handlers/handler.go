package handlers

import (
	"net/http"
	"strconv"

	"logistics-api/middleware"
	"logistics-api/models"
	"logistics-api/services"
	"logistics-api/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// Handler carries the services behind every HTTP endpoint.
type Handler struct {
	users      *services.UserService
	orders     *services.OrderService
	warehouses *services.WarehouseService
	deliveries *services.DeliveryService
	health     HealthChecker
	log        *zap.Logger
}

type Services struct {
	Users      *services.UserService
	Orders     *services.OrderService
	Warehouses *services.WarehouseService
	Deliveries *services.DeliveryService
}

func New(svc Services, health HealthChecker, log *zap.Logger) *Handler {
	return &Handler{
		users:      svc.Users,
		orders:     svc.Orders,
		warehouses: svc.Warehouses,
		deliveries: svc.Deliveries,
		health:     health,
		log:        log,
	}
}

// bind decodes the JSON body into req and answers 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Describe(err)})
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Describe(err)})
		return false
	}
	return true
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// caller returns the authenticated caller. Routes behind Authenticate always
// have one; the 401 branch only guards against miswired routes.
func caller(c *gin.Context) (models.Caller, bool) {
	who, ok := middleware.CurrentCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return who, ok
}
