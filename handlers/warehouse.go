package handlers

import (
	"net/http"

	"logistics-api/services"

	"github.com/gin-gonic/gin"
)

const warehouseNotFound = "Warehouse not found"

type CreateWarehouseRequest struct {
	Name          string `json:"warehouse_name" binding:"required,max=50"`
	Province      string `json:"province" binding:"required,max=20"`
	City          string `json:"city" binding:"required,max=20"`
	District      string `json:"district" binding:"required,max=20"`
	Address       string `json:"address" binding:"required,max=200"`
	CapacityLimit int    `json:"capacity_limit" binding:"required,min=1"`
	ManagerID     *uint  `json:"manager_id"`
}

type StockRequest struct {
	OrderID       uint   `json:"order_id"`
	GoodsType     string `json:"goods_type" binding:"max=30"`
	GoodsQuantity int    `json:"goods_quantity" binding:"required,min=1"`
}

type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// CreateWarehouse registers a new warehouse (admin only)
func (h *Handler) CreateWarehouse(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req CreateWarehouseRequest
	if !bind(c, &req) {
		return
	}
	w, err := h.warehouses.Create(c.Request.Context(), who, services.WarehouseInput{
		Name:          req.Name,
		Province:      req.Province,
		City:          req.City,
		District:      req.District,
		Address:       req.Address,
		CapacityLimit: req.CapacityLimit,
		ManagerID:     req.ManagerID,
	})
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Warehouse created", "warehouse": w})
}

func (h *Handler) ListWarehouses(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.warehouses.List(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "warehouses": list})
}

func (h *Handler) GetWarehouse(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	w, err := h.warehouses.Get(c.Request.Context(), who, id)
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouse": w})
}

// Inbound books goods into the warehouse
func (h *Handler) Inbound(c *gin.Context) {
	h.moveStock(c, true)
}

// Outbound ships goods for an order out of the warehouse
func (h *Handler) Outbound(c *gin.Context) {
	h.moveStock(c, false)
}

func (h *Handler) moveStock(c *gin.Context, inbound bool) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !bind(c, &req) {
		return
	}
	in := services.StockInput{
		WarehouseID:   id,
		OrderID:       req.OrderID,
		GoodsType:     req.GoodsType,
		GoodsQuantity: req.GoodsQuantity,
	}
	var (
		record any
		err    error
	)
	if inbound {
		record, err = h.warehouses.Inbound(c.Request.Context(), who, in)
	} else {
		record, err = h.warehouses.Outbound(c.Request.Context(), who, in)
	}
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Stock updated", "record": record})
}

func (h *Handler) ListInbound(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.warehouses.ListInbound(c.Request.Context(), who, id, q.Page, q.PageSize)
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) ListOutbound(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.warehouses.ListOutbound(c.Request.Context(), who, id, q.Page, q.PageSize)
	if err != nil {
		h.respondError(c, err, warehouseNotFound)
		return
	}
	c.JSON(http.StatusOK, page)
}
