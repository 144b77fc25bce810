package handlers

import (
	"net/http"
	"strings"

	"logistics-api/models"
	"logistics-api/services"

	"github.com/gin-gonic/gin"
)

const orderNotFound = "Order not found or not visible"

type CreateOrderRequest struct {
	SenderName     string `json:"sender_name" binding:"required,max=50"`
	SenderPhone    string `json:"sender_phone" binding:"required,phone"`
	SenderProvince string `json:"sender_province" binding:"required,max=20"`
	SenderCity     string `json:"sender_city" binding:"required,max=20"`
	SenderDistrict string `json:"sender_district" binding:"required,max=20"`
	SenderAddress  string `json:"sender_address" binding:"required,max=200"`

	ReceiverName     string `json:"receiver_name" binding:"required,max=50"`
	ReceiverPhone    string `json:"receiver_phone" binding:"required,phone"`
	ReceiverProvince string `json:"receiver_province" binding:"required,max=20"`
	ReceiverCity     string `json:"receiver_city" binding:"required,max=20"`
	ReceiverDistrict string `json:"receiver_district" binding:"required,max=20"`
	ReceiverAddress  string `json:"receiver_address" binding:"required,max=200"`

	GoodsType     string `json:"goods_type" binding:"max=30"`
	GoodsQuantity int    `json:"goods_quantity" binding:"omitempty,min=1"`
	WarehouseID   uint   `json:"warehouse_id"`
}

type UpdateStatusRequest struct {
	OrderStatus models.OrderStatus `json:"order_status" binding:"required,oneof=pending delivering signed cancelled"`
	DriverID    *uint              `json:"driver_id" binding:"required_if=OrderStatus delivering"`
	Note        string             `json:"note" binding:"max=200"`
}

type OrderQuery struct {
	OrderNo     string             `form:"order_no" binding:"max=30"`
	OrderStatus models.OrderStatus `form:"order_status" binding:"omitempty,oneof=pending delivering signed cancelled"`
	WarehouseID uint               `form:"warehouse_id"`
	DriverID    uint               `form:"driver_id"`
	Page        int                `form:"page" binding:"omitempty,min=1"`
	PageSize    int                `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// OrderResponse flattens the address parts the way clients display them.
type OrderResponse struct {
	ID              uint               `json:"id"`
	OrderNo         string             `json:"order_no"`
	SenderName      string             `json:"sender_name"`
	SenderPhone     string             `json:"sender_phone"`
	SenderAddress   string             `json:"sender_address"`
	ReceiverName    string             `json:"receiver_name"`
	ReceiverPhone   string             `json:"receiver_phone"`
	ReceiverAddress string             `json:"receiver_address"`
	GoodsType       string             `json:"goods_type"`
	GoodsQuantity   int                `json:"goods_quantity"`
	OrderStatus     models.OrderStatus `json:"order_status"`
	DriverID        *uint              `json:"driver_id"`
	WarehouseID     *uint              `json:"warehouse_id"`
	CreateUserID    uint               `json:"create_user_id"`
	CreateTime      string             `json:"create_time"`
	UpdateTime      string             `json:"update_time"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		SenderName:      o.SenderName,
		SenderPhone:     o.SenderPhone,
		SenderAddress:   fullAddress(o.SenderProvince, o.SenderCity, o.SenderDistrict, o.SenderAddress),
		ReceiverName:    o.ReceiverName,
		ReceiverPhone:   o.ReceiverPhone,
		ReceiverAddress: fullAddress(o.ReceiverProvince, o.ReceiverCity, o.ReceiverDistrict, o.ReceiverAddress),
		GoodsType:       o.GoodsType,
		GoodsQuantity:   o.GoodsQuantity,
		OrderStatus:     o.OrderStatus,
		DriverID:        o.DriverID,
		WarehouseID:     o.WarehouseID,
		CreateUserID:    o.CreateUserID,
		CreateTime:      o.CreatedAt.Format(timeLayout),
		UpdateTime:      o.UpdatedAt.Format(timeLayout),
	}
}

func fullAddress(parts ...string) string {
	return strings.TrimSpace(strings.Join(parts, ""))
}

// CreateOrder places a new order owned by the caller
func (h *Handler) CreateOrder(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), who, services.OrderInput{
		Sender: services.Contact{
			Name:     req.SenderName,
			Phone:    req.SenderPhone,
			Province: req.SenderProvince,
			City:     req.SenderCity,
			District: req.SenderDistrict,
			Address:  req.SenderAddress,
		},
		Receiver: services.Contact{
			Name:     req.ReceiverName,
			Phone:    req.ReceiverPhone,
			Province: req.ReceiverProvince,
			City:     req.ReceiverCity,
			District: req.ReceiverDistrict,
			Address:  req.ReceiverAddress,
		},
		GoodsType:     req.GoodsType,
		GoodsQuantity: req.GoodsQuantity,
		WarehouseID:   req.WarehouseID,
	})
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// GetOrderDetail returns a single order visible to the caller
func (h *Handler) GetOrderDetail(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Detail(c.Request.Context(), who, id)
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// QueryOrders lists the caller's visible orders with optional filters
func (h *Handler) QueryOrders(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var q OrderQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.orders.Query(c.Request.Context(), who, models.OrderFilter{
		OrderNo:     q.OrderNo,
		OrderStatus: q.OrderStatus,
		WarehouseID: q.WarehouseID,
		DriverID:    q.DriverID,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	data := make([]OrderResponse, len(page.Data))
	for i := range page.Data {
		data[i] = toOrderResponse(&page.Data[i])
	}
	c.JSON(http.StatusOK, models.Page[OrderResponse]{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Data:     data,
	})
}

// UpdateOrderStatus moves an order along its lifecycle (admin only)
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), who, id, services.StatusInput{
		Status:   req.OrderStatus,
		DriverID: req.DriverID,
		Note:     req.Note,
	})
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   toOrderResponse(order),
	})
}

// GetOrderHistory returns the status audit trail of a visible order
func (h *Handler) GetOrderHistory(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	history, err := h.orders.History(c.Request.Context(), who, id)
	if err != nil {
		h.respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(history), "history": history})
}
