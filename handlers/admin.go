package handlers

import (
	"net/http"

	"logistics-api/models"

	"github.com/gin-gonic/gin"
)

type ListUsersQuery struct {
	Role     models.Role `form:"role" binding:"omitempty,oneof=admin driver customer"`
	Page     int         `form:"page" binding:"omitempty,min=1"`
	PageSize int         `form:"page_size" binding:"omitempty,min=1,max=50"`
}

// ListUsers returns users, optionally by role (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var q ListUsersQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.users.List(c.Request.Context(), who, q.Role, q.Page, q.PageSize)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	data := make([]UserResponse, len(page.Data))
	for i := range page.Data {
		data[i] = toUserResponse(&page.Data[i])
	}
	c.JSON(http.StatusOK, models.Page[UserResponse]{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Data:     data,
	})
}

// OrderStats aggregates orders by status for the admin dashboard
func (h *Handler) OrderStats(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.orders.Stats(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}
