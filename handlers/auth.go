package handlers

import (
	"net/http"

	"logistics-api/models"
	"logistics-api/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=50"`
	Password string      `json:"password" binding:"required,min=6,max=72"`
	Role     models.Role `json:"role" binding:"required,oneof=admin driver customer"`
	Phone    string      `json:"phone" binding:"omitempty,phone"`
	RealName string      `json:"real_name" binding:"max=50"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateInfoRequest lists the only profile fields a user may change.
type UpdateInfoRequest struct {
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	RealName *string `json:"real_name" binding:"omitempty,max=50"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

type UserResponse struct {
	ID         uint        `json:"id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	Phone      *string     `json:"phone"`
	RealName   string      `json:"real_name"`
	CreateTime string      `json:"create_time"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Phone:      u.Phone,
		RealName:   u.RealName,
		CreateTime: u.CreatedAt.Format(timeLayout),
	}
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		RealName: req.RealName,
	})
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    toUserResponse(user),
	})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_info":    toUserResponse(user),
	})
}

// GetInfo returns the authenticated user's profile
func (h *Handler) GetInfo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	user, err := h.users.Info(c.Request.Context(), who)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) UpdateInfo(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req UpdateInfoRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.UpdateInfo(c.Request.Context(), who, services.ProfileInput{
		Phone:    req.Phone,
		RealName: req.RealName,
	})
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), who, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
