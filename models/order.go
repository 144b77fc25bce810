package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a shipping order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusDelivering OrderStatus = "delivering"
	StatusSigned     OrderStatus = "signed"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusDelivering, StatusSigned, StatusCancelled}

type Order struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	OrderNo string `json:"order_no" gorm:"size:30;uniqueIndex;not null"`

	SenderName     string `json:"sender_name" gorm:"size:50"`
	SenderPhone    string `json:"sender_phone" gorm:"size:20"`
	SenderProvince string `json:"sender_province" gorm:"size:20"`
	SenderCity     string `json:"sender_city" gorm:"size:20"`
	SenderDistrict string `json:"sender_district" gorm:"size:20"`
	SenderAddress  string `json:"sender_address" gorm:"size:200"`

	ReceiverName     string `json:"receiver_name" gorm:"size:50"`
	ReceiverPhone    string `json:"receiver_phone" gorm:"size:20"`
	ReceiverProvince string `json:"receiver_province" gorm:"size:20"`
	ReceiverCity     string `json:"receiver_city" gorm:"size:20"`
	ReceiverDistrict string `json:"receiver_district" gorm:"size:20"`
	ReceiverAddress  string `json:"receiver_address" gorm:"size:200"`

	GoodsType     string `json:"goods_type" gorm:"size:30"`
	GoodsQuantity int    `json:"goods_quantity" gorm:"not null;default:1"`

	OrderStatus  OrderStatus `json:"order_status" gorm:"size:16;index;not null;default:'pending'"`
	DriverID     *uint       `json:"driver_id" gorm:"index"`
	WarehouseID  *uint       `json:"warehouse_id" gorm:"index"`
	CreateUserID uint        `json:"create_user_id" gorm:"index;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status" gorm:"size:16"`
	ToStatus   OrderStatus `json:"to_status" gorm:"size:16;not null"`
	DriverID   *uint       `json:"driver_id"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note" gorm:"size:200"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderFilter narrows an order listing. Zero values mean "no constraint".
type OrderFilter struct {
	OrderNo      string
	OrderStatus  OrderStatus
	WarehouseID  uint
	DriverID     uint
	CreateUserID uint
	Page         int
	PageSize     int
}

// Page is one page of a filtered listing.
type Page[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Data     []T   `json:"data"`
}
