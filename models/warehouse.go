package models

import (
	"time"

	"gorm.io/gorm"
)

type Warehouse struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"warehouse_name" gorm:"column:warehouse_name;size:50;not null"`
	Province      string         `json:"province" gorm:"size:20"`
	City          string         `json:"city" gorm:"size:20"`
	District      string         `json:"district" gorm:"size:20"`
	Address       string         `json:"address" gorm:"size:200"`
	CapacityLimit int            `json:"capacity_limit" gorm:"not null"`
	CurrentStock  int            `json:"current_stock" gorm:"not null;default:0"`
	ManagerID     *uint          `json:"manager_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// Inbound records goods arriving at a warehouse.
type Inbound struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	WarehouseID   uint      `json:"warehouse_id" gorm:"index;not null"`
	OrderID       *uint     `json:"order_id" gorm:"index"`
	GoodsType     string    `json:"goods_type" gorm:"size:30"`
	GoodsQuantity int       `json:"goods_quantity" gorm:"not null"`
	OperatorID    uint      `json:"operator_id"`
	CreatedAt     time.Time `json:"inbound_time"`
}

// Outbound records goods leaving a warehouse for delivery.
type Outbound struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	WarehouseID   uint      `json:"warehouse_id" gorm:"index;not null"`
	OrderID       uint      `json:"order_id" gorm:"index;not null"`
	GoodsType     string    `json:"goods_type" gorm:"size:30"`
	GoodsQuantity int       `json:"goods_quantity" gorm:"not null"`
	OperatorID    uint      `json:"operator_id"`
	CreatedAt     time.Time `json:"outbound_time"`
}
