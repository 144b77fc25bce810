package models

import "time"

// TaskStatus is the state of a driver's delivery task.
type TaskStatus string

const (
	TaskDelivering TaskStatus = "delivering"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// DeliveryTask is created when an admin hands an order to a driver.
type DeliveryTask struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	OrderID       uint       `json:"order_id" gorm:"index;not null"`
	DriverID      uint       `json:"driver_id" gorm:"index;not null"`
	TaskStatus    TaskStatus `json:"task_status" gorm:"size:16;not null"`
	AssignUserID  uint       `json:"assign_user_id"`
	AssignTime    time.Time  `json:"assign_time"`
	CompleteTime  *time.Time `json:"complete_time"`
	DeliveryNotes string     `json:"delivery_notes" gorm:"size:200"`
}

// DeliveryTrack is one progress node reported by the driver.
type DeliveryTrack struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TaskID       uint      `json:"task_id" gorm:"index;not null"`
	TrackNode    string    `json:"track_node" gorm:"size:50;not null"`
	TrackAddress string    `json:"track_address" gorm:"size:200"`
	DriverID     uint      `json:"driver_id"`
	TrackTime    time.Time `json:"track_time"`
}
