// Package events announces order lifecycle changes to other systems.
package events

import (
	"context"
	"time"

	"logistics-api/models"
)

// StatusChanged is emitted after a status transition commits.
type StatusChanged struct {
	OrderID    uint               `json:"order_id"`
	OrderNo    string             `json:"order_no"`
	FromStatus models.OrderStatus `json:"from_status"`
	ToStatus   models.OrderStatus `json:"to_status"`
	DriverID   *uint              `json:"driver_id,omitempty"`
	ChangedBy  uint               `json:"changed_by"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// RoutingKey is the topic the event is published under.
func (e StatusChanged) RoutingKey() string {
	return "order.status." + string(e.ToStatus)
}

//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=events

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e StatusChanged) error
	Close() error
}
