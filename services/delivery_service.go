package services

import (
	"context"
	"time"

	"logistics-api/apperr"
	"logistics-api/models"
	"logistics-api/store"
)

type TrackInput struct {
	Node    string
	Address string
}

// DriverStats is a driver's workload. Efficiency is the share of closed
// tasks that ended completed, 0 until a task closes.
type DriverStats struct {
	TaskCount  int64   `json:"task_count"`
	Delivering int64   `json:"delivering"`
	Completed  int64   `json:"completed"`
	Cancelled  int64   `json:"cancelled"`
	Efficiency float64 `json:"efficiency"`
}

type DeliveryService struct {
	store  *store.Store
	orders *OrderService
	clock  func() time.Time
}

func NewDeliveryService(st *store.Store, orders *OrderService) *DeliveryService {
	return &DeliveryService{store: st, orders: orders, clock: time.Now}
}

// MyTasks lists the calling driver's delivery tasks, optionally by status.
func (s *DeliveryService) MyTasks(ctx context.Context, caller models.Caller, status models.TaskStatus) ([]models.DeliveryTask, error) {
	if !isDriver(caller) {
		return nil, apperr.ErrForbidden
	}
	return s.store.Deliveries.ListTasksByDriver(ctx, caller.ID, status)
}

// MyStats summarizes the calling driver's tasks.
func (s *DeliveryService) MyStats(ctx context.Context, caller models.Caller) (*DriverStats, error) {
	if !isDriver(caller) {
		return nil, apperr.ErrForbidden
	}
	counts, err := s.store.Deliveries.CountTasksByStatus(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	st := &DriverStats{
		Delivering: counts[models.TaskDelivering],
		Completed:  counts[models.TaskCompleted],
		Cancelled:  counts[models.TaskCancelled],
	}
	st.TaskCount = st.Delivering + st.Completed + st.Cancelled
	if closed := st.Completed + st.Cancelled; closed > 0 {
		st.Efficiency = float64(st.Completed) / float64(closed)
	}
	return st, nil
}

// AddTrack appends a progress node to one of the caller's open tasks. Tasks
// owned by someone else are reported as missing.
func (s *DeliveryService) AddTrack(ctx context.Context, caller models.Caller, taskID uint, in TrackInput) (*models.DeliveryTrack, error) {
	task, err := s.store.Deliveries.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ownsTask(caller, task) {
		return nil, apperr.ErrNotFound
	}
	if task.TaskStatus != models.TaskDelivering {
		return nil, apperr.Validation("task %d is %s, tracks can only be added while delivering", task.ID, task.TaskStatus)
	}
	track := &models.DeliveryTrack{
		TaskID:       task.ID,
		TrackNode:    in.Node,
		TrackAddress: in.Address,
		DriverID:     caller.ID,
		TrackTime:    s.clock(),
	}
	if err := s.store.Deliveries.AddTrack(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// Tracks returns the delivery progress of an order visible to caller.
func (s *DeliveryService) Tracks(ctx context.Context, caller models.Caller, orderID uint) ([]models.DeliveryTrack, error) {
	if _, err := s.orders.Detail(ctx, caller, orderID); err != nil {
		return nil, err
	}
	return s.store.Deliveries.ListTracksForOrder(ctx, orderID)
}
