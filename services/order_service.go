package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"logistics-api/apperr"
	"logistics-api/events"
	"logistics-api/metrics"
	"logistics-api/models"
	"logistics-api/statemachine"
	"logistics-api/store"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
)

// GenerateOrderNo returns the 13-digit millisecond timestamp followed by a
// 4-digit random suffix. Uniqueness is enforced by the store, not here.
func GenerateOrderNo() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(1000+rand.IntN(9000))
}

type Contact struct {
	Name     string
	Phone    string
	Province string
	City     string
	District string
	Address  string
}

type OrderInput struct {
	Sender        Contact
	Receiver      Contact
	GoodsType     string
	GoodsQuantity int
	WarehouseID   uint
}

type StatusInput struct {
	Status   models.OrderStatus
	DriverID *uint
	Note     string
}

type OrderStats struct {
	ByStatus     map[models.OrderStatus]int64 `json:"by_status"`
	CreatedToday int64                        `json:"created_today"`
	CreatedWeek  int64                        `json:"created_this_week"`
}

// OrderService owns the order lifecycle and its authorization rules.
type OrderService struct {
	store      *store.Store
	events     events.Publisher
	metrics    *metrics.ServerMetrics
	log        *zap.Logger
	retries    int
	newOrderNo func() string
	clock      func() time.Time
}

func NewOrderService(st *store.Store, pub events.Publisher, m *metrics.ServerMetrics, log *zap.Logger, retries int) *OrderService {
	if retries < 1 {
		retries = 1
	}
	return &OrderService{
		store:      st,
		events:     pub,
		metrics:    m,
		log:        log,
		retries:    retries,
		newOrderNo: GenerateOrderNo,
		clock:      time.Now,
	}
}

// Create places a new pending order owned by caller.
func (s *OrderService) Create(ctx context.Context, caller models.Caller, in OrderInput) (*models.Order, error) {
	if in.GoodsQuantity == 0 {
		in.GoodsQuantity = 1
	}
	if in.GoodsQuantity < 1 {
		return nil, apperr.Validation("goods_quantity must be at least 1")
	}
	var warehouseID *uint
	if in.WarehouseID != 0 {
		if _, err := s.store.Warehouses.GetByID(ctx, in.WarehouseID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("warehouse %d does not exist", in.WarehouseID)
			}
			return nil, err
		}
		id := in.WarehouseID
		warehouseID = &id
	}

	for attempt := 1; ; attempt++ {
		order := &models.Order{
			OrderNo:          s.newOrderNo(),
			SenderName:       in.Sender.Name,
			SenderPhone:      in.Sender.Phone,
			SenderProvince:   in.Sender.Province,
			SenderCity:       in.Sender.City,
			SenderDistrict:   in.Sender.District,
			SenderAddress:    in.Sender.Address,
			ReceiverName:     in.Receiver.Name,
			ReceiverPhone:    in.Receiver.Phone,
			ReceiverProvince: in.Receiver.Province,
			ReceiverCity:     in.Receiver.City,
			ReceiverDistrict: in.Receiver.District,
			ReceiverAddress:  in.Receiver.Address,
			GoodsType:        in.GoodsType,
			GoodsQuantity:    in.GoodsQuantity,
			OrderStatus:      models.StatusPending,
			WarehouseID:      warehouseID,
			CreateUserID:     caller.ID,
			CreatedAt:        s.clock(),
		}
		err := s.store.Transaction(ctx, func(tx *store.Store) error {
			if err := tx.Orders.Create(ctx, order); err != nil {
				return err
			}
			return tx.Orders.AddHistory(ctx, &models.OrderStatusHistory{
				OrderID:   order.ID,
				ToStatus:  models.StatusPending,
				ChangedBy: caller.ID,
				Note:      "order created",
			})
		})
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, apperr.ErrDuplicateOrderNumber) || attempt >= s.retries {
			return nil, err
		}
		s.log.Warn("order number collision, retrying",
			zap.String("order_no", order.OrderNo), zap.Int("attempt", attempt))
	}
}

// Detail returns the order if caller may see it. Invisible and missing
// orders both yield apperr.ErrNotFound.
func (s *OrderService) Detail(ctx context.Context, caller models.Caller, id uint) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(caller, order) {
		return nil, apperr.ErrNotFound
	}
	return order, nil
}

// Query lists the orders visible to caller that also match f.
func (s *OrderService) Query(ctx context.Context, caller models.Caller, f models.OrderFilter) (*models.Page[models.Order], error) {
	if f.OrderStatus != "" && !statemachine.IsKnown(f.OrderStatus) {
		return nil, apperr.Validation("unknown order_status %q", f.OrderStatus)
	}
	return s.store.Orders.Query(ctx, scopeFilter(caller, f))
}

// UpdateStatus moves an order along the lifecycle. Non-admin callers and
// missing orders are refused with the same apperr.ErrForbidden.
func (s *OrderService) UpdateStatus(ctx context.Context, caller models.Caller, id uint, in StatusInput) (*models.Order, error) {
	if !canTransition(caller) {
		return nil, apperr.ErrForbidden
	}
	if !statemachine.IsKnown(in.Status) {
		return nil, apperr.Validation("unknown order_status %q", in.Status)
	}
	needsDriver := statemachine.RequiresDriver(in.Status)
	if needsDriver && (in.DriverID == nil || *in.DriverID == 0) {
		return nil, apperr.Validation("driver_id is required when order_status is %s", in.Status)
	}

	var before, after *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.ErrForbidden
			}
			return err
		}
		if err := statemachine.CanTransition(current.OrderStatus, in.Status); err != nil {
			return err
		}

		fields := map[string]interface{}{"order_status": in.Status}
		var driverID *uint
		if needsDriver {
			driver, err := tx.Users.GetByID(ctx, *in.DriverID)
			if err != nil || driver.Role != models.RoleDriver {
				if err != nil && !errors.Is(err, apperr.ErrNotFound) {
					return err
				}
				return apperr.Validation("driver %d does not exist", *in.DriverID)
			}
			driverID = &driver.ID
			fields["driver_id"] = driver.ID
		}

		ok, err := tx.Orders.UpdateStatus(ctx, id, current.OrderStatus, fields)
		if err != nil {
			return err
		}
		if !ok {
			latest, err := tx.Orders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			return &statemachine.InvalidTransitionError{From: latest.OrderStatus, To: in.Status}
		}

		if err := tx.Orders.AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: current.OrderStatus,
			ToStatus:   in.Status,
			DriverID:   driverID,
			ChangedBy:  caller.ID,
			Note:       in.Note,
		}); err != nil {
			return err
		}
		if err := s.trackDelivery(ctx, tx, caller, current, in.Status, driverID, in.Note); err != nil {
			return err
		}

		before = current
		after, err = tx.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(before.OrderStatus, after.OrderStatus)
	event := events.StatusChanged{
		OrderID:    after.ID,
		OrderNo:    after.OrderNo,
		FromStatus: before.OrderStatus,
		ToStatus:   after.OrderStatus,
		DriverID:   after.DriverID,
		ChangedBy:  caller.ID,
		OccurredAt: s.clock(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish status change failed", zap.Uint("order_id", after.ID), zap.Error(err))
	}
	return after, nil
}

// trackDelivery keeps the driver's delivery task in step with the order.
func (s *OrderService) trackDelivery(ctx context.Context, tx *store.Store, caller models.Caller, order *models.Order, to models.OrderStatus, driverID *uint, note string) error {
	switch to {
	case models.StatusDelivering:
		return tx.Deliveries.CreateTask(ctx, &models.DeliveryTask{
			OrderID:       order.ID,
			DriverID:      *driverID,
			TaskStatus:    models.TaskDelivering,
			AssignUserID:  caller.ID,
			AssignTime:    s.clock(),
			DeliveryNotes: note,
		})
	case models.StatusSigned, models.StatusCancelled:
		task, err := tx.Deliveries.ActiveTaskForOrder(ctx, order.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		status := models.TaskCompleted
		if to == models.StatusCancelled {
			status = models.TaskCancelled
		}
		return tx.Deliveries.CloseTask(ctx, task.ID, status, s.clock())
	}
	return nil
}

// History returns the status audit trail of an order visible to caller.
func (s *OrderService) History(ctx context.Context, caller models.Caller, id uint) ([]models.OrderStatusHistory, error) {
	if _, err := s.Detail(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.store.Orders.ListHistory(ctx, id)
}

// Stats summarizes orders for the admin dashboard.
func (s *OrderService) Stats(ctx context.Context, caller models.Caller) (*OrderStats, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	byStatus, err := s.store.Orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	t := now.With(s.clock())
	today, err := s.store.Orders.CountCreatedSince(ctx, t.BeginningOfDay())
	if err != nil {
		return nil, err
	}
	week, err := s.store.Orders.CountCreatedSince(ctx, t.BeginningOfWeek())
	if err != nil {
		return nil, err
	}
	return &OrderStats{ByStatus: byStatus, CreatedToday: today, CreatedWeek: week}, nil
}
