package services

import (
	"context"
	"errors"

	"logistics-api/apperr"
	"logistics-api/models"
	"logistics-api/store"
)

type WarehouseInput struct {
	Name          string
	Province      string
	City          string
	District      string
	Address       string
	CapacityLimit int
	ManagerID     *uint
}

type StockInput struct {
	WarehouseID   uint
	OrderID       uint
	GoodsType     string
	GoodsQuantity int
}

type WarehouseService struct {
	store *store.Store
}

func NewWarehouseService(st *store.Store) *WarehouseService {
	return &WarehouseService{store: st}
}

func (s *WarehouseService) Create(ctx context.Context, caller models.Caller, in WarehouseInput) (*models.Warehouse, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if in.CapacityLimit < 1 {
		return nil, apperr.Validation("capacity_limit must be at least 1")
	}
	if in.ManagerID != nil {
		if _, err := s.store.Users.GetByID(ctx, *in.ManagerID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("manager %d does not exist", *in.ManagerID)
			}
			return nil, err
		}
	}
	w := &models.Warehouse{
		Name:          in.Name,
		Province:      in.Province,
		City:          in.City,
		District:      in.District,
		Address:       in.Address,
		CapacityLimit: in.CapacityLimit,
		ManagerID:     in.ManagerID,
	}
	if err := s.store.Warehouses.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WarehouseService) List(ctx context.Context, caller models.Caller) ([]models.Warehouse, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	return s.store.Warehouses.List(ctx)
}

func (s *WarehouseService) Get(ctx context.Context, caller models.Caller, id uint) (*models.Warehouse, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	return s.store.Warehouses.GetByID(ctx, id)
}

// Inbound books goods into a warehouse without exceeding its capacity.
func (s *WarehouseService) Inbound(ctx context.Context, caller models.Caller, in StockInput) (*models.Inbound, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if in.GoodsQuantity < 1 {
		return nil, apperr.Validation("goods_quantity must be at least 1")
	}
	record := &models.Inbound{
		WarehouseID:   in.WarehouseID,
		GoodsType:     in.GoodsType,
		GoodsQuantity: in.GoodsQuantity,
		OperatorID:    caller.ID,
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		w, err := tx.Warehouses.GetForUpdate(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if w.CurrentStock+in.GoodsQuantity > w.CapacityLimit {
			return apperr.Validation("capacity exceeded: stock %d + %d > limit %d",
				w.CurrentStock, in.GoodsQuantity, w.CapacityLimit)
		}
		if in.OrderID != 0 {
			if _, err := tx.Orders.GetByID(ctx, in.OrderID); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.Validation("order %d does not exist", in.OrderID)
				}
				return err
			}
			orderID := in.OrderID
			record.OrderID = &orderID
			if err := tx.Orders.SetWarehouse(ctx, in.OrderID, w.ID); err != nil {
				return err
			}
		}
		if err := tx.Warehouses.AdjustStock(ctx, w.ID, in.GoodsQuantity); err != nil {
			return err
		}
		return tx.Warehouses.AddInbound(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Outbound ships goods for an order out of a warehouse.
func (s *WarehouseService) Outbound(ctx context.Context, caller models.Caller, in StockInput) (*models.Outbound, error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if in.GoodsQuantity < 1 {
		return nil, apperr.Validation("goods_quantity must be at least 1")
	}
	if in.OrderID == 0 {
		return nil, apperr.Validation("order_id is required")
	}
	record := &models.Outbound{
		WarehouseID:   in.WarehouseID,
		OrderID:       in.OrderID,
		GoodsType:     in.GoodsType,
		GoodsQuantity: in.GoodsQuantity,
		OperatorID:    caller.ID,
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		w, err := tx.Warehouses.GetForUpdate(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if _, err := tx.Orders.GetByID(ctx, in.OrderID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Validation("order %d does not exist", in.OrderID)
			}
			return err
		}
		if w.CurrentStock < in.GoodsQuantity {
			return apperr.Validation("insufficient stock: have %d, need %d", w.CurrentStock, in.GoodsQuantity)
		}
		if err := tx.Warehouses.AdjustStock(ctx, w.ID, -in.GoodsQuantity); err != nil {
			return err
		}
		return tx.Warehouses.AddOutbound(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *WarehouseService) ListInbound(ctx context.Context, caller models.Caller, warehouseID uint, page, size int) (*models.Page[models.Inbound], error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if _, err := s.store.Warehouses.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.store.Warehouses.ListInbound(ctx, warehouseID, page, size)
}

func (s *WarehouseService) ListOutbound(ctx context.Context, caller models.Caller, warehouseID uint, page, size int) (*models.Page[models.Outbound], error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if _, err := s.store.Warehouses.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.store.Warehouses.ListOutbound(ctx, warehouseID, page, size)
}
