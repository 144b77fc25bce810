package store

import (
	"context"

	"logistics-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarehouseStore struct {
	db *gorm.DB
}

func (s *WarehouseStore) Create(ctx context.Context, w *models.Warehouse) error {
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *WarehouseStore) GetByID(ctx context.Context, id uint) (*models.Warehouse, error) {
	var w models.Warehouse
	if err := s.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// GetForUpdate locks the warehouse row for a stock adjustment.
func (s *WarehouseStore) GetForUpdate(ctx context.Context, id uint) (*models.Warehouse, error) {
	var w models.Warehouse
	if err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (s *WarehouseStore) List(ctx context.Context) ([]models.Warehouse, error) {
	warehouses := []models.Warehouse{}
	err := s.db.WithContext(ctx).Order("id asc").Find(&warehouses).Error
	return warehouses, err
}

// AdjustStock adds delta to current_stock.
func (s *WarehouseStore) AdjustStock(ctx context.Context, id uint, delta int) error {
	return s.db.WithContext(ctx).Model(&models.Warehouse{}).Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta)).Error
}

func (s *WarehouseStore) AddInbound(ctx context.Context, in *models.Inbound) error {
	return s.db.WithContext(ctx).Create(in).Error
}

func (s *WarehouseStore) AddOutbound(ctx context.Context, out *models.Outbound) error {
	return s.db.WithContext(ctx).Create(out).Error
}

func (s *WarehouseStore) ListInbound(ctx context.Context, warehouseID uint, page, size int) (*models.Page[models.Inbound], error) {
	page, size = paginate(page, size)
	query := s.db.WithContext(ctx).Model(&models.Inbound{}).Where("warehouse_id = ?", warehouseID).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	rows := []models.Inbound{}
	if err := query.Order("id desc").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, err
	}
	return &models.Page[models.Inbound]{Total: total, Page: page, PageSize: size, Data: rows}, nil
}

func (s *WarehouseStore) ListOutbound(ctx context.Context, warehouseID uint, page, size int) (*models.Page[models.Outbound], error) {
	page, size = paginate(page, size)
	query := s.db.WithContext(ctx).Model(&models.Outbound{}).Where("warehouse_id = ?", warehouseID).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	rows := []models.Outbound{}
	if err := query.Order("id desc").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, err
	}
	return &models.Page[models.Outbound]{Total: total, Page: page, PageSize: size, Data: rows}, nil
}
