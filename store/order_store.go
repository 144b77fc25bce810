package store

import (
	"context"
	"time"

	"logistics-api/apperr"
	"logistics-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderMutableFields are the only columns a lifecycle update may write.
var orderMutableFields = map[string]bool{"order_status": true, "driver_id": true}

type OrderStore struct {
	db *gorm.DB
}

// Create inserts o. A clashing order number surfaces as apperr.ErrDuplicateOrderNumber.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		if isDuplicate(err) {
			return apperr.ErrDuplicateOrderNumber
		}
		return err
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// GetForUpdate reads the order with a row lock where the dialect supports one.
// Only meaningful inside Store.Transaction.
func (s *OrderStore) GetForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// Query applies every non-zero filter field with AND and returns one page.
func (s *OrderStore) Query(ctx context.Context, f models.OrderFilter) (*models.Page[models.Order], error) {
	page, size := paginate(f.Page, f.PageSize)
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if f.OrderNo != "" {
		query = query.Where("order_no = ?", f.OrderNo)
	}
	if f.OrderStatus != "" {
		query = query.Where("order_status = ?", f.OrderStatus)
	}
	if f.WarehouseID != 0 {
		query = query.Where("warehouse_id = ?", f.WarehouseID)
	}
	if f.DriverID != 0 {
		query = query.Where("driver_id = ?", f.DriverID)
	}
	if f.CreateUserID != 0 {
		query = query.Where("create_user_id = ?", f.CreateUserID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := query.Order("id desc").Offset((page - 1) * size).Limit(size).Find(&orders).Error; err != nil {
		return nil, err
	}
	return &models.Page[models.Order]{Total: total, Page: page, PageSize: size, Data: orders}, nil
}

// UpdateStatus writes the allowed lifecycle columns only if the order is still
// in status from. It returns false when another writer got there first.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uint, from models.OrderStatus, fields map[string]interface{}) (bool, error) {
	update := map[string]interface{}{}
	for k, v := range fields {
		if orderMutableFields[k] {
			update[k] = v
		}
	}
	if len(update) == 0 {
		return false, apperr.Validation("nothing to update")
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(update)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetWarehouse assigns a warehouse to an order that has none yet.
func (s *OrderStore) SetWarehouse(ctx context.Context, id, warehouseID uint) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND warehouse_id IS NULL", id).
		Update("warehouse_id", warehouseID).Error
}

func (s *OrderStore) AddHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *OrderStore) ListHistory(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&history).Error
	return history, err
}

// CountByStatus groups live orders by status.
func (s *OrderStore) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		OrderStatus models.OrderStatus
		Count       int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("order_status, count(*) as count").
		Group("order_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.OrderStatus] = r.Count
	}
	return counts, nil
}

func (s *OrderStore) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}
