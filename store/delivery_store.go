package store

import (
	"context"
	"time"

	"logistics-api/models"

	"gorm.io/gorm"
)

type DeliveryStore struct {
	db *gorm.DB
}

func (s *DeliveryStore) CreateTask(ctx context.Context, t *models.DeliveryTask) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *DeliveryStore) GetTask(ctx context.Context, id uint) (*models.DeliveryTask, error) {
	var t models.DeliveryTask
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ActiveTaskForOrder returns the order's task that is still delivering.
func (s *DeliveryStore) ActiveTaskForOrder(ctx context.Context, orderID uint) (*models.DeliveryTask, error) {
	var t models.DeliveryTask
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND task_status = ?", orderID, models.TaskDelivering).
		Order("id desc").First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CloseTask moves a delivering task to status, stamping complete_time.
func (s *DeliveryStore) CloseTask(ctx context.Context, id uint, status models.TaskStatus, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.DeliveryTask{}).
		Where("id = ? AND task_status = ?", id, models.TaskDelivering).
		Updates(map[string]interface{}{"task_status": status, "complete_time": at}).Error
}

func (s *DeliveryStore) ListTasksByDriver(ctx context.Context, driverID uint, status models.TaskStatus) ([]models.DeliveryTask, error) {
	tasks := []models.DeliveryTask{}
	query := s.db.WithContext(ctx).Where("driver_id = ?", driverID)
	if status != "" {
		query = query.Where("task_status = ?", status)
	}
	err := query.Order("id desc").Find(&tasks).Error
	return tasks, err
}

// CountTasksByStatus groups a driver's tasks by task status.
func (s *DeliveryStore) CountTasksByStatus(ctx context.Context, driverID uint) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		TaskStatus models.TaskStatus
		Count      int64
	}
	err := s.db.WithContext(ctx).Model(&models.DeliveryTask{}).
		Select("task_status, count(*) as count").
		Where("driver_id = ?", driverID).
		Group("task_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[models.TaskStatus]int64{
		models.TaskDelivering: 0,
		models.TaskCompleted:  0,
		models.TaskCancelled:  0,
	}
	for _, r := range rows {
		counts[r.TaskStatus] = r.Count
	}
	return counts, nil
}

func (s *DeliveryStore) AddTrack(ctx context.Context, tr *models.DeliveryTrack) error {
	return s.db.WithContext(ctx).Create(tr).Error
}

// ListTracksForOrder returns every track node of every task of the order.
func (s *DeliveryStore) ListTracksForOrder(ctx context.Context, orderID uint) ([]models.DeliveryTrack, error) {
	tracks := []models.DeliveryTrack{}
	err := s.db.WithContext(ctx).
		Where("task_id IN (?)", s.db.Model(&models.DeliveryTask{}).Select("id").Where("order_id = ?", orderID)).
		Order("track_time asc, id asc").
		Find(&tracks).Error
	return tracks, err
}
