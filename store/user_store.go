package store

import (
	"context"

	"logistics-api/apperr"
	"logistics-api/models"

	"gorm.io/gorm"
)

// userProfileFields are the only columns a self-service profile update may write.
var userProfileFields = map[string]bool{"phone": true, "real_name": true}

type UserStore struct {
	db *gorm.DB
}

// Create inserts u, reporting username/phone conflicts as apperr.ErrDuplicateKey.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return apperr.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateProfile writes only phone and real_name, whatever else fields holds.
func (s *UserStore) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update := map[string]interface{}{}
	for k, v := range fields {
		if userProfileFields[k] {
			update[k] = v
		}
	}
	if len(update) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(update).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.ErrDuplicateKey
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// List pages through users, optionally narrowed to one role.
func (s *UserStore) List(ctx context.Context, role models.Role, page, size int) (*models.Page[models.User], error) {
	page, size = paginate(page, size)
	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := query.Order("id asc").Offset((page - 1) * size).Limit(size).Find(&users).Error; err != nil {
		return nil, err
	}
	return &models.Page[models.User]{Total: total, Page: page, PageSize: size, Data: users}, nil
}
