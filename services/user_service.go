package services

import (
	"context"
	"errors"

	"logistics-api/apperr"
	"logistics-api/auth"
	"logistics-api/models"
	"logistics-api/store"
)

type RegisterInput struct {
	Username string
	Password string
	Role     models.Role
	Phone    string
	RealName string
}

type ProfileInput struct {
	Phone    *string
	RealName *string
}

type UserService struct {
	store  *store.Store
	tokens *auth.TokenIssuer
}

func NewUserService(st *store.Store, tokens *auth.TokenIssuer) *UserService {
	return &UserService{store: st, tokens: tokens}
}

// Register creates an account; username and phone must be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, apperr.Validation("invalid role, must be one of admin, driver, customer")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Password: hash,
		Role:     in.Role,
		RealName: in.RealName,
	}
	if in.Phone != "" {
		phone := in.Phone
		user.Phone = &phone
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns a fresh session token. Unknown users
// and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.ErrUnauthorized
		}
		return "", nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", nil, apperr.ErrUnauthorized
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) Info(ctx context.Context, caller models.Caller) (*models.User, error) {
	return s.store.Users.GetByID(ctx, caller.ID)
}

// UpdateInfo changes the caller's phone and real name. An empty phone clears it.
func (s *UserService) UpdateInfo(ctx context.Context, caller models.Caller, in ProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.Phone != nil {
		if *in.Phone == "" {
			fields["phone"] = nil
		} else {
			fields["phone"] = *in.Phone
		}
	}
	if in.RealName != nil {
		fields["real_name"] = *in.RealName
	}
	return s.store.Users.UpdateProfile(ctx, caller.ID, fields)
}

func (s *UserService) ResetPassword(ctx context.Context, caller models.Caller, oldPassword, newPassword string) error {
	user, err := s.store.Users.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, oldPassword) {
		return apperr.Validation("old password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.Users.UpdatePassword(ctx, user.ID, hash)
}

func (s *UserService) List(ctx context.Context, caller models.Caller, role models.Role, page, size int) (*models.Page[models.User], error) {
	if !isAdmin(caller) {
		return nil, apperr.ErrForbidden
	}
	if role != "" && !role.Valid() {
		return nil, apperr.Validation("invalid role %q", role)
	}
	return s.store.Users.List(ctx, role, page, size)
}
