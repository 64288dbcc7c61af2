package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskboard-api/domain"
)

// CreateUser inserts a new account row.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail finds an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &user, nil
}

// UserByID finds an account by id.
func (s *Store) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &user, nil
}

// UserExists reports whether an account with the given email or username
// is already registered.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return count > 0, nil
}

// ListUsers returns every account as an assignment-picker summary,
// ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	var users []domain.UserSummary
	err := s.db.WithContext(ctx).Model(&domain.User{}).
		Select("id, username, email").
		Order("username ASC").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
