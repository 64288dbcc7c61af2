package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskboard-api/domain"
	"taskboard-api/storage"
)

// ErrInvalidCredentials is returned by Authenticate when the email or
// password does not match. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService handles account creation, credential checks and the
// assignment-picker listing.
type UserService struct {
	store    *storage.Store
	activity *ActivityLogger
	logger   *log.Logger
}

// NewUserService creates the service.
func NewUserService(store *storage.Store, activity *ActivityLogger, logger *log.Logger) *UserService {
	return &UserService{store: store, activity: activity, logger: logger}
}

// Register creates an account with a bcrypt-hashed password. Duplicate
// email or username is a conflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	exists, err := s.store.UserExists(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("user with that email or username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, user.ID, domain.ActionRegistered,
		domain.EntityRef{Type: domain.EntityUser, ID: user.ID}, nil)
	return user, nil
}

// Authenticate verifies the email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.activity.Record(ctx, user.ID, domain.ActionLoggedIn,
		domain.EntityRef{Type: domain.EntityUser, ID: user.ID}, nil)
	return user, nil
}

// List returns every account as an assignment-picker summary.
func (s *UserService) List(ctx context.Context) ([]domain.UserSummary, error) {
	return s.store.ListUsers(ctx)
}
