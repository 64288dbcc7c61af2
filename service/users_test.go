package service

import (
	"context"
	"errors"
	"testing"

	"taskboard-api/domain"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleMember {
		t.Fatalf("new accounts default to member, got %s", user.Role)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password must not be stored in clear")
	}

	got, err := env.users.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated wrong user: %d", got.ID)
	}

	if _, err := env.users.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := env.users.Authenticate(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, "", "", "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Fatalf("expected all three fields reported, got %v", ve.Fields)
	}

	if _, err := env.users.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.users.Register(ctx, "alice", "other@example.com", "pw"); !domain.IsConflict(err) {
		t.Fatalf("duplicate username should conflict, got %v", err)
	}
	if _, err := env.users.Register(ctx, "other", "alice@example.com", "pw"); !domain.IsConflict(err) {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "zoe", domain.RoleMember)
	env.user(t, "alice", domain.RoleMember)

	users, err := env.users.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" {
		t.Fatalf("expected username-sorted list, got %+v", users)
	}
}
