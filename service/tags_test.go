package service

import (
	"context"
	"testing"

	"taskboard-api/domain"
)

func TestTagNameConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleMember)
	bob := env.user(t, "bob", domain.RoleMember)

	if _, err := env.tags.Create(ctx, alice, "urgent"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.tags.Create(ctx, bob, "URGENT"); !domain.IsConflict(err) {
		t.Fatalf("duplicate name should conflict regardless of creator, got %v", err)
	}
	if _, err := env.tags.Create(ctx, alice, ""); !domain.IsValidation(err) {
		t.Fatalf("empty name should be rejected, got %v", err)
	}
}

func TestTagMutationCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleMember)
	admin := env.user(t, "root", domain.RoleAdmin)
	tag, err := env.tags.Create(ctx, alice, "urgent")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.tags.Update(ctx, admin, tag.ID, "renamed"); !domain.IsNotFound(err) {
		t.Fatalf("admin must not rename another user's tag, got %v", err)
	}
	if err := env.tags.Delete(ctx, admin, tag.ID); !domain.IsNotFound(err) {
		t.Fatalf("admin must not delete another user's tag, got %v", err)
	}

	view, err := env.tags.Update(ctx, alice, tag.ID, "renamed")
	if err != nil {
		t.Fatalf("creator rename: %v", err)
	}
	if view.Name != "renamed" {
		t.Fatalf("rename not applied: %q", view.Name)
	}
	if err := env.tags.Delete(ctx, alice, tag.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if _, err := env.tags.Get(ctx, tag.ID); !domain.IsNotFound(err) {
		t.Fatalf("deleted tag should be gone, got %v", err)
	}
}

func TestTagRenameCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleMember)

	if _, err := env.tags.Create(ctx, alice, "urgent"); err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := env.tags.Create(ctx, alice, "frontend")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.tags.Update(ctx, alice, other.ID, "urgent"); !domain.IsConflict(err) {
		t.Fatalf("rename onto a taken name should conflict, got %v", err)
	}
	if _, err := env.tags.Update(ctx, alice, other.ID, "frontend"); err != nil {
		t.Fatalf("renaming to the current name must not conflict: %v", err)
	}
}
