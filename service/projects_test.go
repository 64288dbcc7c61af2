package service

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"

	"taskboard-api/domain"
	"taskboard-api/storage"
)

func TestProjectCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", domain.RoleMember)

	if _, err := env.projects.Create(context.Background(), alice, CreateProjectInput{}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProjectUpdateOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleMember)
	mallory := env.user(t, "mallory", domain.RoleMember)
	admin := env.user(t, "root", domain.RoleAdmin)
	project := env.project(t, alice, "Website")

	name := "Renamed"
	if _, err := env.projects.Update(ctx, mallory, project.ID, UpdateProjectInput{Name: &name}); !domain.IsNotFound(err) {
		t.Fatalf("stranger update should collapse to not found, got %v", err)
	}

	view, err := env.projects.Update(ctx, admin, project.ID, UpdateProjectInput{Name: &name})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if view.Name != "Renamed" {
		t.Fatalf("name not applied: %q", view.Name)
	}

	empty := ""
	if _, err := env.projects.Update(ctx, alice, project.ID, UpdateProjectInput{Name: &empty}); !domain.IsValidation(err) {
		t.Fatalf("empty name should be rejected, got %v", err)
	}
}

func TestProjectDeleteCascadesToTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleMember)
	mallory := env.user(t, "mallory", domain.RoleMember)
	project := env.project(t, alice, "Website")
	task := env.task(t, alice, CreateTaskInput{Title: "design", ProjectID: project.ID})

	if err := env.projects.Delete(ctx, mallory, project.ID); !domain.IsNotFound(err) {
		t.Fatalf("stranger delete should be not found, got %v", err)
	}
	if _, err := env.projects.Get(ctx, alice, project.ID); err != nil {
		t.Fatalf("project must survive the denied delete: %v", err)
	}

	if err := env.projects.Delete(ctx, alice, project.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := env.projects.Get(ctx, alice, project.ID); !domain.IsNotFound(err) {
		t.Fatalf("deleted project should be gone, got %v", err)
	}
	if _, err := env.tasks.Get(ctx, alice, task.ID); !domain.IsNotFound(err) {
		t.Fatalf("cascaded task should be gone, got %v", err)
	}

	ev := env.events.last(t, domain.EventProjectDeleted)
	var payload struct {
		ID uint `json:"id"`
	}
	if err := sonic.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if payload.ID != project.ID {
		t.Fatalf("event should carry the project id, got %d", payload.ID)
	}

	admin := env.user(t, "root", domain.RoleAdmin)
	logs, err := env.activity.List(ctx, admin, storage.ActivityFilter{ActionType: domain.ActionSoftDeleted})
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one SOFT_DELETED entry, got %d", len(logs))
	}
}

func TestActivityListAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", domain.RoleMember)

	if _, err := env.activity.List(context.Background(), alice, storage.ActivityFilter{}); !domain.IsNotFound(err) {
		t.Fatalf("non-admin should get not found, got %v", err)
	}
}
