package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard-api/domain"
)

const projectViewColumns = "p.id, p.name, p.description, p.created_by, p.is_deleted, p.created_at, p.updated_at, u.username AS created_by_username"

// CreateProject inserts a new project row.
func (s *Store) CreateProject(ctx context.Context, project *domain.Project) error {
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// ProjectRowByID fetches the bare non-deleted row for authorization checks.
func (s *Store) ProjectRowByID(ctx context.Context, id uint) (*domain.Project, error) {
	var project domain.Project
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project by id: %w", err)
	}
	return &project, nil
}

// ProjectViewByID fetches the joined read shape without a visibility scope.
// Callers are expected to have authorized access already.
func (s *Store) ProjectViewByID(ctx context.Context, id uint) (*domain.ProjectView, error) {
	var view domain.ProjectView
	err := s.db.WithContext(ctx).
		Table("projects p").
		Select(projectViewColumns).
		Joins("JOIN users u ON u.id = p.created_by").
		Where("p.id = ? AND p.is_deleted = ?", id, false).
		Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project view: %w", err)
	}
	return &view, nil
}

// VisibleProjects lists non-deleted projects the viewer may see: their own,
// any project holding a task assigned to them, or everything for admins.
func (s *Store) VisibleProjects(ctx context.Context, viewer domain.Principal) ([]domain.ProjectView, error) {
	q := s.db.WithContext(ctx).
		Table("projects p").
		Select("DISTINCT "+projectViewColumns).
		Joins("JOIN users u ON u.id = p.created_by").
		Joins("LEFT JOIN tasks t ON t.project_id = p.id AND t.is_deleted = ?", false).
		Where("p.is_deleted = ?", false)
	if !viewer.IsAdmin() {
		q = q.Where("p.created_by = ? OR t.assigned_to = ?", viewer.UserID, viewer.UserID)
	}
	views := []domain.ProjectView{}
	if err := q.Order("p.created_at DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return views, nil
}

// VisibleProjectByID fetches one project under the same scope as VisibleProjects.
func (s *Store) VisibleProjectByID(ctx context.Context, viewer domain.Principal, id uint) (*domain.ProjectView, error) {
	q := s.db.WithContext(ctx).
		Table("projects p").
		Select("DISTINCT "+projectViewColumns).
		Joins("JOIN users u ON u.id = p.created_by").
		Joins("LEFT JOIN tasks t ON t.project_id = p.id AND t.is_deleted = ?", false).
		Where("p.id = ? AND p.is_deleted = ?", id, false)
	if !viewer.IsAdmin() {
		q = q.Where("p.created_by = ? OR t.assigned_to = ?", viewer.UserID, viewer.UserID)
	}
	var view domain.ProjectView
	err := q.Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project by id: %w", err)
	}
	return &view, nil
}

// UpdateProject applies the given column updates to a non-deleted row. The
// is_deleted guard rides in the WHERE clause so a concurrent soft delete
// surfaces as zero rows affected instead of resurrecting the row.
func (s *Store) UpdateProject(ctx context.Context, id uint, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update project: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SoftDeleteProject marks the project and every task under it deleted in
// one transaction, so a crash cannot leave live tasks under a dead project.
func (s *Store) SoftDeleteProject(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&domain.Project{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]any{"is_deleted": true, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("soft delete project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		err := tx.Model(&domain.Task{}).
			Where("project_id = ?", id).
			Updates(map[string]any{"is_deleted": true, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("cascade tasks: %w", err)
		}
		return nil
	})
}
