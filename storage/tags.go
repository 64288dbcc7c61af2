package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard-api/domain"
)

const tagViewColumns = "t.id, t.name, t.created_by, t.is_deleted, t.created_at, t.updated_at, u.username AS created_by_username"

// CreateTag inserts a new tag row.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// TagRowByID fetches the bare non-deleted row for authorization checks.
func (s *Store) TagRowByID(ctx context.Context, id uint) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tag by id: %w", err)
	}
	return &tag, nil
}

// TagViewByID fetches the joined read shape of a non-deleted tag.
func (s *Store) TagViewByID(ctx context.Context, id uint) (*domain.TagView, error) {
	var view domain.TagView
	err := s.db.WithContext(ctx).
		Table("tags t").
		Select(tagViewColumns).
		Joins("JOIN users u ON u.id = t.created_by").
		Where("t.id = ? AND t.is_deleted = ?", id, false).
		Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tag view: %w", err)
	}
	return &view, nil
}

// ListTags returns all non-deleted tags, name ascending. Tags are readable
// by everyone; only mutation is owner-scoped.
func (s *Store) ListTags(ctx context.Context) ([]domain.TagView, error) {
	views := []domain.TagView{}
	err := s.db.WithContext(ctx).
		Table("tags t").
		Select(tagViewColumns).
		Joins("JOIN users u ON u.id = t.created_by").
		Where("t.is_deleted = ?", false).
		Order("t.name ASC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return views, nil
}

// TagNameTaken reports whether another non-deleted tag already uses the
// name, compared case-insensitively. excludeID skips the tag being renamed.
func (s *Store) TagNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("LOWER(name) = LOWER(?) AND is_deleted = ?", name, false)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("tag name taken: %w", err)
	}
	return count > 0, nil
}

// UpdateTag applies the given column updates to a non-deleted row.
func (s *Store) UpdateTag(ctx context.Context, id uint, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update tag: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SoftDeleteTag marks the row deleted. Task links are left in place; reads
// filter them out.
func (s *Store) SoftDeleteTag(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("soft delete tag: %w", res.Error)
	}
	return res.RowsAffected, nil
}
