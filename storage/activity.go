package storage

import (
	"context"
	"fmt"
	"time"

	"taskboard-api/domain"
)

// AppendActivity writes one append-only log entry.
func (s *Store) AppendActivity(ctx context.Context, entry *domain.ActivityEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// ActivityFilter holds the admin query predicates; set fields AND together.
type ActivityFilter struct {
	UserID     *uint
	ActionType string
	EntityType string
	Start      *time.Time
	End        *time.Time
}

// ListActivity returns log entries with the actor's username joined in,
// newest first.
func (s *Store) ListActivity(ctx context.Context, f ActivityFilter) ([]domain.ActivityView, error) {
	q := s.db.WithContext(ctx).
		Table("activity_log al").
		Select("al.id, al.user_id, al.action_type, al.entity_type, al.entity_id, al.details, al.timestamp, u.username").
		Joins("JOIN users u ON u.id = al.user_id")
	if f.UserID != nil {
		q = q.Where("al.user_id = ?", *f.UserID)
	}
	if f.ActionType != "" {
		q = q.Where("al.action_type = ?", f.ActionType)
	}
	if f.EntityType != "" {
		q = q.Where("al.entity_type = ?", f.EntityType)
	}
	if f.Start != nil {
		q = q.Where("al.timestamp >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("al.timestamp <= ?", *f.End)
	}
	views := []domain.ActivityView{}
	if err := q.Order("al.timestamp DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return views, nil
}
