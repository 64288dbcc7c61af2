package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard-api/domain"
)

// CreateNotification inserts a new notification row.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// NotificationsForUser lists a user's notifications, newest first.
// isRead filters on read state when non-nil.
func (s *Store) NotificationsForUser(ctx context.Context, userID uint, isRead *bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if isRead != nil {
		q = q.Where("is_read = ?", *isRead)
	}
	notifications := []domain.Notification{}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationsRead flips is_read on the caller's rows among ids and
// returns the ids actually updated. Rows belonging to other users are
// silently excluded from the match. The match and the update run in one
// transaction so the returned ids agree with the rows flipped.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var matched []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Notification{}).
			Select("id").
			Where("user_id = ? AND id IN ?", userID, ids).
			Scan(&matched).Error; err != nil {
			return fmt.Errorf("match notifications: %w", err)
		}
		if len(matched) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Notification{}).
			Where("user_id = ? AND id IN ?", userID, matched).
			Update("is_read", true).Error; err != nil {
			return fmt.Errorf("mark notifications read: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return matched, nil
}

// HasUnreadNotification reports whether the user already has an unread
// notification of the given type for the entity. The reminder sweep uses
// this to avoid renotifying every interval.
func (s *Store) HasUnreadNotification(ctx context.Context, userID uint, typ string, ref domain.EntityRef) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND type = ? AND entity_type = ? AND entity_id = ? AND is_read = ?",
			userID, typ, ref.Type, ref.ID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("has unread notification: %w", err)
	}
	return count > 0, nil
}
