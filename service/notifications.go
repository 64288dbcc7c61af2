package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
	"taskboard-api/stream"
)

// NotificationService persists notifications and triggers their delivery.
type NotificationService struct {
	store    *storage.Store
	emitter  stream.Emitter
	activity *ActivityLogger
	logger   *log.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(store *storage.Store, emitter stream.Emitter, activity *ActivityLogger, logger *log.Logger) *NotificationService {
	return &NotificationService{store: store, emitter: emitter, activity: activity, logger: logger}
}

// Notify persists a notification row and emits newNotification to the
// recipient's sessions. Both halves are best effort: failure is logged,
// never propagated, and a delivery failure does not roll back the row.
func (s *NotificationService) Notify(ctx context.Context, userID uint, typ, message string, ref domain.EntityRef) {
	n := &domain.Notification{UserID: userID, Type: typ, Message: message}
	n.SetEntity(ref)
	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.logger.WithFields(log.Fields{"user_id": userID, "type": typ}).Errorf("create notification: %v", err)
		return
	}
	ev, err := domain.NewUserEvent(domain.EventNewNotification, userID, domain.NotificationPayload{Notification: *n})
	if err != nil {
		s.logger.Errorf("encode notification event: %v", err)
		return
	}
	s.emitter.Emit(ctx, ev)
}

// ListMine returns the caller's notifications, newest first.
func (s *NotificationService) ListMine(ctx context.Context, p domain.Principal, isRead *bool, limit, offset int) ([]domain.Notification, error) {
	return s.store.NotificationsForUser(ctx, p.UserID, isRead, limit, offset)
}

// MarkRead flips is_read on the caller's rows among ids and returns the
// ids actually updated. A batch matching nothing is a not-found, never a
// silent success.
func (s *NotificationService) MarkRead(ctx context.Context, p domain.Principal, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, domain.Invalid("notificationIds", "no notification ids provided")
	}
	updated, err := s.store.MarkNotificationsRead(ctx, p.UserID, ids)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, domain.ErrNotFound
	}
	idList := make([]any, len(updated))
	for i, id := range updated {
		idList[i] = id
	}
	s.activity.Record(ctx, p.UserID, domain.ActionMarkedRead,
		domain.EntityRef{Type: domain.EntityNotification},
		domain.Details{"notification_ids": idList})
	return updated, nil
}
