package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
)

// ActivityLogger appends to the activity log. Recording is one-way: its
// own failures are logged and swallowed so the primary operation never
// aborts because of it.
type ActivityLogger struct {
	store  *storage.Store
	logger *log.Logger
}

// NewActivityLogger creates the logger.
func NewActivityLogger(store *storage.Store, logger *log.Logger) *ActivityLogger {
	return &ActivityLogger{store: store, logger: logger}
}

// Record appends one entry, best effort.
func (l *ActivityLogger) Record(ctx context.Context, userID uint, action string, ref domain.EntityRef, details domain.Details) {
	entry := &domain.ActivityEntry{
		UserID:     userID,
		ActionType: action,
		Details:    details,
	}
	entry.SetEntity(ref)
	if err := l.store.AppendActivity(ctx, entry); err != nil {
		l.logger.WithFields(log.Fields{
			"user_id": userID,
			"action":  action,
		}).Errorf("record activity: %v", err)
	}
}

// ActivityService answers the admin-only log query.
type ActivityService struct {
	store *storage.Store
}

// NewActivityService creates the service.
func NewActivityService(store *storage.Store) *ActivityService {
	return &ActivityService{store: store}
}

// List returns log entries matching the filter. Non-admin callers get the
// collapsed not-found answer.
func (s *ActivityService) List(ctx context.Context, p domain.Principal, f storage.ActivityFilter) ([]domain.ActivityView, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrNotFound
	}
	return s.store.ListActivity(ctx, f)
}
