package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
)

// dueWindow is how far ahead the sweep looks for upcoming due dates.
const dueWindow = 24 * time.Hour

// Reminder periodically notifies assignees about tasks due soon. Each
// task/assignee pair is notified once; the unread task_due row acts as
// the dedup marker.
type Reminder struct {
	store    *storage.Store
	notifier *NotificationService
	logger   *log.Logger
	cron     *cron.Cron
}

// NewReminder creates the sweep, not yet started.
func NewReminder(store *storage.Store, notifier *NotificationService, logger *log.Logger) *Reminder {
	return &Reminder{
		store:    store,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep every interval and runs the cron loop.
func (r *Reminder) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := r.cron.AddFunc(spec, r.Sweep); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (r *Reminder) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one pass. Exported so tests and operators can trigger it
// directly.
func (r *Reminder) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	tasks, err := r.store.TasksDueSoon(ctx, now, now.Add(dueWindow))
	if err != nil {
		r.logger.Errorf("reminder sweep: %v", err)
		return
	}
	for _, task := range tasks {
		assignee := *task.AssignedTo
		ref := domain.TaskRef(task.ID)
		seen, err := r.store.HasUnreadNotification(ctx, assignee, domain.NotificationTaskDue, ref)
		if err != nil {
			r.logger.Errorf("reminder dedup check: %v", err)
			continue
		}
		if seen {
			continue
		}
		r.notifier.Notify(ctx, assignee, domain.NotificationTaskDue,
			fmt.Sprintf("Task %q is due soon.", task.Title), ref)
	}
}
