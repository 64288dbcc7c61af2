package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"taskboard-api/domain"
	"taskboard-api/storage"
)

// eventRecorder captures emitted events so tests can assert on the
// broadcast side effects without a live redis.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Emit(_ context.Context, ev domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) named(name string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) last(t *testing.T, name string) domain.Event {
	t.Helper()
	evs := r.named(name)
	if len(evs) == 0 {
		t.Fatalf("no %s event emitted", name)
	}
	return evs[len(evs)-1]
}

type testEnv struct {
	store         *storage.Store
	events        *eventRecorder
	users         *UserService
	projects      *ProjectService
	tasks         *TaskService
	tags          *TagService
	notifications *NotificationService
	activity      *ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlog.Discard})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := storage.NewWithDB(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	events := &eventRecorder{}
	activityLogger := NewActivityLogger(store, logger)
	notifications := NewNotificationService(store, events, activityLogger, logger)
	return &testEnv{
		store:         store,
		events:        events,
		users:         NewUserService(store, activityLogger, logger),
		projects:      NewProjectService(store, events, activityLogger, logger),
		tasks:         NewTaskService(store, events, activityLogger, notifications, logger),
		tags:          NewTagService(store, events, activityLogger, logger),
		notifications: notifications,
		activity:      NewActivityService(store),
	}
}

func (env *testEnv) user(t *testing.T, username string, role domain.Role) domain.Principal {
	t.Helper()
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := env.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return domain.Principal{UserID: u.ID, Role: role}
}

func (env *testEnv) project(t *testing.T, p domain.Principal, name string) *domain.ProjectView {
	t.Helper()
	view, err := env.projects.Create(context.Background(), p, CreateProjectInput{Name: name})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return view
}

func (env *testEnv) task(t *testing.T, p domain.Principal, in CreateTaskInput) *domain.TaskView {
	t.Helper()
	view, err := env.tasks.Create(context.Background(), p, in)
	if err != nil {
		t.Fatalf("create task %s: %v", in.Title, err)
	}
	return view
}

// unreadFor lists a user's unread notifications of one type.
func (env *testEnv) unreadFor(t *testing.T, p domain.Principal, typ string) []domain.Notification {
	t.Helper()
	unread := false
	list, err := env.notifications.ListMine(context.Background(), p, &unread, 50, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	var out []domain.Notification
	for _, n := range list {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
