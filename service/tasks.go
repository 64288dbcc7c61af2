package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
	"taskboard-api/storage"
	"taskboard-api/stream"
)

// maxParentDepth bounds the parent chain walked on writes so a cycle or a
// degenerate hierarchy cannot loop the server.
const maxParentDepth = 32

// TaskService implements authorization-scoped task CRUD and the tag
// association operations.
type TaskService struct {
	store    *storage.Store
	emitter  stream.Emitter
	activity *ActivityLogger
	notifier *NotificationService
	logger   *log.Logger
}

// NewTaskService creates the service.
func NewTaskService(store *storage.Store, emitter stream.Emitter, activity *ActivityLogger, notifier *NotificationService, logger *log.Logger) *TaskService {
	return &TaskService{store: store, emitter: emitter, activity: activity, notifier: notifier, logger: logger}
}

// CreateTaskInput carries the create fields.
type CreateTaskInput struct {
	Title        string
	Description  *string
	DueDate      *time.Time
	Priority     domain.Priority
	Status       domain.Status
	AssignedTo   *uint
	ProjectID    uint
	ParentTaskID *uint
}

// UpdateTaskInput carries partial update fields; nil means "keep". DueDate
// and AssignedTo are nullable columns, so their Set flags mark an explicit
// write and a nil value with the flag up clears the column.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	DueDateSet    bool
	Priority      *domain.Priority
	Status        *domain.Status
	AssignedTo    *uint
	AssignedToSet bool
	ProjectID     *uint
	ParentTaskID  *uint
}

// Create inserts a task, notifies the assignee when it lands on someone
// else's plate, and broadcasts the full joined shape.
func (s *TaskService) Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*domain.TaskView, error) {
	if in.Title == "" {
		return nil, domain.Invalid("title", "title is required")
	}
	if in.ProjectID == 0 {
		return nil, domain.Invalid("project_id", "project_id is required")
	}
	if _, err := s.store.ProjectOwner(ctx, in.ProjectID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.Invalid("project_id", "must reference an existing project")
		}
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(in.Priority) {
		return nil, domain.Invalid("priority", "unknown priority")
	}
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	if !domain.ValidStatus(in.Status) {
		return nil, domain.Invalid("status", "unknown status")
	}
	if in.ParentTaskID != nil {
		if err := s.checkParentChain(ctx, 0, *in.ParentTaskID); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		Title:        in.Title,
		Description:  in.Description,
		DueDate:      in.DueDate,
		Priority:     in.Priority,
		Status:       in.Status,
		AssignedTo:   in.AssignedTo,
		CreatedBy:    p.UserID,
		ProjectID:    in.ProjectID,
		ParentTaskID: in.ParentTaskID,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, p.UserID, domain.ActionCreated, domain.TaskRef(task.ID),
		domain.Details{"title": task.Title, "project_id": task.ProjectID})
	if task.AssignedTo != nil && *task.AssignedTo != p.UserID {
		s.notifier.Notify(ctx, *task.AssignedTo, domain.NotificationTaskAssigned,
			fmt.Sprintf("Task %q assigned to you!", task.Title), domain.TaskRef(task.ID))
	}

	view, err := s.store.TaskViewByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTaskCreated, domain.TaskPayload{Task: *view})
	return view, nil
}

// List returns the tasks visible to the principal, filtered and sorted.
func (s *TaskService) List(ctx context.Context, p domain.Principal, f storage.TaskFilter) ([]domain.TaskView, error) {
	return s.store.VisibleTasks(ctx, p, f)
}

// Get returns one task the principal may see, in the joined shape.
func (s *TaskService) Get(ctx context.Context, p domain.Principal, id uint) (*domain.TaskView, error) {
	if _, err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	return s.store.TaskViewByID(ctx, id)
}

// Update applies the provided fields, records the before/after snapshot
// and sends the assignment/completion notifications.
func (s *TaskService) Update(ctx context.Context, p domain.Principal, id uint, in UpdateTaskInput) (*domain.TaskView, error) {
	task, err := s.authorize(ctx, p, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, domain.Invalid("title", "title cannot be empty")
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DueDateSet {
		updates["due_date"] = in.DueDate
	}
	if in.Priority != nil {
		if !domain.ValidPriority(*in.Priority) {
			return nil, domain.Invalid("priority", "unknown priority")
		}
		updates["priority"] = *in.Priority
	}
	if in.Status != nil {
		if !domain.ValidStatus(*in.Status) {
			return nil, domain.Invalid("status", "unknown status")
		}
		updates["status"] = *in.Status
	}
	if in.AssignedToSet {
		updates["assigned_to"] = in.AssignedTo
	}
	if in.ProjectID != nil {
		if _, err := s.store.ProjectOwner(ctx, *in.ProjectID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.Invalid("project_id", "must reference an existing project")
			}
			return nil, err
		}
		updates["project_id"] = *in.ProjectID
	}
	if in.ParentTaskID != nil {
		if err := s.checkParentChain(ctx, id, *in.ParentTaskID); err != nil {
			return nil, err
		}
		updates["parent_task_id"] = *in.ParentTaskID
	}
	if len(updates) == 0 {
		return nil, domain.Invalid("body", "no fields to update")
	}

	rows, err := s.store.UpdateTask(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	newTitle := task.Title
	if in.Title != nil {
		newTitle = *in.Title
	}
	newAssigned := task.AssignedTo
	if in.AssignedToSet {
		newAssigned = in.AssignedTo
	}
	newStatus := task.Status
	if in.Status != nil {
		newStatus = *in.Status
	}
	s.activity.Record(ctx, p.UserID, domain.ActionUpdated, domain.TaskRef(id), domain.Details{
		"old": map[string]any{"title": task.Title, "assigned_to": task.AssignedTo, "status": task.Status},
		"new": map[string]any{"title": newTitle, "assigned_to": newAssigned, "status": newStatus},
	})

	if in.AssignedToSet && in.AssignedTo != nil && (task.AssignedTo == nil || *task.AssignedTo != *in.AssignedTo) {
		s.notifier.Notify(ctx, *in.AssignedTo, domain.NotificationTaskReassigned,
			fmt.Sprintf("Task %q has been reassigned to you!", newTitle), domain.TaskRef(id))
	}
	if in.Status != nil && *in.Status == domain.StatusCompleted && task.Status != domain.StatusCompleted {
		s.notifier.Notify(ctx, p.UserID, domain.NotificationTaskCompleted,
			fmt.Sprintf("You marked %q as completed.", newTitle), domain.TaskRef(id))
	}

	view, err := s.store.TaskViewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTaskUpdated, domain.TaskPayload{Task: *view})
	return view, nil
}

// Delete soft-deletes the task. The broadcast carries only the id.
func (s *TaskService) Delete(ctx context.Context, p domain.Principal, id uint) error {
	task, err := s.authorize(ctx, p, id)
	if err != nil {
		return err
	}
	rows, err := s.store.SoftDeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.activity.Record(ctx, p.UserID, domain.ActionSoftDeleted, domain.TaskRef(id),
		domain.Details{"title": task.Title})
	s.emit(ctx, domain.EventTaskDeleted, domain.DeletedPayload{ID: id})
	return nil
}

// AddTag associates a live tag with the task. A duplicate association is a
// conflict, not a silent no-op.
func (s *TaskService) AddTag(ctx context.Context, p domain.Principal, taskID, tagID uint) error {
	if _, err := s.authorize(ctx, p, taskID); err != nil {
		return err
	}
	if _, err := s.store.TagRowByID(ctx, tagID); err != nil {
		return err
	}
	if err := s.store.AddTaskTag(ctx, taskID, tagID); err != nil {
		return err
	}
	s.activity.Record(ctx, p.UserID, domain.ActionTagAdded, domain.TaskRef(taskID),
		domain.Details{"tag_id": tagID})
	s.emit(ctx, domain.EventTaskTagAdded, domain.TaskTagPayload{TaskID: taskID, TagID: tagID})
	return nil
}

// RemoveTag drops the association; removing one that does not exist is a
// not-found.
func (s *TaskService) RemoveTag(ctx context.Context, p domain.Principal, taskID, tagID uint) error {
	if _, err := s.authorize(ctx, p, taskID); err != nil {
		return err
	}
	rows, err := s.store.RemoveTaskTag(ctx, taskID, tagID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.activity.Record(ctx, p.UserID, domain.ActionTagRemoved, domain.TaskRef(taskID),
		domain.Details{"tag_id": tagID})
	s.emit(ctx, domain.EventTaskTagRemoved, domain.TaskTagPayload{TaskID: taskID, TagID: tagID})
	return nil
}

// authorize re-reads the task and applies the shared read/write rule:
// creator, assignee, or owner of the task's project. A deleted task or a
// deleted parent project answers not-found.
func (s *TaskService) authorize(ctx context.Context, p domain.Principal, id uint) (*domain.Task, error) {
	task, err := s.store.TaskRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.ProjectOwner(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccessTask(p, *task, owner) {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// checkParentChain walks the parent pointers from parentID, rejecting a
// chain that reaches taskID (a cycle) or exceeds the depth bound.
// taskID is zero on create, where no cycle is possible yet.
func (s *TaskService) checkParentChain(ctx context.Context, taskID, parentID uint) error {
	cur := parentID
	for depth := 0; depth < maxParentDepth; depth++ {
		if cur == taskID && taskID != 0 {
			return domain.Invalid("parent_task_id", "parent chain forms a cycle")
		}
		next, err := s.store.ParentTaskID(ctx, cur)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.Invalid("parent_task_id", "must reference an existing task")
			}
			return err
		}
		if next == nil {
			return nil
		}
		cur = *next
	}
	return domain.Invalid("parent_task_id", "parent chain too deep")
}

func (s *TaskService) emit(ctx context.Context, name string, payload any) {
	ev, err := domain.NewEvent(name, payload)
	if err != nil {
		s.logger.Errorf("encode %s event: %v", name, err)
		return
	}
	s.emitter.Emit(ctx, ev)
}
