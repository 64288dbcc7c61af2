package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard-api/domain"
)

const taskViewColumns = "t.id, t.title, t.description, t.due_date, t.priority, t.status, " +
	"t.assigned_to, t.created_by, t.project_id, t.parent_task_id, t.is_deleted, t.created_at, t.updated_at, " +
	"p.name AS project_name, au.username AS assigned_to_username, cu.username AS created_by_username"

// taskSortColumns is the allow-list for order_by. Anything else falls back
// to created_at so the sort parameter cannot smuggle SQL.
var taskSortColumns = map[string]bool{
	"created_at": true,
	"due_date":   true,
	"priority":   true,
	"title":      true,
	"status":     true,
}

// TaskFilter holds the list predicates; all set fields combine with AND.
type TaskFilter struct {
	ProjectID  *uint
	Search     string
	Priority   string
	Status     string
	AssignedTo *uint
	TagIDs     []uint
	DueStart   *time.Time
	DueEnd     *time.Time
	OrderBy    string
	OrderDir   string
}

func (f TaskFilter) orderClause() string {
	col := f.OrderBy
	if !taskSortColumns[col] {
		col = "created_at"
	}
	dir := "DESC"
	if f.OrderDir == "asc" || f.OrderDir == "ASC" {
		dir = "ASC"
	}
	return "t." + col + " " + dir
}

func (s *Store) taskViewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("tasks t").
		Select(taskViewColumns).
		Joins("JOIN projects p ON p.id = t.project_id").
		Joins("JOIN users cu ON cu.id = t.created_by").
		Joins("LEFT JOIN users au ON au.id = t.assigned_to").
		Where("t.is_deleted = ? AND p.is_deleted = ?", false, false)
}

// CreateTask inserts a new task row.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// TaskRowByID fetches the bare non-deleted row for authorization checks.
func (s *Store) TaskRowByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task by id: %w", err)
	}
	return &task, nil
}

// ProjectOwner returns created_by of a non-deleted project.
func (s *Store) ProjectOwner(ctx context.Context, projectID uint) (uint, error) {
	var owner uint
	err := s.db.WithContext(ctx).Model(&domain.Project{}).
		Select("created_by").
		Where("id = ? AND is_deleted = ?", projectID, false).
		Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("project owner: %w", err)
	}
	return owner, nil
}

// TaskViewByID fetches the joined read shape without a visibility scope.
// Callers are expected to have authorized access already.
func (s *Store) TaskViewByID(ctx context.Context, id uint) (*domain.TaskView, error) {
	var view domain.TaskView
	err := s.taskViewQuery(ctx).Where("t.id = ?", id).Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task view: %w", err)
	}
	if err := s.attachTags(ctx, []*domain.TaskView{&view}); err != nil {
		return nil, err
	}
	return &view, nil
}

// VisibleTasks lists the viewer's tasks: created by them, assigned to them,
// or under a project they own. Admins get no wider scope here.
func (s *Store) VisibleTasks(ctx context.Context, viewer domain.Principal, f TaskFilter) ([]domain.TaskView, error) {
	q := s.taskViewQuery(ctx).
		Where("t.created_by = ? OR t.assigned_to = ? OR p.created_by = ?",
			viewer.UserID, viewer.UserID, viewer.UserID)

	if f.ProjectID != nil {
		q = q.Where("t.project_id = ?", *f.ProjectID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("LOWER(t.title) LIKE LOWER(?) OR LOWER(t.description) LIKE LOWER(?)", pattern, pattern)
	}
	if f.Priority != "" {
		q = q.Where("t.priority = ?", f.Priority)
	}
	if f.Status != "" {
		q = q.Where("t.status = ?", f.Status)
	}
	if f.AssignedTo != nil {
		q = q.Where("t.assigned_to = ?", *f.AssignedTo)
	}
	if len(f.TagIDs) > 0 {
		// All-of semantics: the task must carry every requested tag.
		q = q.Where("t.id IN (SELECT task_id FROM task_tags WHERE tag_id IN ? "+
			"GROUP BY task_id HAVING COUNT(DISTINCT tag_id) = ?)", f.TagIDs, len(f.TagIDs))
	}
	if f.DueStart != nil {
		q = q.Where("t.due_date >= ?", *f.DueStart)
	}
	if f.DueEnd != nil {
		q = q.Where("t.due_date <= ?", *f.DueEnd)
	}

	views := []domain.TaskView{}
	if err := q.Order(f.orderClause()).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	refs := make([]*domain.TaskView, len(views))
	for i := range views {
		refs[i] = &views[i]
	}
	if err := s.attachTags(ctx, refs); err != nil {
		return nil, err
	}
	return views, nil
}

// attachTags loads each task's current tag list, skipping soft-deleted tags.
func (s *Store) attachTags(ctx context.Context, views []*domain.TaskView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]uint, len(views))
	for i, v := range views {
		ids[i] = v.ID
		v.Tags = []domain.TagRef{}
	}
	var rows []struct {
		TaskID uint
		ID     uint
		Name   string
	}
	err := s.db.WithContext(ctx).
		Table("task_tags tt").
		Select("tt.task_id, tg.id, tg.name").
		Joins("JOIN tags tg ON tg.id = tt.tag_id").
		Where("tt.task_id IN ? AND tg.is_deleted = ?", ids, false).
		Order("tg.name ASC").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("load task tags: %w", err)
	}
	byTask := make(map[uint][]domain.TagRef, len(views))
	for _, r := range rows {
		byTask[r.TaskID] = append(byTask[r.TaskID], domain.TagRef{ID: r.ID, Name: r.Name})
	}
	for _, v := range views {
		if tags, ok := byTask[v.ID]; ok {
			v.Tags = tags
		}
	}
	return nil
}

// UpdateTask applies the given column updates to a non-deleted row.
func (s *Store) UpdateTask(ctx context.Context, id uint, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SoftDeleteTask marks the row deleted; zero rows means it was already
// gone or never existed.
func (s *Store) SoftDeleteTask(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("soft delete task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ParentTaskID returns the parent pointer of a task row, deleted or not,
// so cycle checks can walk chains that cross soft-deleted rows.
func (s *Store) ParentTaskID(ctx context.Context, id uint) (*uint, error) {
	var task domain.Task
	err := s.db.WithContext(ctx).Select("id, parent_task_id").First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("parent task: %w", err)
	}
	return task.ParentTaskID, nil
}

// AddTaskTag creates the association; a duplicate surfaces as a conflict,
// never a silent no-op.
func (s *Store) AddTaskTag(ctx context.Context, taskID, tagID uint) error {
	var existing domain.TaskTag
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND tag_id = ?", taskID, tagID).
		First(&existing).Error
	if err == nil {
		return domain.Conflict("tag already associated with this task")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check task tag: %w", err)
	}
	link := domain.TaskTag{TaskID: taskID, TagID: tagID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return fmt.Errorf("add task tag: %w", err)
	}
	return nil
}

// RemoveTaskTag deletes the association and reports how many rows matched.
func (s *Store) RemoveTaskTag(ctx context.Context, taskID, tagID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("task_id = ? AND tag_id = ?", taskID, tagID).
		Delete(&domain.TaskTag{})
	if res.Error != nil {
		return 0, fmt.Errorf("remove task tag: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// TaskTagCount reports how many links a task currently has, stale or not.
func (s *Store) TaskTagCount(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.TaskTag{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count task tags: %w", err)
	}
	return count, nil
}

// TasksDueSoon returns assigned, non-completed, non-deleted tasks whose due
// date falls inside the window. Used by the reminder sweep.
func (s *Store) TasksDueSoon(ctx context.Context, from, until time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.WithContext(ctx).
		Where("is_deleted = ? AND status <> ? AND assigned_to IS NOT NULL", false, domain.StatusCompleted).
		Where("due_date >= ? AND due_date <= ?", from, until).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("tasks due soon: %w", err)
	}
	return tasks, nil
}
