package domain

import "time"

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Task is a unit of work inside a project. ParentTaskID allows arbitrary
// nesting; the write path bounds the parent chain depth.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:255" json:"title"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	Priority     Priority   `gorm:"size:16;default:medium" json:"priority"`
	Status       Status     `gorm:"size:16;default:pending" json:"status"`
	AssignedTo   *uint      `gorm:"index" json:"assigned_to"`
	CreatedBy    uint       `gorm:"index" json:"created_by"`
	ProjectID    uint       `gorm:"index" json:"project_id"`
	ParentTaskID *uint      `json:"parent_task_id"`
	IsDeleted    bool       `gorm:"default:false" json:"is_deleted"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TagRef is the id/name pair carried in a task's tags array.
type TagRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TaskView is the read shape of a task: the row plus project name, usernames
// and the current tag list, all joined at query time and never stored.
type TaskView struct {
	Task
	ProjectName        string   `json:"project_name"`
	AssignedToUsername *string  `json:"assigned_to_username"`
	CreatedByUsername  string   `json:"created_by_username"`
	Tags               []TagRef `gorm:"-" json:"tags"`
}

// TaskTag links a task to a tag. Links are never cascaded; soft-deleted
// tags leave stale rows that reads filter out.
type TaskTag struct {
	TaskID uint `gorm:"primaryKey;autoIncrement:false" json:"task_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}
