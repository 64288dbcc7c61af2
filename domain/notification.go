package domain

import "time"

// EntityType names the kind of entity a notification or activity entry
// points at.
type EntityType string

const (
	EntityProject      EntityType = "PROJECT"
	EntityTask         EntityType = "TASK"
	EntityTag          EntityType = "TAG"
	EntityUser         EntityType = "USER"
	EntityNotification EntityType = "NOTIFICATION"
)

// EntityRef is a typed reference to the entity an event concerns. A zero
// ref (empty type) means the event has no subject entity.
type EntityRef struct {
	Type EntityType
	ID   uint
}

// IsZero reports whether the ref points at nothing.
func (r EntityRef) IsZero() bool { return r.Type == "" }

// ProjectRef builds a ref to a project row.
func ProjectRef(id uint) EntityRef { return EntityRef{Type: EntityProject, ID: id} }

// TaskRef builds a ref to a task row.
func TaskRef(id uint) EntityRef { return EntityRef{Type: EntityTask, ID: id} }

// TagEntityRef builds a ref to a tag row.
func TagEntityRef(id uint) EntityRef { return EntityRef{Type: EntityTag, ID: id} }

// Notification types created by the entity services.
const (
	NotificationTaskAssigned   = "task_assigned"
	NotificationTaskReassigned = "task_reassigned"
	NotificationTaskCompleted  = "task_completed"
	NotificationTaskDue        = "task_due"
)

// Notification is a persisted per-user message. Rows are only ever mutated
// to flip is_read and are never deleted.
type Notification struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"index" json:"user_id"`
	Type       string      `gorm:"size:64" json:"type"`
	Message    string      `json:"message"`
	EntityID   *uint       `json:"entity_id"`
	EntityType *EntityType `gorm:"size:32" json:"entity_type"`
	IsRead     bool        `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SetEntity stores the polymorphic reference columns from a typed ref.
func (n *Notification) SetEntity(ref EntityRef) {
	if ref.IsZero() {
		return
	}
	id := ref.ID
	typ := ref.Type
	n.EntityID = &id
	n.EntityType = &typ
}

// Entity returns the typed ref stored in the polymorphic columns.
func (n *Notification) Entity() EntityRef {
	if n.EntityType == nil || n.EntityID == nil {
		return EntityRef{}
	}
	return EntityRef{Type: *n.EntityType, ID: *n.EntityID}
}
