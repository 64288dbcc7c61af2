package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Action types recorded in the activity log.
const (
	ActionCreated     = "CREATED"
	ActionUpdated     = "UPDATED"
	ActionSoftDeleted = "SOFT_DELETED"
	ActionTagAdded    = "TAG_ADDED"
	ActionTagRemoved  = "TAG_REMOVED"
	ActionMarkedRead  = "MARKED_NOTIFICATIONS_READ"
	ActionRegistered  = "REGISTERED"
	ActionLoggedIn    = "LOGGED_IN"
)

// Details is a free-form JSON payload stored alongside an activity entry.
type Details map[string]any

// Value serializes the payload for the details column.
func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	data, err := sonic.Marshal(map[string]any(d))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan restores the payload from the details column.
func (d *Details) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("activity details: unsupported column type %T", src)
	}
	if len(data) == 0 {
		*d = nil
		return nil
	}
	return sonic.Unmarshal(data, (*map[string]any)(d))
}

// ActivityEntry is an append-only record of a user action. Entries are
// never mutated or deleted.
type ActivityEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"index" json:"user_id"`
	ActionType string      `gorm:"size:64" json:"action_type"`
	EntityType *EntityType `gorm:"size:32" json:"entity_type"`
	EntityID   *uint       `json:"entity_id"`
	Details    Details     `gorm:"type:text" json:"details"`
	Timestamp  time.Time   `gorm:"autoCreateTime;index" json:"timestamp"`
}

// TableName overrides gorm's pluralized default.
func (ActivityEntry) TableName() string { return "activity_log" }

// SetEntity stores the polymorphic reference columns from a typed ref.
func (a *ActivityEntry) SetEntity(ref EntityRef) {
	if ref.IsZero() {
		return
	}
	id := ref.ID
	typ := ref.Type
	a.EntityID = &id
	a.EntityType = &typ
}

// ActivityView is the admin read shape with the actor's username joined in.
type ActivityView struct {
	ActivityEntry
	Username string `json:"username"`
}
