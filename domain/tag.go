package domain

import "time"

// Tag is a label owned by its creator. Names are unique case-insensitively
// among non-deleted tags.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;index" json:"name"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	IsDeleted bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagView is the read shape: the row plus the creator's username.
type TagView struct {
	Tag
	CreatedByUsername string `json:"created_by_username"`
}
