package domain

import "time"

// Project groups tasks under a single owner.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Description *string   `json:"description"`
	CreatedBy   uint      `gorm:"index" json:"created_by"`
	IsDeleted   bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectView is the read shape: the row plus fields joined at query time.
type ProjectView struct {
	Project
	CreatedByUsername string `json:"created_by_username"`
}
