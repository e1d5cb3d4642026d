package model

import "time"

// Task belongs to exactly one project. It may be rebound to a different
// project, but only one owned by the same user.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description" gorm:"size:2000"`
	DueDate     *time.Time `json:"due_date,omitempty" gorm:"type:date"`
	Completed   bool       `json:"completed" gorm:"not null;default:false;index"`
	ProjectID   uint       `json:"project_id" gorm:"not null;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Project Project `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
