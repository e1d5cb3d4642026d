package model

import "time"

// Project groups tasks under a single owner. OwnerID is set at creation and
// never changes afterwards.
type Project struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"size:2000"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner User   `json:"-" gorm:"foreignKey:OwnerID"`
	Tasks []Task `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
