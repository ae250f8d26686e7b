package models

import "time"

// Idea is a founder's pitch statement. Ideas are never physically removed;
// Deleted hides them from listings while connections keep referencing them.
type Idea struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   string    `gorm:"type:varchar(64);not null;index" json:"ownerId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Deleted   bool      `gorm:"not null;index" json:"deleted"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Idea
func (Idea) TableName() string {
	return "ideas"
}
