package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the public attributes of a user identity.
// The role is persisted through the legacy is_looking column; Role is the
// only form the rest of the service sees.
type Profile struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id" validate:"required,max=64"`
	Role       Role      `gorm:"-" json:"role" validate:"required,oneof=founder investor"`
	IsLooking  bool      `gorm:"column:is_looking;not null;index" json:"-"`
	Name       string    `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	Link       string    `gorm:"size:512;not null" json:"link" validate:"required,url,max=512"`
	PhotoURL   *string   `gorm:"column:photo_url;size:1024" json:"photoUrl,omitempty" validate:"required_if=Role investor,omitempty,url,max=1024"`
	LookingFor string    `gorm:"column:looking_for;type:text" json:"lookingFor"`
	History    string    `gorm:"type:text" json:"history"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// BeforeSave writes the role discriminant
func (p *Profile) BeforeSave(tx *gorm.DB) error {
	p.IsLooking = p.Role.Looking()
	return nil
}

// AfterFind reads the role discriminant
func (p *Profile) AfterFind(tx *gorm.DB) error {
	p.Role = RoleFromLooking(p.IsLooking)
	return nil
}

// ProfileSummary is the counterpart information shown next to ideas and connections
type ProfileSummary struct {
	ID       string  `json:"id"`
	Role     Role    `json:"role"`
	Name     string  `json:"name"`
	Link     string  `json:"link"`
	PhotoURL *string `json:"photoUrl,omitempty"`
}

// Summary returns the public summary of the profile. A nil profile yields nil.
func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		ID:       p.ID,
		Role:     p.Role,
		Name:     p.Name,
		Link:     p.Link,
		PhotoURL: p.PhotoURL,
	}
}
