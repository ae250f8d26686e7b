package models

import "time"

// MessageTypeText is the default message type
const MessageTypeText = "text"

// Message is an append-only entry on a connection. Only ReadAt is ever updated.
type Message struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConnectionID uint64     `gorm:"not null;index" json:"connectionId"`
	SenderID     string     `gorm:"type:varchar(64);not null" json:"senderId"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	MessageType  string     `gorm:"size:32;not null" json:"messageType"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}
