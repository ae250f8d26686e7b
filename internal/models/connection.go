package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a Connection
type Status string

const (
	// StatusNone marks the absence of a connection row for a triple.
	// It is never persisted.
	StatusNone Status = ""

	// StatusCurious means the investor liked the idea; the founder has not answered.
	StatusCurious Status = "curious"

	// StatusPending means the founder liked the investor back.
	StatusPending Status = "pending"

	// StatusRequested means the investor asked to connect and left a message.
	StatusRequested Status = "requested"

	// StatusConnected means the founder accepted the request.
	StatusConnected Status = "connected"

	// StatusBlocked means one of the parties passed.
	StatusBlocked Status = "blocked"
)

// ParseStatus converts persisted status text into a Status
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusCurious, StatusPending, StatusRequested, StatusConnected, StatusBlocked:
		return st, nil
	}
	return StatusNone, fmt.Errorf("unknown connection status %q", s)
}

// Connection tracks one investor's interest in one founder's idea.
// At most one row exists per (investor, founder, idea) triple.
type Connection struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	InvestorID string    `gorm:"type:varchar(64);not null;index:idx_connection_triple,unique,priority:1;index" json:"investorId"`
	FounderID  string    `gorm:"type:varchar(64);not null;index:idx_connection_triple,unique,priority:2;index" json:"founderId"`
	IdeaID     uint64    `gorm:"not null;index:idx_connection_triple,unique,priority:3" json:"ideaId"`
	Status     Status    `gorm:"type:varchar(16);not null;index" json:"status"`
	BlockedBy  *string   `gorm:"type:varchar(64)" json:"blockedBy,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Connection
func (Connection) TableName() string {
	return "connections"
}

// Involves reports whether userID is either party of the connection
func (c *Connection) Involves(userID string) bool {
	return c.InvestorID == userID || c.FounderID == userID
}

// Counterpart returns the other party's id
func (c *Connection) Counterpart(userID string) string {
	if c.InvestorID == userID {
		return c.FounderID
	}
	return c.InvestorID
}
