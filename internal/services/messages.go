package services

import (
	"context"
	"strings"
	"time"

	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/observability"
	"github.com/localnerve/napkins/internal/types"
	"gorm.io/gorm"
)

const oldestFirst = "created_at ASC, id ASC"

// AppendMessage adds a message to a connection. An empty messageType means text.
func AppendMessage(ctx context.Context, db *gorm.DB, connectionID uint64, senderID, content, messageType string) (msg *models.Message, err error) {
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	defer func() { observability.RecordMessage(messageType, err) }()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, types.Validation("message content is empty")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Connection{}).Where("id = ?", connectionID).Count(&count).Error; err != nil {
			return types.RemoteUnavailable("load connection", err)
		}
		if count == 0 {
			return types.NotFound("connection not found")
		}

		msg = &models.Message{
			ConnectionID: connectionID,
			SenderID:     senderID,
			Content:      content,
			MessageType:  messageType,
		}
		if err := tx.Create(msg).Error; err != nil {
			return types.RemoteUnavailable("append message", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a connection's messages oldest first
func ListMessages(ctx context.Context, db *gorm.DB, connectionID uint64) ([]models.Message, error) {
	msgs := []models.Message{}
	if err := quiet(ctx, db).Where("connection_id = ?", connectionID).
		Order(oldestFirst).Find(&msgs).Error; err != nil {
		return nil, types.RemoteUnavailable("list messages", err)
	}
	return msgs, nil
}

// MarkMessageRead stamps read_at the first time a message is read
func MarkMessageRead(ctx context.Context, db *gorm.DB, id uint64) (*models.Message, error) {
	var msg models.Message
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			return storeErr("load message", "message", err)
		}
		if msg.ReadAt != nil {
			return nil
		}

		now := time.Now()
		result := tx.Model(&models.Message{}).Where("id = ? AND read_at IS NULL", id).Update("read_at", now)
		if result.Error != nil {
			return types.RemoteUnavailable("mark message read", result.Error)
		}
		if result.RowsAffected == 0 {
			// a concurrent reader won; report its stamp
			return storeErr("load message", "message", tx.First(&msg, id).Error)
		}
		msg.ReadAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesFor lists a connection's messages for one of its parties
func MessagesFor(ctx context.Context, db *gorm.DB, actor Actor, connectionID uint64) ([]models.Message, error) {
	conn, err := loadConnection(ctx, db, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(actor.ID) {
		return nil, types.Forbidden("not a party to this connection")
	}
	return ListMessages(ctx, db, connectionID)
}

// PostMessage appends a follow-up message from one of the parties. Messages
// are accepted only once a request has been made.
func PostMessage(ctx context.Context, db *gorm.DB, actor Actor, connectionID uint64, content, messageType string) (*models.Message, error) {
	conn, err := loadConnection(ctx, db, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(actor.ID) {
		return nil, types.Forbidden("not a party to this connection")
	}
	if conn.Status != models.StatusRequested && conn.Status != models.StatusConnected {
		return nil, types.Conflict("cannot message a %s connection", conn.Status)
	}
	return AppendMessage(ctx, db, connectionID, actor.ID, content, messageType)
}

// MarkRead stamps read_at on messages addressed to the actor. Messages the
// actor sent are skipped; a message on someone else's connection is Forbidden.
func MarkRead(ctx context.Context, db *gorm.DB, actor Actor, ids []uint64) ([]models.Message, error) {
	read := []models.Message{}
	for _, id := range ids {
		var msg models.Message
		if err := quiet(ctx, db).First(&msg, id).Error; err != nil {
			return nil, storeErr("load message", "message", err)
		}
		if msg.SenderID == actor.ID {
			continue
		}
		conn, err := loadConnection(ctx, db, msg.ConnectionID)
		if err != nil {
			return nil, err
		}
		if !conn.Involves(actor.ID) {
			return nil, types.Forbidden("not a party to this connection")
		}

		stamped, err := MarkMessageRead(ctx, db, id)
		if err != nil {
			return nil, err
		}
		read = append(read, *stamped)
	}
	return read, nil
}
