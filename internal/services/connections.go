// connections.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/observability"
	"github.com/localnerve/napkins/internal/types"
	"gorm.io/gorm"
)

// ConnectionDetail is a connection together with the idea it refers to.
// The idea may be soft-deleted.
type ConnectionDetail struct {
	models.Connection
	Idea *models.Idea `json:"idea"`
}

// GetConnection returns a connection the actor takes part in
func GetConnection(ctx context.Context, db *gorm.DB, actor Actor, id uint64) (*ConnectionDetail, error) {
	conn, err := loadConnection(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(actor.ID) {
		return nil, types.Forbidden("not a party to this connection")
	}

	idea, err := GetIdea(ctx, db, conn.IdeaID)
	if err != nil {
		return nil, err
	}
	return &ConnectionDetail{Connection: *conn, Idea: idea}, nil
}

// ExpressInterest records an investor's like on an idea. Repeating it for a
// triple that already has a row returns that row unchanged.
func ExpressInterest(ctx context.Context, db *gorm.DB, actor Actor, ideaID uint64) (conn *models.Connection, err error) {
	defer func() { observability.RecordTransition(string(ActionExpressInterest), err) }()

	t, err := authorize(ActionExpressInterest, actor)
	if err != nil {
		return nil, err
	}

	idea, err := likeableIdea(ctx, db, actor, ideaID)
	if err != nil {
		return nil, err
	}

	existing, err := findTriple(ctx, db, actor.ID, idea.OwnerID, idea.ID)
	if err != nil || existing != nil {
		return existing, err
	}

	conn = &models.Connection{
		InvestorID: actor.ID,
		FounderID:  idea.OwnerID,
		IdeaID:     idea.ID,
		Status:     t.to,
	}
	if err := insertConnection(ctx, db, conn); err != nil {
		if isDuplicateKey(err) {
			return rereadTriple(ctx, db, conn)
		}
		return nil, err
	}
	return conn, nil
}

// Reciprocate moves a curious connection to pending on behalf of its founder
func Reciprocate(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionReciprocate, connID)
}

// Accept connects a requested connection on behalf of its founder
func Accept(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionAccept, connID)
}

// Pass blocks an undecided connection. Either party may pass.
func Pass(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionPass, connID)
}

// Disconnect removes a connected connection and its messages
func Disconnect(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionDisconnect, connID)
}

// Withdraw removes an investor's undecided interest
func Withdraw(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionWithdraw, connID)
}

// Unpass removes a block. Only the party that passed may lift it.
func Unpass(ctx context.Context, db *gorm.DB, actor Actor, connID uint64) (*models.Connection, error) {
	return advance(ctx, db, actor, ActionUnpass, connID)
}

// SendRequest moves a pending connection to requested and appends the
// investor's message. When the status write commits but the message does
// not, the advanced connection is returned with a PartialFailureError.
func SendRequest(ctx context.Context, db *gorm.DB, actor Actor, connID uint64, message string) (*models.Connection, error) {
	if _, err := authorize(ActionSendRequest, actor); err != nil {
		observability.RecordTransition(string(ActionSendRequest), err)
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		err := types.Validation("request message is empty")
		observability.RecordTransition(string(ActionSendRequest), err)
		return nil, err
	}

	conn, err := advance(ctx, db, actor, ActionSendRequest, connID)
	if err != nil {
		return nil, err
	}

	if _, err := AppendMessage(ctx, db, conn.ID, actor.ID, message, models.MessageTypeText); err != nil {
		log.Printf("connection %d requested but message append failed: %v", conn.ID, err)
		return conn, &types.PartialFailureError{Step: "append message", Committed: conn, Err: err}
	}
	return conn, nil
}

// PassIdea blocks an idea for an investor straight from the feed, creating
// the connection row when none exists.
func PassIdea(ctx context.Context, db *gorm.DB, actor Actor, ideaID uint64) (conn *models.Connection, err error) {
	defer func() { observability.RecordTransition(string(ActionPassIdea), err) }()

	t, err := authorize(ActionPassIdea, actor)
	if err != nil {
		return nil, err
	}

	idea, err := likeableIdea(ctx, db, actor, ideaID)
	if err != nil {
		return nil, err
	}

	existing, err := findTriple(ctx, db, actor.ID, idea.OwnerID, idea.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		blocker := actor.ID
		conn = &models.Connection{
			InvestorID: actor.ID,
			FounderID:  idea.OwnerID,
			IdeaID:     idea.ID,
			Status:     t.to,
			BlockedBy:  &blocker,
		}
		err = insertConnection(ctx, db, conn)
		if err == nil {
			return conn, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
		if existing, err = rereadTriple(ctx, db, conn); err != nil {
			return nil, err
		}
	}

	if existing.Status == models.StatusBlocked && existing.BlockedBy != nil && *existing.BlockedBy == actor.ID {
		return existing, nil
	}
	if err := t.permits(ActionPassIdea, actor, existing); err != nil {
		return nil, err
	}
	if err := compareAndSwap(db.WithContext(ctx), actor, t, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// advance applies one table-driven transition to an existing connection
func advance(ctx context.Context, db *gorm.DB, actor Actor, action Action, connID uint64) (conn *models.Connection, err error) {
	defer func() { observability.RecordTransition(string(action), err) }()

	t, err := authorize(action, actor)
	if err != nil {
		return nil, err
	}

	conn = &models.Connection{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(conn, connID).Error; err != nil {
			return storeErr("load connection", "connection", err)
		}
		if err := t.permits(action, actor, conn); err != nil {
			return err
		}
		return compareAndSwap(tx, actor, t, conn)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// compareAndSwap writes the transition only while the row still holds the
// status that was observed. Removals take the connection's messages with them.
func compareAndSwap(tx *gorm.DB, actor Actor, t transition, conn *models.Connection) error {
	observed := conn.Status

	if t.removes() {
		result := tx.Where("id = ? AND status = ?", conn.ID, observed).Delete(&models.Connection{})
		if result.Error != nil {
			return types.RemoteUnavailable("remove connection", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.Conflict("connection %d changed concurrently", conn.ID)
		}
		if err := tx.Where("connection_id = ?", conn.ID).Delete(&models.Message{}).Error; err != nil {
			return types.RemoteUnavailable("remove messages", err)
		}
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     t.to,
		"updated_at": now,
	}
	if t.to == models.StatusBlocked {
		updates["blocked_by"] = actor.ID
	}

	result := tx.Model(&models.Connection{}).
		Where("id = ? AND status = ?", conn.ID, observed).
		Updates(updates)
	if result.Error != nil {
		return types.RemoteUnavailable("update connection", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.Conflict("connection %d changed concurrently", conn.ID)
	}

	conn.Status = t.to
	conn.UpdatedAt = now
	if t.to == models.StatusBlocked {
		blocker := actor.ID
		conn.BlockedBy = &blocker
	}
	return nil
}

// likeableIdea loads an idea an investor can act on from the feed. The
// owner must still be a founder, and nobody acts on their own idea.
func likeableIdea(ctx context.Context, db *gorm.DB, actor Actor, ideaID uint64) (*models.Idea, error) {
	idea, err := GetIdea(ctx, db, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.Deleted {
		return nil, types.NotFound("idea not found")
	}
	if idea.OwnerID == actor.ID {
		return nil, types.Forbidden("cannot act on your own idea")
	}

	owner, err := GetProfile(ctx, db, idea.OwnerID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	if owner == nil || owner.Role != models.RoleFounder {
		return nil, types.Conflict("idea %d is not owned by a founder", idea.ID)
	}
	return idea, nil
}

func loadConnection(ctx context.Context, db *gorm.DB, id uint64) (*models.Connection, error) {
	var conn models.Connection
	if err := quiet(ctx, db).First(&conn, id).Error; err != nil {
		return nil, storeErr("load connection", "connection", err)
	}
	return &conn, nil
}

// findTriple returns the row for a triple, or nil when there is none
func findTriple(ctx context.Context, db *gorm.DB, investorID, founderID string, ideaID uint64) (*models.Connection, error) {
	var conns []models.Connection
	err := quiet(ctx, db).
		Where("investor_id = ? AND founder_id = ? AND idea_id = ?", investorID, founderID, ideaID).
		Limit(1).Find(&conns).Error
	if err != nil {
		return nil, types.RemoteUnavailable("load connection", err)
	}
	if len(conns) == 0 {
		return nil, nil
	}
	return &conns[0], nil
}

// rereadTriple resolves a lost insert race by loading the winner's row
func rereadTriple(ctx context.Context, db *gorm.DB, conn *models.Connection) (*models.Connection, error) {
	existing, err := findTriple(ctx, db, conn.InvestorID, conn.FounderID, conn.IdeaID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, types.Conflict("connection was removed concurrently")
	}
	return existing, nil
}

func insertConnection(ctx context.Context, db *gorm.DB, conn *models.Connection) error {
	err := db.WithContext(ctx).Create(conn).Error
	if err == nil || isDuplicateKey(err) {
		return err
	}
	return types.RemoteUnavailable("create connection", err)
}
