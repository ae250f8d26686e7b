package services

import (
	"context"
	"strings"

	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/types"
	"gorm.io/gorm"
)

const newestFirst = "created_at DESC, id DESC"

// CreateIdea stores a new pitch for founderID. Text is stored trimmed.
func CreateIdea(ctx context.Context, db *gorm.DB, founderID, text string) (*models.Idea, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.Validation("idea text is empty")
	}
	if founderID == "" {
		return nil, types.Validation("idea owner is empty")
	}

	idea := &models.Idea{OwnerID: founderID, Text: text}
	if err := db.WithContext(ctx).Create(idea).Error; err != nil {
		return nil, types.RemoteUnavailable("create idea", err)
	}
	return idea, nil
}

// EditIdea replaces the text of an idea owned by ownerID. Deleted ideas
// cannot be edited.
func EditIdea(ctx context.Context, db *gorm.DB, ownerID string, id uint64, text string) (*models.Idea, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.Validation("idea text is empty")
	}

	var idea models.Idea
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ? AND deleted = ?", id, ownerID, false).
			First(&idea).Error; err != nil {
			return storeErr("load idea", "idea", err)
		}

		result := tx.Model(&idea).Where("deleted = ?", false).Update("text", text)
		if result.Error != nil {
			return types.RemoteUnavailable("edit idea", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NotFound("idea not found")
		}
		idea.Text = text
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// SoftDeleteIdea flags an idea owned by ownerID as deleted. Deleting an
// already deleted idea returns it unchanged.
func SoftDeleteIdea(ctx context.Context, db *gorm.DB, ownerID string, id uint64) (*models.Idea, error) {
	var idea models.Idea
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&idea).Error; err != nil {
			return storeErr("load idea", "idea", err)
		}
		if idea.Deleted {
			return nil
		}
		if err := tx.Model(&idea).Update("deleted", true).Error; err != nil {
			return types.RemoteUnavailable("delete idea", err)
		}
		idea.Deleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// GetIdea returns an idea by id, deleted or not
func GetIdea(ctx context.Context, db *gorm.DB, id uint64) (*models.Idea, error) {
	var idea models.Idea
	if err := quiet(ctx, db).First(&idea, id).Error; err != nil {
		return nil, storeErr("load idea", "idea", err)
	}
	return &idea, nil
}

// ListIdeas returns all ideas newest first
func ListIdeas(ctx context.Context, db *gorm.DB, excludeDeleted bool) ([]models.Idea, error) {
	query := quiet(ctx, db)
	if excludeDeleted {
		query = query.Where("deleted = ?", false)
	}

	ideas := []models.Idea{}
	if err := query.Order(newestFirst).Find(&ideas).Error; err != nil {
		return nil, types.RemoteUnavailable("list ideas", err)
	}
	return ideas, nil
}

// ListIdeasByOwner returns the ideas of one founder newest first
func ListIdeasByOwner(ctx context.Context, db *gorm.DB, ownerID string, includeDeleted bool) ([]models.Idea, error) {
	query := quiet(ctx, db).Where("owner_id = ?", ownerID)
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}

	ideas := []models.Idea{}
	if err := query.Order(newestFirst).Find(&ideas).Error; err != nil {
		return nil, types.RemoteUnavailable("list ideas", err)
	}
	return ideas, nil
}
