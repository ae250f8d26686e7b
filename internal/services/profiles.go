package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateProfile applies the profile completion rules. Investors must
// carry a photo; founders may omit it.
func ValidateProfile(p *models.Profile) error {
	if p == nil {
		return types.Validation("profile is empty")
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Link = strings.TrimSpace(p.Link)
	if p.PhotoURL != nil {
		trimmed := strings.TrimSpace(*p.PhotoURL)
		if trimmed == "" {
			p.PhotoURL = nil
		} else {
			p.PhotoURL = &trimmed
		}
	}

	if err := Validator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return types.Validation("%s", describeFieldErrors(fieldErrs))
		}
		return types.Validation("invalid profile: %v", err)
	}
	return nil
}

func describeFieldErrors(fieldErrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_if":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			parts = append(parts, fmt.Sprintf("%s must be a URL", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// GetProfile returns the profile for a user id
func GetProfile(ctx context.Context, db *gorm.DB, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := quiet(ctx, db).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, storeErr("load profile", "profile", err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the profile keyed by its id
func UpsertProfile(ctx context.Context, db *gorm.DB, p *models.Profile) (*models.Profile, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_looking", "name", "link", "photo_url", "looking_for", "history", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return nil, types.RemoteUnavailable("upsert profile", err)
	}

	return GetProfile(ctx, db, p.ID)
}

// ListProfilesByRole returns every profile of one role, by name
func ListProfilesByRole(ctx context.Context, db *gorm.DB, role models.Role) ([]models.Profile, error) {
	if !role.Valid() {
		return nil, types.Validation("unknown role %q", role)
	}

	profiles := []models.Profile{}
	if err := quiet(ctx, db).Where("is_looking = ?", role.Looking()).
		Order("name ASC, id ASC").Find(&profiles).Error; err != nil {
		return nil, types.RemoteUnavailable("list profiles", err)
	}
	return profiles, nil
}

// profilesByID loads the profiles for a set of ids into a map
func profilesByID(ctx context.Context, db *gorm.DB, ids []string) (map[string]*models.Profile, error) {
	out := make(map[string]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := quiet(ctx, db).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, types.RemoteUnavailable("load profiles", err)
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out, nil
}
