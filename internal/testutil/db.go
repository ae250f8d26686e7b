// Package testutil provides databases and fixtures for package tests.
package testutil

import (
	"testing"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/localnerve/napkins/internal/database"
	"github.com/localnerve/napkins/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory sqlite database. A single pooled
// connection keeps every query on the same in-memory schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(puresqlite.Open("file::memory:"), logger.Silent)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// Founder stores a founder profile with a fresh identity
func Founder(t testing.TB, db *gorm.DB, name string) *models.Profile {
	t.Helper()
	return saveProfile(t, db, &models.Profile{
		ID:         uuid.NewString(),
		Role:       models.RoleFounder,
		Name:       name,
		Link:       "https://example.com/" + name,
		LookingFor: "seed round",
	})
}

// Investor stores an investor profile with a fresh identity
func Investor(t testing.TB, db *gorm.DB, name string) *models.Profile {
	t.Helper()
	photo := "https://example.com/" + name + ".png"
	return saveProfile(t, db, &models.Profile{
		ID:         uuid.NewString(),
		Role:       models.RoleInvestor,
		Name:       name,
		Link:       "https://example.com/" + name,
		PhotoURL:   &photo,
		LookingFor: "b2b saas",
	})
}

// Idea stores an idea owned by founder
func Idea(t testing.TB, db *gorm.DB, founder *models.Profile, text string) *models.Idea {
	t.Helper()
	idea := &models.Idea{OwnerID: founder.ID, Text: text}
	if err := db.Create(idea).Error; err != nil {
		t.Fatalf("Failed to create idea: %v", err)
	}
	return idea
}

// Connection stores a connection row in the given status
func Connection(t testing.TB, db *gorm.DB, investor *models.Profile, idea *models.Idea, status models.Status) *models.Connection {
	t.Helper()
	conn := &models.Connection{
		InvestorID: investor.ID,
		FounderID:  idea.OwnerID,
		IdeaID:     idea.ID,
		Status:     status,
	}
	if status == models.StatusBlocked {
		blocker := investor.ID
		conn.BlockedBy = &blocker
	}
	if err := db.Create(conn).Error; err != nil {
		t.Fatalf("Failed to create connection: %v", err)
	}
	return conn
}

func saveProfile(t testing.TB, db *gorm.DB, p *models.Profile) *models.Profile {
	t.Helper()
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return p
}
