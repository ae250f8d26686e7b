package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/database"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, dbType := range []string{"mysql", "mariadb", "postgres", "postgresql", "sqlite", "sqlite-pure", "sqlserver", "mssql"} {
		d, err := database.Dialector(&config.Config{DBType: dbType, DBDatabase: "napkins"})
		require.NoError(t, err, dbType)
		assert.NotNil(t, d, dbType)
	}

	_, err := database.Dialector(&config.Config{DBType: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, database.LogLevel("silent"))
	assert.Equal(t, logger.Error, database.LogLevel("error"))
	assert.Equal(t, logger.Info, database.LogLevel("info"))
	assert.Equal(t, logger.Warn, database.LogLevel("warn"))
	assert.Equal(t, logger.Warn, database.LogLevel(""))
}

func TestConnectSQLiteFile(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        t.TempDir() + "/napkins.db",
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.AutoMigrate(db))
	for _, table := range []string{"profiles", "ideas", "connections", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Connection{}, "idx_connection_triple"))
}

// TestContainerLifecycle runs the lifecycle against a real server.
// Set DB_TYPE and DB_IMAGE (e.g. mariadb:11) to enable it.
func TestContainerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}

	tc, err := testutil.StartContainers(t)
	require.NoError(t, err)
	defer tc.Terminate(t)

	db, err := tc.Connect()
	require.NoError(t, err)
	defer database.Close(db)

	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "ben")
	idea := testutil.Idea(t, db, founder, "napkin sketches for everyone")

	inv := services.Actor{ID: investor.ID, Role: models.RoleInvestor}
	fdr := services.Actor{ID: founder.ID, Role: models.RoleFounder}

	conn, err := services.ExpressInterest(ctx, db, inv, idea.ID)
	require.NoError(t, err)
	again, err := services.ExpressInterest(ctx, db, inv, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, conn.ID, again.ID)

	_, err = services.Reciprocate(ctx, db, fdr, conn.ID)
	require.NoError(t, err)
	_, err = services.SendRequest(ctx, db, inv, conn.ID, "let's talk")
	require.NoError(t, err)
	conn, err = services.Accept(ctx, db, fdr, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConnected, conn.Status)

	_, err = services.Accept(ctx, db, fdr, conn.ID)
	assert.Error(t, err)
}
