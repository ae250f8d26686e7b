package services

import (
	"context"
	"fmt"
	"log"

	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck checks the database and, when configured, the Authorizer
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	fail := func(component, key string, err error) {
		result.Status = "unhealthy"
		result.Details[key] = err.Error()
		msg := fmt.Sprintf("%s: %v", component, err)
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
		log.Printf("Health check failed - %s", msg)
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		fail("database connection", "database_error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		fail("database ping", "database_ping_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check Authorizer connectivity
	if cfg.AuthzURL != "" {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			fail("authorizer ping", "authorizer_error", err)
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	return result
}
