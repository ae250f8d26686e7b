package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Actor is the identity and role a caller acts under
type Actor struct {
	ID   string
	Role models.Role
}

// quiet returns a context-bound session with query logging off, for read paths
func quiet(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// storeErr classifies a gorm error. Record-not-found becomes a NotFound
// naming what, duplicate keys are passed through for the caller to resolve,
// anything else is reported as an unavailable data service.
func storeErr(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.NotFound("%s not found", what)
	case isDuplicateKey(err):
		return err
	default:
		return types.RemoteUnavailable(op, err)
	}
}

// isDuplicateKey reports a unique constraint violation. TranslateError covers
// the gorm dialects that support it; the rest are matched on the driver error.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
