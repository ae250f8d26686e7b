package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/localnerve/napkins/internal/testutil"
	"github.com/localnerve/napkins/internal/types"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: connections.investor_id")))
	assert.True(t, isDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_connection_triple"`)))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1045}))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
	assert.False(t, isDuplicateKey(nil))
}

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr("op", "thing", nil))
	assert.ErrorIs(t, storeErr("op", "idea", gorm.ErrRecordNotFound), types.ErrNotFound)
	assert.ErrorIs(t, storeErr("op", "idea", gorm.ErrDuplicatedKey), gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, storeErr("op", "idea", errors.New("broken pipe")), types.ErrRemoteUnavailable)
}

func TestDeadlineIsRemoteUnavailable(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := ListIdeas(ctx, db, true)
	assert.ErrorIs(t, err, types.ErrRemoteUnavailable)
}
