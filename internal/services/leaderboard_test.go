package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"clapo/internal/datastore"
	"clapo/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func testLedgerDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableAuraAccount(ctx, db))
	require.NoError(t, datastore.CreateTableAuraTransaction(ctx, db))
	return db
}

func seedLedgerAccount(t *testing.T, db *bun.DB, userID string, balance int) {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	_, err := datastore.CreateAccount(ctx, db, &models.AuraAccount{
		UserID:         userID,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)

	_, err = datastore.ApplyTransaction(ctx, db, &models.AuraTransaction{
		Reference:       uuid.NewString(),
		UserID:          userID,
		Amount:          balance,
		TransactionType: models.TX_ENGAGEMENT_REWARD,
	}, false)
	require.NoError(t, err)
}

// The sorted-set mirror lags behind Postgres between cron rebuilds; a user
// missing from it must still get their row from the authoritative store.
func TestGetMyRankWithStaleMirror(t *testing.T) {
	db := testLedgerDB(t)
	seedLedgerAccount(t, db, "alice", 500)
	seedLedgerAccount(t, db, "bob", 900)

	// no mirror entries at all; any redis access would error
	redisClient, _ := redismock.NewClientMock()

	service := &ServiceLeaderboard{
		redisDB:            redisClient,
		readonlyPostgresDB: db,
	}

	me, err := service.getMyRank(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", me.UserID)
	require.Equal(t, 500, me.Balance)
	require.Equal(t, 2, me.Rank)

	me, err = service.getMyRank(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, 1, me.Rank)
}

func TestGetMyRankUnknownUser(t *testing.T) {
	db := testLedgerDB(t)
	redisClient, _ := redismock.NewClientMock()

	service := &ServiceLeaderboard{
		redisDB:            redisClient,
		readonlyPostgresDB: db,
	}

	_, err := service.getMyRank(context.Background(), "nobody")
	require.Error(t, err)
}
