package datastore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"clapo/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func testDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, CreateTableAuraAccount(ctx, db))
	require.NoError(t, CreateTableAuraTransaction(ctx, db))
	return db
}

func createTestAccount(t *testing.T, db *bun.DB, userID string) *models.AuraAccount {
	t.Helper()

	now := time.Now().UTC()
	account, err := CreateAccount(context.Background(), db, &models.AuraAccount{
		UserID:         userID,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	return account
}

func applyTestTransaction(t *testing.T, db *bun.DB, userID string, amount int, transactionType string) (*models.AuraAccount, error) {
	t.Helper()

	transaction := &models.AuraTransaction{
		Reference:       uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		TransactionType: transactionType,
	}
	return ApplyTransaction(context.Background(), db, transaction, false)
}

func TestApplyTransactionLedger(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	createTestAccount(t, db, "alice")

	account, err := applyTestTransaction(t, db, "alice", 110, models.TX_ENGAGEMENT_REWARD)
	require.NoError(t, err)
	require.Equal(t, 110, account.Balance)
	account.ApplyDerived()
	require.True(t, account.CanCreateOpinions)
	require.Equal(t, "glow", account.TierName)

	account, err = applyTestTransaction(t, db, "alice", -100, models.TX_OPINION_SPEND)
	require.NoError(t, err)
	require.Equal(t, 10, account.Balance)
	account.ApplyDerived()
	require.False(t, account.CanCreateOpinions)

	// a spend past zero is rejected, not clamped
	_, err = applyTestTransaction(t, db, "alice", -50, models.TX_OPINION_SPEND)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	account, err = FindAccountByUserID(ctx, db, "alice")
	require.NoError(t, err)
	require.Equal(t, 10, account.Balance)
	require.Equal(t, 110, account.TotalEarned)
	require.Equal(t, 100, account.TotalSpent)
	require.Equal(t, account.Balance, account.TotalEarned-account.TotalSpent)

	// the rejected spend left no ledger row, replay matches the balance
	total, err := SumTransactionAmounts(ctx, db, "alice")
	require.NoError(t, err)
	require.Equal(t, account.Balance, total)

	count, err := CountTransactions(ctx, db, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestApplyTransactionUnknownUser(t *testing.T) {
	db := testDB(t)

	_, err := applyTestTransaction(t, db, "nobody", 10, models.TX_POST_REWARD)
	require.Error(t, err)
	require.True(t, IsErrNoRows(err))
}

func TestApplyTransactionCompetingSpends(t *testing.T) {
	db := testDB(t)
	createTestAccount(t, db, "alice")

	_, err := applyTestTransaction(t, db, "alice", 100, models.TX_ENGAGEMENT_REWARD)
	require.NoError(t, err)

	// two -60 spends against 100: the balance guard lets exactly one commit
	first, firstErr := applyTestTransaction(t, db, "alice", -60, models.TX_OPINION_SPEND)
	_, secondErr := applyTestTransaction(t, db, "alice", -60, models.TX_OPINION_SPEND)

	require.NoError(t, firstErr)
	require.Equal(t, 40, first.Balance)
	require.ErrorIs(t, secondErr, ErrInsufficientBalance)

	total, err := SumTransactionAmounts(context.Background(), db, "alice")
	require.NoError(t, err)
	require.Equal(t, 40, total)
}

func TestApplyTransactionDailyRollover(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	createTestAccount(t, db, "alice")

	for _, amount := range []int{10, 10} {
		_, err := applyTestTransaction(t, db, "alice", amount, models.TX_POST_REWARD)
		require.NoError(t, err)
	}

	account, err := FindAccountByUserID(ctx, db, "alice")
	require.NoError(t, err)
	require.Equal(t, 20, account.AuraEarnedToday)

	// crossing the day boundary overwrites instead of accumulating
	transaction := &models.AuraTransaction{
		Reference:       uuid.NewString(),
		UserID:          "alice",
		Amount:          5,
		TransactionType: models.TX_POST_REWARD,
	}
	account, err = ApplyTransaction(ctx, db, transaction, true)
	require.NoError(t, err)
	require.Equal(t, 5, account.AuraEarnedToday)
	require.Equal(t, 0, account.AuraSpentToday)
	require.Equal(t, 25, account.TotalEarned)
	require.Equal(t, 25, account.Balance)
}

func TestTransactionsPagingComplete(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	createTestAccount(t, db, "alice")

	for i := 0; i < 5; i++ {
		_, err := applyTestTransaction(t, db, "alice", 10, models.TX_POST_REWARD)
		require.NoError(t, err)
	}

	seen := map[int64]bool{}
	previousID := int64(0)
	for _, page := range [][2]int{{2, 0}, {2, 2}, {2, 4}} {
		transactions, err := GetTransactionsPaging(ctx, db, "alice", page[0], page[1])
		require.NoError(t, err)

		for _, transaction := range transactions {
			require.False(t, seen[transaction.ID], "id %d repeated across pages", transaction.ID)
			seen[transaction.ID] = true
			if previousID != 0 {
				require.Less(t, transaction.ID, previousID)
			}
			previousID = transaction.ID
		}
	}
	require.Len(t, seen, 5)
}

func TestAccountRankOrdering(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	balances := map[string]int{"carol": 900, "alice": 500, "bob": 500}
	for userID, balance := range balances {
		createTestAccount(t, db, userID)
		_, err := applyTestTransaction(t, db, userID, balance, models.TX_ENGAGEMENT_REWARD)
		require.NoError(t, err)
	}

	top, err := GetTopAccounts(ctx, db, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, "carol", top[0].UserID)
	require.Equal(t, "alice", top[1].UserID)
	require.Equal(t, "bob", top[2].UserID)

	expected := map[string]int{"carol": 1, "alice": 2, "bob": 3}
	for userID, want := range expected {
		account, err := FindAccountByUserID(ctx, db, userID)
		require.NoError(t, err)
		rank, err := GetAccountRank(ctx, db, account)
		require.NoError(t, err)
		require.Equal(t, want, rank, "user=%s", userID)
	}
}
