package redis_store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestIncrDayCounterFirstOfDay(t *testing.T) {
	client, mock := redismock.NewClientMock()
	key := dbKeyDayCounter("post", "u1", "2024-03-01")
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 48*time.Hour).SetVal(true)

	count, err := IncrDayCounter(context.Background(), client, "post", "u1", "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrDayCounterExpireFailureTolerated(t *testing.T) {
	client, mock := redismock.NewClientMock()
	key := dbKeyDayCounter("post", "u1", "2024-03-01")
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 48*time.Hour).SetErr(errors.New("connection reset"))

	// the slot is taken once Incr lands; a failed expiry must not turn
	// into an error that burns it
	count, err := IncrDayCounter(context.Background(), client, "post", "u1", "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrDayCounterSubsequent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	key := dbKeyDayCounter("post", "u1", "2024-03-01")
	mock.ExpectIncr(key).SetVal(3)

	count, err := IncrDayCounter(context.Background(), client, "post", "u1", "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDayCounterMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(dbKeyDayCounter("post", "u1", "2024-03-01")).RedisNil()

	count, err := GetDayCounter(context.Background(), client, "post", "u1", "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
