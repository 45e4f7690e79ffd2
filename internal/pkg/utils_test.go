package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayBucket(t *testing.T) {
	require.Equal(t, "2024-03-01", DayBucket(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))

	// 23:30 UTC-3 is already the next UTC day
	loc := time.FixedZone("UTC-3", -3*60*60)
	require.Equal(t, "2024-03-02", DayBucket(time.Date(2024, 3, 1, 23, 30, 0, 0, loc)))
}

func TestStartOfDayUTC(t *testing.T) {
	start := StartOfDayUTC(time.Date(2024, 3, 1, 18, 45, 12, 999, time.UTC))
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestSameUTCDay(t *testing.T) {
	base := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)

	require.True(t, SameUTCDay(base, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, SameUTCDay(base, base.Add(time.Second)))

	// same instant expressed in another zone never changes the answer
	loc := time.FixedZone("UTC+7", 7*60*60)
	require.True(t, SameUTCDay(base, base.In(loc)))
}
