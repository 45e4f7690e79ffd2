package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierForBalance(t *testing.T) {
	tests := []struct {
		balance      int
		expectedID   int
		expectedNext *int
	}{
		{0, 1, intPtr(100)},
		{99, 1, intPtr(100)},
		{100, 2, intPtr(500)},
		{110, 2, intPtr(500)},
		{499, 2, intPtr(500)},
		{500, 3, intPtr(2000)},
		{1999, 3, intPtr(2000)},
		{2000, 4, intPtr(10000)},
		{10000, 5, nil},
		{1000000, 5, nil},
	}

	for _, ts := range tests {
		tier, next := TierForBalance(ts.balance)
		require.Equal(t, ts.expectedID, tier.ID, "balance=%d", ts.balance)
		if ts.expectedNext == nil {
			require.Nil(t, next, "balance=%d", ts.balance)
		} else {
			require.NotNil(t, next, "balance=%d", ts.balance)
			require.Equal(t, *ts.expectedNext, next.Threshold, "balance=%d", ts.balance)
		}
	}
}

func TestTierMonotonic(t *testing.T) {
	previous := 0
	for balance := 0; balance <= 12000; balance += 7 {
		tier, _ := TierForBalance(balance)
		require.GreaterOrEqual(t, tier.ID, previous, "balance=%d", balance)
		previous = tier.ID
	}
}

func TestTierProgress(t *testing.T) {
	tests := []struct {
		balance  int
		expected *float64
	}{
		{0, floatPtr(0)},
		{50, floatPtr(50)},
		{100, floatPtr(0)},
		{110, floatPtr(2.5)},
		{300, floatPtr(50)},
		{10000, nil},
		{99999, nil},
	}

	for _, ts := range tests {
		progress := TierProgress(ts.balance)
		if ts.expected == nil {
			require.Nil(t, progress, "balance=%d", ts.balance)
			continue
		}
		require.NotNil(t, progress, "balance=%d", ts.balance)
		require.InDelta(t, *ts.expected, *progress, 0.0001, "balance=%d", ts.balance)
	}
}

func TestTierProgressBounds(t *testing.T) {
	for balance := 0; balance < 10000; balance += 13 {
		progress := TierProgress(balance)
		require.NotNil(t, progress, "balance=%d", balance)
		require.GreaterOrEqual(t, *progress, 0.0, "balance=%d", balance)
		require.LessOrEqual(t, *progress, 100.0, "balance=%d", balance)
	}
}

func TestApplyDerived(t *testing.T) {
	account := &AuraAccount{UserID: "u1", Balance: 110}
	account.ApplyDerived()
	require.Equal(t, 2, account.Tier)
	require.Equal(t, "glow", account.TierName)
	require.InDelta(t, 1.1, account.ReachMultiplier, 0.0001)
	require.True(t, account.CanCreateOpinions)
	require.NotNil(t, account.NextTierThreshold)
	require.Equal(t, 500, *account.NextTierThreshold)

	account.Balance = 10
	account.ApplyDerived()
	require.Equal(t, 1, account.Tier)
	require.False(t, account.CanCreateOpinions)

	account.Balance = 50000
	account.ApplyDerived()
	require.Equal(t, 5, account.Tier)
	require.Nil(t, account.ProgressToNextTier)
	require.Nil(t, account.NextTierThreshold)
}

func TestTiersTableOrdered(t *testing.T) {
	require.NotEmpty(t, Tiers)
	require.Equal(t, 0, Tiers[0].Threshold)
	for i := 1; i < len(Tiers); i++ {
		require.Greater(t, Tiers[i].Threshold, Tiers[i-1].Threshold)
		require.Greater(t, Tiers[i].ReachMultiplier, Tiers[i-1].ReachMultiplier)
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
