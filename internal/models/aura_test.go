package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionTypeLabel(t *testing.T) {
	require.Equal(t, "Post reward", TransactionTypeLabel(TX_POST_REWARD))
	require.Equal(t, "Welcome grant", TransactionTypeLabel(TX_INITIAL_BALANCE))
	require.Equal(t, "Daily bonus", TransactionTypeLabel(TX_DAILY_BONUS))

	// unknown types fall through unchanged
	require.Equal(t, "mystery_type", TransactionTypeLabel("mystery_type"))
}

func TestAccountJSONNextTierFields(t *testing.T) {
	account := &AuraAccount{UserID: "u1", Balance: 50000}
	account.ApplyDerived()

	// at the top tier both next-tier fields disappear from the payload
	b, err := json.Marshal(account)
	require.NoError(t, err)
	require.NotContains(t, string(b), "progress_to_next_tier")
	require.NotContains(t, string(b), "next_tier_threshold")

	// a zero progress on a lower tier is still a real value, not absence
	account.Balance = 100
	account.ApplyDerived()
	b, err = json.Marshal(account)
	require.NoError(t, err)
	require.Contains(t, string(b), `"progress_to_next_tier":0`)
	require.Contains(t, string(b), `"next_tier_threshold":500`)
}

func TestRankLeaderboard(t *testing.T) {
	// ties already broken by user id ascending upstream
	items := []*LeaderboardItem{
		{UserID: "carol", Balance: 900},
		{UserID: "alice", Balance: 500},
		{UserID: "bob", Balance: 500},
		{UserID: "dave", Balance: 10},
	}

	ranked := RankLeaderboard(items)
	require.Len(t, ranked, 4)
	for i, item := range ranked {
		require.Equal(t, i+1, item.Rank)
	}
	require.Equal(t, "alice", ranked[1].UserID)
	require.Equal(t, "bob", ranked[2].UserID)
}

func TestRankLeaderboardEmpty(t *testing.T) {
	require.Empty(t, RankLeaderboard(nil))
}
