package models

type LeaderboardItem struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
	Tier    int    `json:"tier"`
	Rank    int    `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard  []*LeaderboardItem `json:"leaderboard"`
	Me           *LeaderboardItem   `json:"me"`
	Participants int64              `json:"participants"`
}

// RankLeaderboard assigns 1-based positional ranks. Items must already be
// ordered by balance descending, user id ascending as tie-break.
func RankLeaderboard(items []*LeaderboardItem) []*LeaderboardItem {
	for i, item := range items {
		item.Rank = i + 1
	}
	return items
}
