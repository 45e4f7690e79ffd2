package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TX_INITIAL_BALANCE   = "initial_balance"
	TX_POST_REWARD       = "post_reward"
	TX_ENGAGEMENT_REWARD = "engagement_reward"
	TX_DAILY_BONUS       = "daily_bonus"
	TX_OPINION_SPEND     = "opinion_creation_spend"
	TX_REFERRAL_REWARD   = "referral_reward"
	TX_ADMIN_ADJUSTMENT  = "admin_adjustment"
)

var TransactionTypeLabels = map[string]string{
	TX_INITIAL_BALANCE:   "Welcome grant",
	TX_POST_REWARD:       "Post reward",
	TX_ENGAGEMENT_REWARD: "Engagement reward",
	TX_DAILY_BONUS:       "Daily bonus",
	TX_OPINION_SPEND:     "Opinion creation",
	TX_REFERRAL_REWARD:   "Referral reward",
	TX_ADMIN_ADJUSTMENT:  "Adjustment",
}

func TransactionTypeLabel(transactionType string) string {
	label, ok := TransactionTypeLabels[transactionType]
	if !ok {
		return transactionType
	}
	return label
}

type AuraAccount struct {
	bun.BaseModel   `bun:"table:aura_account"`
	UserID          string    `bun:"user_id,pk" json:"user_id"`
	Balance         int       `bun:"balance,notnull,default:0" json:"balance"`
	TotalEarned     int       `bun:"total_earned,notnull,default:0" json:"total_earned"`
	TotalSpent      int       `bun:"total_spent,notnull,default:0" json:"total_spent"`
	AuraEarnedToday int       `bun:"aura_earned_today,notnull,default:0" json:"aura_earned_today"`
	AuraSpentToday  int       `bun:"aura_spent_today,notnull,default:0" json:"aura_spent_today"`
	LastActivityAt  time.Time `bun:"last_activity_at" json:"last_activity_at"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at" json:"updated_at"`

	Tier               int      `bun:"-" json:"tier"`
	TierName           string   `bun:"-" json:"tier_name"`
	ReachMultiplier    float64  `bun:"-" json:"reach_multiplier"`
	CanCreateOpinions  bool     `bun:"-" json:"can_create_opinions"`
	ProgressToNextTier *float64 `bun:"-" json:"progress_to_next_tier,omitempty"`
	NextTierThreshold  *int     `bun:"-" json:"next_tier_threshold,omitempty"`
}

type AuraTransaction struct {
	bun.BaseModel   `bun:"table:aura_transaction"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Reference       string    `bun:"reference,notnull" json:"reference"`
	UserID          string    `bun:"user_id,notnull" json:"user_id"`
	Amount          int       `bun:"amount,notnull" json:"amount"`
	TransactionType string    `bun:"transaction_type,notnull" json:"transaction_type"`
	BalanceAfter    int       `bun:"balance_after,notnull" json:"balance_after"`
	Metadata        string    `bun:"metadata" json:"metadata"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	Label string `bun:"-" json:"label"`
}

// DailyStatus reports today's policy counters so clients can disable
// actions before running into the limits.
type DailyStatus struct {
	PostsToday        int  `json:"posts_today"`
	PostLimit         int  `json:"post_limit"`
	PostsRemaining    int  `json:"posts_remaining"`
	DailyBonusClaimed bool `json:"daily_bonus_claimed"`
}

type TransactionPage struct {
	Transactions []*AuraTransaction `json:"transactions"`
	Total        int                `json:"total"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
}
