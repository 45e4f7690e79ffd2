package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidAmount = errors.New("transaction amount must be a non-zero integer")
var ErrInsufficientBalance = errors.New("insufficient aura balance")
var ErrDailyPostLimit = errors.New("daily post limit reached")
var ErrDailyBonusClaimed = errors.New("daily bonus already claimed")
var ErrAuraLock = errors.New("aura account locked")

const (
	CONFIG_SERVER_MODE        = "SERVER_MODE"
	CONFIG_INITIAL_AURA       = "INITIAL_AURA"
	CONFIG_POST_REWARD_AMOUNT = "POST_REWARD_AMOUNT"
	CONFIG_DAILY_BONUS_AMOUNT = "DAILY_BONUS_AMOUNT"
	CONFIG_DAILY_POST_LIMIT   = "DAILY_POST_LIMIT"
	CONFIG_LEADERBOARD_LIMIT  = "LEADERBOARD_LIMIT"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	INITIAL_AURA_DEFAULT       = 100
	POST_REWARD_DEFAULT        = 10
	DAILY_BONUS_DEFAULT        = 5
	DAILY_POST_LIMIT_DEFAULT   = 5
	LEADERBOARD_DEFAULT_LIMIT  = 20
	LEADERBOARD_MAX_LIMIT      = 100
	TRANSACTIONS_DEFAULT_LIMIT = 20
	TRANSACTIONS_MAX_LIMIT     = 100

	ACTION_POST        = "post"
	ACTION_DAILY_BONUS = "daily_bonus"

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour

	SERVICE_CLIENT_RATE_LIMIT_PER_MINUTE = 10000
)

func LockKeyAuraAccount(userID string) string {
	return fmt.Sprintf("lock:aura-account:%s", userID)
}

// db
func DBKeyAuraAccount(userID string) string {
	return fmt.Sprintf("aura:account:%s", userID)
}

func DBKeyAuraTransactions(userID string, limit, offset int) string {
	return fmt.Sprintf("aura:transactions:%s:%d:%d", userID, limit, offset)
}

func DBKeyAuraTransactionsCount(userID string) string {
	return fmt.Sprintf("aura:transactions:%s:count", userID)
}

func DBKeyLeaderboardPage(limit int) string {
	return fmt.Sprintf("aura:leaderboard:%d", limit)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyServiceClient(key string) string {
	return fmt.Sprintf("service_client:%s", key)
}

func LimitKeyServiceClient(slug string) string {
	return fmt.Sprintf("limit:service_client:%s", slug)
}
