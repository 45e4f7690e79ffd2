package redis_store

import (
	"context"
	"fmt"
	"log"
	"time"

	"clapo/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const LEADERBOARD_AURA = "aura"

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", name)
}

func dbKeyDayCounter(action string, userID string, day string) string {
	return fmt.Sprintf("aura:day_counter:%s:%s:%s", action, userID, day)
}

func dbKeyUserTierState(userID string) string {
	return fmt.Sprintf("aura:tier_state:%s", userID)
}

// SetLeaderboardScore mirrors an account balance into the sorted set. The
// set serves rank lookups and participant counts; the page itself is read
// from Postgres where the tie-break is deterministic.
func SetLeaderboardScore(ctx context.Context, cmd redis.Cmdable, name string, userID string, balance int) error {
	return cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  float64(balance),
		Member: userID,
	}).Err()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

func GetRank(ctx context.Context, cmd redis.Cmdable, name string, userID string) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(name), userID).Result()
	if err != nil {
		return -1, err
	}

	return rank, nil
}

func GetParticipantsCount(ctx context.Context, cmd redis.Cmdable, name string) (int64, error) {
	return cmd.ZCard(ctx, dbKeyLeaderboard(name)).Result()
}

// IncrDayCounter bumps the (user, UTC day) bucket for an action and returns
// the new count. Buckets expire on their own two days later, no sweeper.
func IncrDayCounter(ctx context.Context, cmd redis.Cmdable, action string, userID string, day string) (int, error) {
	key := dbKeyDayCounter(action, userID, day)
	count, err := cmd.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		// the counter is already taken; a failed expiry only delays the
		// key's cleanup, it must not fail the action
		if err := cmd.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
			log.Println("day counter expire:", err, "key:", key)
		}
	}

	return int(count), nil
}

func GetDayCounter(ctx context.Context, cmd redis.Cmdable, action string, userID string, day string) (int, error) {
	count, err := cmd.Get(ctx, dbKeyDayCounter(action, userID, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return count, nil
}

func DecrDayCounter(ctx context.Context, cmd redis.Cmdable, action string, userID string, day string) error {
	return cmd.Decr(ctx, dbKeyDayCounter(action, userID, day)).Err()
}

// TierState is the last tier the ranker webhook was told about.
type TierState struct {
	Tier            int       `msgpack:"tier" json:"tier"`
	ReachMultiplier float64   `msgpack:"reach_multiplier" json:"reach_multiplier"`
	UpdatedAt       time.Time `msgpack:"updated_at" json:"updated_at"`
}

func SetUserTierState(ctx context.Context, cmd redis.Cmdable, userID string, state *TierState) error {
	b, err := msgpack.Marshal(state)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyUserTierState(userID), b, 0).Err()
}

func GetUserTierState(ctx context.Context, cmd redis.Cmdable, userID string) (*TierState, error) {
	var v *TierState
	b, err := cmd.Get(ctx, dbKeyUserTierState(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

// RebuildLeaderboard replaces the sorted set with scores taken from the
// given accounts. Used by the cron binary to repair drift.
func RebuildLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, accounts []*models.AuraAccount) error {
	members := make([]redis.Z, 0, len(accounts))
	for _, account := range accounts {
		members = append(members, redis.Z{
			Score:  float64(account.Balance),
			Member: account.UserID,
		})
	}

	if len(members) == 0 {
		return nil
	}

	return cmd.ZAdd(ctx, dbKeyLeaderboard(name), members...).Err()
}
