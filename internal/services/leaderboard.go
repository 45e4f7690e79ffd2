package services

import (
	"context"

	"clapo/internal/datastore"
	"clapo/internal/datastore/redis_store"
	"clapo/internal/models"
	"clapo/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

// GetLeaderboard reads the page from Postgres, where balance desc plus
// user_id asc gives a deterministic order redis sorted sets cannot. The
// caller's own row is attached when a user is known.
func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context, userID string, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit, _ = service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	}
	if limit > LEADERBOARD_MAX_LIMIT {
		limit = LEADERBOARD_MAX_LIMIT
	}

	callback := func() ([]*models.LeaderboardItem, error) {
		accounts, err := datastore.GetTopAccounts(ctx, service.readonlyPostgresDB, limit)
		if err != nil {
			return nil, err
		}

		items := make([]*models.LeaderboardItem, 0, len(accounts))
		for _, account := range accounts {
			tier, _ := models.TierForBalance(account.Balance)
			items = append(items, &models.LeaderboardItem{
				UserID:  account.UserID,
				Balance: account.Balance,
				Tier:    tier.ID,
			})
		}

		return models.RankLeaderboard(items), nil
	}

	items, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardPage(limit), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, err
	}

	response := &models.LeaderboardResponse{Leaderboard: items}
	if count, err := service.GetParticipantsCount(ctx); err == nil {
		response.Participants = count
	}
	if userID == "" {
		return response, nil
	}

	for _, item := range items {
		if item.UserID == userID {
			response.Me = item
			return response, nil
		}
	}

	me, err := service.getMyRank(ctx, userID)
	if err != nil {
		// the board itself is still useful without the caller's row
		return response, nil
	}

	response.Me = me
	return response, nil
}

func (service *ServiceLeaderboard) getMyRank(ctx context.Context, userID string) (*models.LeaderboardItem, error) {
	account, err := datastore.FindAccountByUserID(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, err
	}

	rank, err := datastore.GetAccountRank(ctx, service.readonlyPostgresDB, account)
	if err != nil {
		// degraded: the mirror's rank orders ties differently but an
		// approximate row beats no row
		mirrorRank, merr := redis_store.GetRank(ctx, service.redisDB, redis_store.LEADERBOARD_AURA, userID)
		if merr != nil {
			return nil, err
		}
		rank = int(mirrorRank) + 1
	}

	tier, _ := models.TierForBalance(account.Balance)
	return &models.LeaderboardItem{
		UserID:  account.UserID,
		Balance: account.Balance,
		Tier:    tier.ID,
		Rank:    rank,
	}, nil
}

// RebuildLeaderboard repopulates the redis mirror from Postgres in pages.
// The cron binary runs this to repair drift from lost writes.
func (service *ServiceLeaderboard) RebuildLeaderboard(ctx context.Context) (int, error) {
	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_AURA); err != nil {
		return 0, err
	}

	total := 0
	limit := 1000
	for offset := 0; ; offset += limit {
		accounts, err := datastore.GetAccountsByLimit(ctx, service.postgresDB, limit, offset)
		if err != nil {
			return total, err
		}
		if len(accounts) == 0 {
			return total, nil
		}

		err = redis_store.RebuildLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_AURA, accounts)
		if err != nil {
			return total, err
		}

		total += len(accounts)
		if len(accounts) < limit {
			return total, nil
		}
	}
}

// GetParticipantsCount is served from the redis mirror.
func (service *ServiceLeaderboard) GetParticipantsCount(ctx context.Context) (int64, error) {
	return redis_store.GetParticipantsCount(ctx, service.redisDB, redis_store.LEADERBOARD_AURA)
}
