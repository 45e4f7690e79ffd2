package services

import (
	"context"
	"errors"

	"clapo/internal/datastore"
	"clapo/internal/interfaces"
	"clapo/internal/models"
	"clapo/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceClientAuth struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	limiter interfaces.Limiter
}

func NewServiceClientAuth(container *do.Injector) (*ServiceClientAuth, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	lim, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceClientAuth{container, db, readonlyPostgresDB, cache, readonlyCache, lim}, nil
}

func (service *ServiceClientAuth) ValidateAPIKey(apiKey string) (*models.ServiceClient, error) {
	ctx := context.Background()
	callback := func() (*models.ServiceClient, error) {
		return datastore.FindServiceClientByAPIKey(ctx, service.readonlyPostgresDB, apiKey)
	}
	client, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyServiceClient(apiKey), CACHE_TTL_15_MINS, callback)
	if err != nil {
		return nil, err
	}

	if client == nil {
		return nil, errors.New("wrong api key")
	}

	return client, nil
}

// Throttle applies the per-client request budget before any ledger work.
func (service *ServiceClientAuth) Throttle(ctx context.Context, client *models.ServiceClient) error {
	perMinute := client.RatePerMinute
	if perMinute <= 0 {
		perMinute = SERVICE_CLIENT_RATE_LIMIT_PER_MINUTE
	}

	err := service.limiter.Allow(ctx, LimitKeyServiceClient(client.Slug), redis_rate.PerMinute(perMinute))
	if err != nil {
		if err.Error() == limiter.ErrRateLimited.Error() {
			return errorx.Wrap(err, errorx.RateLimiting)
		}
		return err
	}

	return nil
}
