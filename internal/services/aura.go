package services

import (
	"context"
	"errors"
	"log"
	"time"

	"clapo/internal/datastore"
	"clapo/internal/datastore/redis_store"
	"clapo/internal/models"
	"clapo/internal/pkg"
	"clapo/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceAura struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	redisDBCache       redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig   *ServiceConfig
	serviceNotifier *ServiceNotifier
}

func NewServiceAura(container *do.Injector) (*ServiceAura, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	dbRedisCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	serviceNotifier, err := do.Invoke[*ServiceNotifier](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAura{container, db, dbRedisCache, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceNotifier}, nil
}

// GetAccount returns the account snapshot with derived fields recomputed.
// The first read for an unknown user initializes the account and applies
// the configured welcome grant through the normal transaction path.
func (service *ServiceAura) GetAccount(ctx context.Context, userID string) (*models.AuraAccount, error) {
	callback := func() (*models.AuraAccount, error) {
		account, err := datastore.FindAccountByUserID(ctx, service.readonlyPostgresDB, userID)
		if err != nil && !datastore.IsErrNoRows(err) {
			return nil, err
		}
		if account == nil {
			return service.initAccount(ctx, userID)
		}
		return account, nil
	}

	account, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAuraAccount(userID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, err
	}

	presentAccount(account)
	return account, nil
}

// ApplyTransaction is the single write path for balances. Writers for the
// same user serialize on a per-account mutex so the balance check and the
// append commit as one unit.
func (service *ServiceAura) ApplyTransaction(ctx context.Context, userID string, amount int, transactionType string, metadata string) (*models.AuraAccount, error) {
	if amount == 0 {
		return nil, errorx.Wrap(ErrInvalidAmount, errorx.Validation)
	}
	if transactionType == "" {
		return nil, errorx.Wrap(errors.New("transaction_type is required"), errorx.Validation)
	}

	mutex := service.rs.NewMutex(LockKeyAuraAccount(userID))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrAuraLock, errorx.Service)
	}

	// nolint:errcheck
	defer mutex.Unlock()

	account, err := service.findOrCreateLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	return service.applyLocked(ctx, account, amount, transactionType, metadata)
}

// RewardPost applies a post_reward, at most 5 per user per UTC day. The
// limit is a policy gate on top of the ledger, tracked in a Redis day
// bucket so no sweep is needed for idle accounts.
func (service *ServiceAura) RewardPost(ctx context.Context, userID string, metadata string) (*models.AuraAccount, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_POST_LIMIT, DAILY_POST_LIMIT_DEFAULT)
	day := pkg.DayBucket(time.Now())

	count, err := redis_store.IncrDayCounter(ctx, service.redisDB, ACTION_POST, userID, day)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if count > limit {
		return nil, errorx.Wrap(ErrDailyPostLimit, errorx.RateLimiting)
	}

	amount, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_POST_REWARD_AMOUNT, POST_REWARD_DEFAULT)
	account, err := service.ApplyTransaction(ctx, userID, amount, models.TX_POST_REWARD, metadata)
	if err != nil {
		if derr := redis_store.DecrDayCounter(ctx, service.redisDB, ACTION_POST, userID, day); derr != nil {
			log.Println("post counter rollback:", derr, "user:", userID)
		}
		return nil, err
	}

	return account, nil
}

// ClaimDailyBonus grants one daily_bonus engagement reward per UTC day.
func (service *ServiceAura) ClaimDailyBonus(ctx context.Context, userID string) (*models.AuraAccount, error) {
	day := pkg.DayBucket(time.Now())

	count, err := redis_store.IncrDayCounter(ctx, service.redisDB, ACTION_DAILY_BONUS, userID, day)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if count > 1 {
		return nil, errorx.Wrap(ErrDailyBonusClaimed, errorx.Invalid)
	}

	amount, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_BONUS_AMOUNT, DAILY_BONUS_DEFAULT)
	account, err := service.ApplyTransaction(ctx, userID, amount, models.TX_DAILY_BONUS, "daily bonus claim")
	if err != nil {
		if derr := redis_store.DecrDayCounter(ctx, service.redisDB, ACTION_DAILY_BONUS, userID, day); derr != nil {
			log.Println("daily bonus counter rollback:", derr, "user:", userID)
		}
		return nil, err
	}

	return account, nil
}

func (service *ServiceAura) DailyStatus(ctx context.Context, userID string) (*models.DailyStatus, error) {
	day := pkg.DayBucket(time.Now())

	posts, err := redis_store.GetDayCounter(ctx, service.redisDB, ACTION_POST, userID, day)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	claims, err := redis_store.GetDayCounter(ctx, service.redisDB, ACTION_DAILY_BONUS, userID, day)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_POST_LIMIT, DAILY_POST_LIMIT_DEFAULT)
	remaining := limit - posts
	if remaining < 0 {
		remaining = 0
	}

	return &models.DailyStatus{
		PostsToday:        posts,
		PostLimit:         limit,
		PostsRemaining:    remaining,
		DailyBonusClaimed: claims > 0,
	}, nil
}

// GetTierState serves the tier multiplier from redis for the feed ranker.
// A miss falls back to the account and repopulates the key.
func (service *ServiceAura) GetTierState(ctx context.Context, userID string) (*redis_store.TierState, error) {
	state, err := redis_store.GetUserTierState(ctx, service.redisDB, userID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Println("tier state read:", err, "user:", userID)
	}

	account, err := service.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier, _ := models.TierForBalance(account.Balance)
	state = &redis_store.TierState{
		Tier:            tier.ID,
		ReachMultiplier: tier.ReachMultiplier,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := redis_store.SetUserTierState(ctx, service.redisDB, userID, state); err != nil {
		log.Println("tier state:", err, "user:", userID)
	}

	return state, nil
}

func (service *ServiceAura) ListTransactions(ctx context.Context, userID string, limit, offset int) (*models.TransactionPage, error) {
	if limit <= 0 {
		limit = TRANSACTIONS_DEFAULT_LIMIT
	}
	if limit > TRANSACTIONS_MAX_LIMIT {
		limit = TRANSACTIONS_MAX_LIMIT
	}
	if offset < 0 {
		offset = 0
	}

	callback := func() ([]*models.AuraTransaction, error) {
		return datastore.GetTransactionsPaging(ctx, service.readonlyPostgresDB, userID, limit, offset)
	}

	transactions, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAuraTransactions(userID, limit, offset), CACHE_TTL_15_SECONDS, callback)
	if err != nil {
		return nil, err
	}

	countCallback := func() (int, error) {
		return datastore.CountTransactions(ctx, service.readonlyPostgresDB, userID)
	}

	total, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAuraTransactionsCount(userID), CACHE_TTL_15_SECONDS, countCallback)
	if err != nil {
		return nil, err
	}

	for _, transaction := range transactions {
		transaction.Label = models.TransactionTypeLabel(transaction.TransactionType)
	}

	return &models.TransactionPage{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

// VerifyLedger replays the transaction log and checks it against the
// stored balance and lifetime counters.
func (service *ServiceAura) VerifyLedger(ctx context.Context, userID string) error {
	account, err := datastore.FindAccountByUserID(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}

	total, err := datastore.SumTransactionAmounts(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}

	if total != account.Balance {
		return errorx.Wrap(errors.New("transaction sum does not match balance"), errorx.Service)
	}
	if account.TotalEarned-account.TotalSpent != account.Balance {
		return errorx.Wrap(errors.New("lifetime counters do not match balance"), errorx.Service)
	}

	return nil
}

func (service *ServiceAura) findOrCreateLocked(ctx context.Context, userID string) (*models.AuraAccount, error) {
	account, err := datastore.FindAccountByUserID(ctx, service.postgresDB, userID)
	if err == nil {
		return account, nil
	}
	if !datastore.IsErrNoRows(err) {
		return nil, err
	}

	return service.createLocked(ctx, userID)
}

// initAccount is the read-path initializer. It takes the account lock
// because the welcome grant is a real transaction.
func (service *ServiceAura) initAccount(ctx context.Context, userID string) (*models.AuraAccount, error) {
	mutex := service.rs.NewMutex(LockKeyAuraAccount(userID))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrAuraLock, errorx.Service)
	}

	// nolint:errcheck
	defer mutex.Unlock()

	return service.findOrCreateLocked(ctx, userID)
}

func (service *ServiceAura) createLocked(ctx context.Context, userID string) (*models.AuraAccount, error) {
	now := time.Now().UTC()
	account, err := datastore.CreateAccount(ctx, service.postgresDB, &models.AuraAccount{
		UserID:         userID,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Create aura account:", "user:", userID)

	initial, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_INITIAL_AURA, INITIAL_AURA_DEFAULT)
	if initial > 0 && account.Balance == 0 && account.TotalEarned == 0 {
		account, err = service.applyLocked(ctx, account, initial, models.TX_INITIAL_BALANCE, "account initialization")
		if err != nil {
			return nil, err
		}
	}

	return account, nil
}

func (service *ServiceAura) applyLocked(ctx context.Context, account *models.AuraAccount, amount int, transactionType string, metadata string) (*models.AuraAccount, error) {
	if amount < 0 && account.Balance+amount < 0 {
		return nil, errorx.Wrap(ErrInsufficientBalance, errorx.Invalid)
	}

	resetDaily := !pkg.SameUTCDay(account.LastActivityAt, time.Now())
	previousTier, _ := models.TierForBalance(account.Balance)

	transaction := &models.AuraTransaction{
		Reference:       uuid.NewString(),
		UserID:          account.UserID,
		Amount:          amount,
		TransactionType: transactionType,
		Metadata:        metadata,
	}

	updated, err := datastore.ApplyTransaction(ctx, service.postgresDB, transaction, resetDaily)
	if err != nil {
		if errors.Is(err, datastore.ErrInsufficientBalance) {
			return nil, errorx.Wrap(ErrInsufficientBalance, errorx.Invalid)
		}
		return nil, err
	}

	service.afterApply(ctx, updated, previousTier)

	presentAccount(updated)
	return updated, nil
}

func (service *ServiceAura) afterApply(ctx context.Context, account *models.AuraAccount, previousTier models.Tier) {
	err := redis_store.SetLeaderboardScore(ctx, service.redisDB, redis_store.LEADERBOARD_AURA, account.UserID, account.Balance)
	if err != nil {
		log.Println("leaderboard update:", err, "user:", account.UserID)
	}

	if err := service.cache.Delete(ctx, DBKeyAuraAccount(account.UserID)); err != nil {
		log.Println(err)
	}
	caching.DeleteKeys(ctx, service.redisDBCache, "aura:transactions:"+account.UserID+":*")
	caching.DeleteKeys(ctx, service.redisDBCache, "aura:leaderboard:*")

	currentTier, _ := models.TierForBalance(account.Balance)
	if currentTier.ID == previousTier.ID {
		return
	}

	err = redis_store.SetUserTierState(ctx, service.redisDB, account.UserID, &redis_store.TierState{
		Tier:            currentTier.ID,
		ReachMultiplier: currentTier.ReachMultiplier,
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		log.Println("tier state:", err, "user:", account.UserID)
	}

	go func() {
		err := service.serviceNotifier.NotifyTierChange(account.UserID, currentTier.ID, currentTier.Name, currentTier.ReachMultiplier)
		if err != nil {
			log.Println("tier webhook:", err, "user:", account.UserID)
		}
	}()
}

// presentAccount recomputes derived fields and, when the last activity
// predates today, presents the daily counters as zero. The stored row is
// only rolled over by the next write.
func presentAccount(account *models.AuraAccount) {
	if !pkg.SameUTCDay(account.LastActivityAt, time.Now()) {
		account.AuraEarnedToday = 0
		account.AuraSpentToday = 0
	}
	account.ApplyDerived()
}
