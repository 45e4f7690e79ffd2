package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"clapo/internal/datastore"
	"clapo/internal/datastore/redis_store"
	"clapo/internal/models"
	"clapo/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeedConfig(),
			commandSetConfig(),
			commandSeedClient(),
			commandRebuildLeaderboard(),
			commandVerifyLedgers(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			if err := datastore.CreateTableAuraAccount(ctx, db); err != nil {
				return err
			}
			if err := datastore.CreateTableAuraTransaction(ctx, db); err != nil {
				return err
			}
			if err := datastore.CreateTableConfig(ctx, db); err != nil {
				return err
			}
			if err := datastore.CreateTableServiceClient(ctx, db); err != nil {
				return err
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandSeedConfig() *cli.Command {
	return &cli.Command{
		Name: "seed-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			defaults := map[string]string{
				services.CONFIG_INITIAL_AURA:       strconv.Itoa(services.INITIAL_AURA_DEFAULT),
				services.CONFIG_POST_REWARD_AMOUNT: strconv.Itoa(services.POST_REWARD_DEFAULT),
				services.CONFIG_DAILY_BONUS_AMOUNT: strconv.Itoa(services.DAILY_BONUS_DEFAULT),
				services.CONFIG_DAILY_POST_LIMIT:   strconv.Itoa(services.DAILY_POST_LIMIT_DEFAULT),
				services.CONFIG_LEADERBOARD_LIMIT:  strconv.Itoa(services.LEADERBOARD_DEFAULT_LIMIT),
			}

			for key, value := range defaults {
				if err := datastore.InsertConfig(ctx, db, models.Config{Key: key, Value: value}); err != nil {
					return err
				}
			}

			log.Println("config seeded")
			return nil
		},
	}
}

func commandSetConfig() *cli.Command {
	return &cli.Command{
		Name:  "set-config",
		Usage: "override a config row, e.g. POST_REWARD_AMOUNT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "value", Required: true},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			config := models.Config{Key: c.String("key"), Value: c.String("value")}
			if err := datastore.InsertConfig(ctx, db, config); err != nil {
				return err
			}
			if _, err := datastore.EditConfig(ctx, db, &config); err != nil {
				return err
			}

			log.Println("config set:", config.Key, "=", config.Value)
			return nil
		},
	}
}

func commandSeedClient() *cli.Command {
	return &cli.Command{
		Name:  "seed-client",
		Usage: "register a sibling service and print its api key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "slug", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.IntFlag{Name: "rate", Value: services.SERVICE_CLIENT_RATE_LIMIT_PER_MINUTE},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			name := c.String("name")
			if name == "" {
				name = c.String("slug")
			}

			client := &models.ServiceClient{
				Name:          name,
				Slug:          c.String("slug"),
				APIKey:        uuid.NewString(),
				Enabled:       true,
				RatePerMinute: c.Int("rate"),
			}

			if err := datastore.InsertServiceClient(ctx, db, client); err != nil {
				return err
			}

			// re-read so an already-registered slug prints its existing key
			client, err = datastore.GetServiceClient(ctx, db, client.Slug)
			if err != nil {
				return err
			}

			fmt.Println("slug:", client.Slug, "api_key:", client.APIKey)
			return nil
		},
	}
}

func commandRebuildLeaderboard() *cli.Command {
	return &cli.Command{
		Name: "rebuild-leaderboard",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}
			redisDB, err := getRedis()
			if err != nil {
				return err
			}

			if err := redis_store.ClearLeaderboard(ctx, redisDB, redis_store.LEADERBOARD_AURA); err != nil {
				return err
			}

			limit := 1000
			total := 0
			for offset := 0; ; offset += limit {
				accounts, err := datastore.GetAccountsByLimit(ctx, db, limit, offset)
				if err != nil {
					return err
				}
				if len(accounts) == 0 {
					break
				}

				if err := redis_store.RebuildLeaderboard(ctx, redisDB, redis_store.LEADERBOARD_AURA, accounts); err != nil {
					return err
				}

				total += len(accounts)
				if len(accounts) < limit {
					break
				}
			}

			log.Println("leaderboard rebuilt:", "accounts:", total)
			return nil
		},
	}
}

func commandVerifyLedgers() *cli.Command {
	return &cli.Command{
		Name:  "verify-ledgers",
		Usage: "replay every transaction log against the stored balances",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			expected, err := datastore.CountAccounts(ctx, db)
			if err != nil {
				return err
			}

			limit := 1000
			checked := 0
			bad := 0
			for offset := 0; ; offset += limit {
				accounts, err := datastore.GetAccountsByLimit(ctx, db, limit, offset)
				if err != nil {
					return err
				}
				if len(accounts) == 0 {
					break
				}

				for _, account := range accounts {
					total, err := datastore.SumTransactionAmounts(ctx, db, account.UserID)
					if err != nil {
						return err
					}
					if total != account.Balance || account.TotalEarned-account.TotalSpent != account.Balance {
						bad++
						log.Println("ledger mismatch:", "user:", account.UserID, "balance:", account.Balance, "sum:", total)
					}
					checked++
				}

				if len(accounts) < limit {
					break
				}
			}

			log.Println("ledgers verified:", "expected:", expected, "checked:", checked, "mismatched:", bad)
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func getRedis() (redis.UniversalClient, error) {
	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_DB"),
	})
}
