package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clapo/internal/models"

	"github.com/uptrace/bun"
)

// ErrInsufficientBalance is returned when a spend would drive the balance
// below zero. The check runs inside the same transaction as the append.
var ErrInsufficientBalance = errors.New("insufficient balance")

func CreateTableAuraAccount(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.AuraAccount)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.AuraAccount)(nil)).Index("index_aura_account_balance").IfNotExists().Column("balance").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindAccountByUserID(ctx context.Context, db bun.IDB, userID string) (*models.AuraAccount, error) {
	var account models.AuraAccount
	err := db.NewSelect().Model(&account).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func CreateAccount(ctx context.Context, db *bun.DB, account *models.AuraAccount) (*models.AuraAccount, error) {
	_, err := db.NewInsert().Model(account).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return FindAccountByUserID(ctx, db, account.UserID)
}

// ApplyTransaction appends a ledger row and moves the balance in one
// database transaction. The balance guard is part of the UPDATE itself, so
// an over-spend can never commit even if callers race past the lock.
func ApplyTransaction(ctx context.Context, db *bun.DB, transaction *models.AuraTransaction, resetDaily bool) (*models.AuraAccount, error) {
	var account *models.AuraAccount

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()

		query := tx.NewUpdate().
			Model((*models.AuraAccount)(nil)).
			Set("balance = balance + ?", transaction.Amount).
			Set("last_activity_at = ?", now).
			Set("updated_at = ?", now).
			Where("user_id = ?", transaction.UserID).
			Where("balance + ? >= 0", transaction.Amount)

		if transaction.Amount > 0 {
			query = query.Set("total_earned = total_earned + ?", transaction.Amount)
			if resetDaily {
				query = query.Set("aura_earned_today = ?", transaction.Amount).Set("aura_spent_today = 0")
			} else {
				query = query.Set("aura_earned_today = aura_earned_today + ?", transaction.Amount)
			}
		} else {
			query = query.Set("total_spent = total_spent + ?", -transaction.Amount)
			if resetDaily {
				query = query.Set("aura_spent_today = ?", -transaction.Amount).Set("aura_earned_today = 0")
			} else {
				query = query.Set("aura_spent_today = aura_spent_today + ?", -transaction.Amount)
			}
		}

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := FindAccountByUserID(ctx, tx, transaction.UserID); err != nil {
				return err
			}
			return ErrInsufficientBalance
		}

		account, err = FindAccountByUserID(ctx, tx, transaction.UserID)
		if err != nil {
			return err
		}

		transaction.BalanceAfter = account.Balance
		transaction.CreatedAt = now
		_, err = tx.NewInsert().Model(transaction).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetTopAccounts orders by balance descending with user_id ascending as a
// deterministic tie-break.
func GetTopAccounts(ctx context.Context, db *bun.DB, limit int) ([]*models.AuraAccount, error) {
	var accounts []*models.AuraAccount
	err := db.NewSelect().
		Model(&accounts).
		OrderExpr("balance DESC").
		OrderExpr("user_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetAccountRank is the 1-based leaderboard position under the same
// ordering GetTopAccounts uses.
func GetAccountRank(ctx context.Context, db *bun.DB, account *models.AuraAccount) (int, error) {
	count, err := db.NewSelect().
		Model((*models.AuraAccount)(nil)).
		Where("balance > ?", account.Balance).
		WhereOr("balance = ? AND user_id < ?", account.Balance, account.UserID).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count + 1, nil
}

func GetAccountsByLimit(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.AuraAccount, error) {
	var accounts []*models.AuraAccount
	err := db.NewSelect().Model(&accounts).Order("user_id ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func CountAccounts(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.AuraAccount)(nil)).Count(ctx)
}

// IsErrNoRows reports the driver-level missing-row error.
func IsErrNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
