package datastore

import (
	"context"

	"clapo/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableAuraTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.AuraTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.AuraTransaction)(nil)).Index("index_aura_transaction_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.AuraTransaction)(nil)).Index("index_aura_transaction_user_id_created_at").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.AuraTransaction)(nil)).Index("index_aura_transaction_reference").IfNotExists().Unique().Column("reference").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// GetTransactionsPaging returns transactions newest first; created_at with
// id as tie-break keeps offset pagination stable while new rows only land
// at the newest end.
func GetTransactionsPaging(ctx context.Context, db *bun.DB, userID string, limit, offset int) ([]*models.AuraTransaction, error) {
	var transactions []*models.AuraTransaction
	err := db.NewSelect().
		Model(&transactions).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC").
		OrderExpr("id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func CountTransactions(ctx context.Context, db *bun.DB, userID string) (int, error) {
	return db.NewSelect().Model((*models.AuraTransaction)(nil)).Where("user_id = ?", userID).Count(ctx)
}

// SumTransactionAmounts replays the ledger for audit; it must equal the
// stored account balance.
func SumTransactionAmounts(ctx context.Context, db *bun.DB, userID string) (int, error) {
	var total int
	err := db.NewSelect().
		ColumnExpr("COALESCE(SUM(amount), 0)").
		TableExpr("aura_transaction").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
