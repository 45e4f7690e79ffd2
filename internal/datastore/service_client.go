package datastore

import (
	"context"

	"clapo/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableServiceClient(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ServiceClient)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ServiceClient)(nil)).Index("index_service_client_api_key").IfNotExists().Unique().Column("api_key").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ServiceClient)(nil)).Index("index_service_client_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertServiceClient(ctx context.Context, db *bun.DB, client *models.ServiceClient) error {
	_, err := db.NewInsert().Model(client).On("CONFLICT (slug) DO NOTHING").Exec(ctx)
	return err
}

func FindServiceClientByAPIKey(ctx context.Context, db *bun.DB, apiKey string) (*models.ServiceClient, error) {
	var client models.ServiceClient
	err := db.NewSelect().Model(&client).Where("api_key = ?", apiKey).Where("enabled = true").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func GetServiceClient(ctx context.Context, db *bun.DB, slug string) (*models.ServiceClient, error) {
	var client models.ServiceClient
	err := db.NewSelect().Model(&client).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
