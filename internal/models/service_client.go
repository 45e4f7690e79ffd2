package models

import "github.com/uptrace/bun"

// ServiceClient is a sibling backend service (feed ranker, Opinio, Munch)
// allowed to call the service API with an API key.
type ServiceClient struct {
	bun.BaseModel `bun:"table:service_client"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name" json:"name"`
	APIKey        string `bun:"api_key" json:"-"`
	Slug          string `bun:"slug" json:"slug"`
	Enabled       bool   `bun:"enabled" json:"enabled"`
	RatePerMinute int    `bun:"rate_per_minute" json:"rate_per_minute"`
}
