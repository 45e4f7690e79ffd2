package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
)

// ServiceNotifier tells the feed ranker when a user's tier (and with it the
// reach multiplier) changes. Delivery is best effort with bounded retries;
// the ledger never blocks on it.
type ServiceNotifier struct {
	webhookURL string
	client     *httpclient.Client
}

type tierChangeEvent struct {
	UserID          string  `json:"user_id"`
	Tier            int     `json:"tier"`
	TierName        string  `json:"tier_name"`
	ReachMultiplier float64 `json:"reach_multiplier"`
}

func NewServiceNotifier(webhookURL string) (*ServiceNotifier, error) {
	backoff := heimdall.NewConstantBackoff(500*time.Millisecond, 100*time.Millisecond)
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(5*time.Second),
		httpclient.WithRetryCount(3),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
	)

	return &ServiceNotifier{webhookURL, client}, nil
}

func (service *ServiceNotifier) Enabled() bool {
	return service.webhookURL != ""
}

func (service *ServiceNotifier) NotifyTierChange(userID string, tier int, tierName string, reachMultiplier float64) error {
	if !service.Enabled() {
		return nil
	}

	body, err := json.Marshal(&tierChangeEvent{
		UserID:          userID,
		Tier:            tier,
		TierName:        tierName,
		ReachMultiplier: reachMultiplier,
	})
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	res, err := service.client.Post(service.webhookURL, bytes.NewReader(body), headers)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("ranker webhook status %d", res.StatusCode)
	}

	return nil
}
