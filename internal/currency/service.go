package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cavos-labs/forma-api/internal/logger"
)

const (
	primaryRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	backupRateURL  = "https://open.er-api.com/v6/latest/USD"

	// Last-resort USD to CRC rate used when both providers are down.
	fallbackCRCRate = 520.0
)

// USD list prices for the gym subscription plans.
const (
	MonthlyPriceUSD = 51.0
	YearlyPriceUSD  = 549.0
)

type Service struct {
	client *http.Client
}

func NewService() *Service {
	return &Service{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewServiceWithClient is for tests that stub the rate providers.
func NewServiceWithClient(client *http.Client) *Service {
	return &Service{client: client}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// GetRate returns the USD exchange rate for the given currency code. The
// backup provider is tried when the primary fails; if both fail, CRC falls
// back to a hardcoded rate so pricing never errors out entirely.
func (s *Service) GetRate(ctx context.Context, code string) (rate float64, source string, err error) {
	if code == "USD" {
		return 1, "fixed", nil
	}

	if rate, err := s.fetchRate(ctx, primaryRateURL, code); err == nil {
		return rate, "primary", nil
	} else {
		logger.Errorf("Primary exchange rate provider failed: %v", err)
	}

	if rate, err := s.fetchRate(ctx, backupRateURL, code); err == nil {
		return rate, "backup", nil
	} else {
		logger.Errorf("Backup exchange rate provider failed: %v", err)
	}

	if code == "CRC" {
		return fallbackCRCRate, "fallback", nil
	}
	return 0, "", fmt.Errorf("no exchange rate available for %s", code)
}

func (s *Service) fetchRate(ctx context.Context, url, code string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	rate, ok := payload.Rates[code]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate for %s missing from provider response", code)
	}
	return rate, nil
}
