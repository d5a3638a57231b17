package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultExchangeRateURL = "https://v6.exchangerate-api.com"

// ExchangeRateFetcher implements FxFetcher against exchangerate-api.com.
type ExchangeRateFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewExchangeRateFetcher creates a fetcher with optional proxy support.
func NewExchangeRateFetcher(apiKey, proxyURL string) *ExchangeRateFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ExchangeRateFetcher{
		BaseURL: defaultExchangeRateURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

// UsdKrwRate fetches the latest USD conversion table and returns the KRW rate.
func (f *ExchangeRateFetcher) UsdKrwRate() (float64, error) {
	endpoint := fmt.Sprintf("%s/v6/%s/latest/USD", f.BaseURL, f.APIKey)
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fx fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("fx read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Result          string             `json:"result"`
		ConversionRates map[string]float64 `json:"conversion_rates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("fx decode: %w", err)
	}
	rate, ok := result.ConversionRates["KRW"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx: KRW rate missing in response")
	}
	return rate, nil
}
