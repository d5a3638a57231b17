package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"InvestSentinel/internal/model"

	"github.com/rs/zerolog"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements MarketFetcher against the Alpha Vantage
// REST API. Every request is charged against the injected quota counter.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	quota   *CallCounter
	log     zerolog.Logger
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string, quota *CallCounter, log zerolog.Logger) *AlphaVantageFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlphaVantageFetcher{
		BaseURL: defaultAlphaVantageURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		quota: quota,
		log:   log.With().Str("component", "alphavantage").Logger(),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avError carries the rate-limit note Alpha Vantage returns with HTTP 200.
type avError struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (e *avError) message() string {
	if e.Note != "" {
		return e.Note
	}
	return e.Information
}

func (f *AlphaVantageFetcher) get(query string, out any) error {
	if f.quota.Exhausted() {
		return fmt.Errorf("alphavantage: daily quota exhausted")
	}
	f.quota.Inc()

	endpoint := fmt.Sprintf("%s/query?%s&apikey=%s", f.BaseURL, query, f.APIKey)
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var limitCheck avError
	if err := json.Unmarshal(body, &limitCheck); err == nil && limitCheck.message() != "" {
		return fmt.Errorf("alphavantage rate limited: %s", limitCheck.message())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("alphavantage decode: %w", err)
	}
	return nil
}

// Quote fetches the current and prior-close price via GLOBAL_QUOTE.
func (f *AlphaVantageFetcher) Quote(ticker string) (*model.PricePoint, error) {
	var result struct {
		GlobalQuote struct {
			Price     string `json:"05. price"`
			PrevClose string `json:"08. previous close"`
		} `json:"Global Quote"`
	}
	if err := f.get("function=GLOBAL_QUOTE&symbol="+url.QueryEscape(ticker), &result); err != nil {
		return nil, err
	}

	current := parseFloat(result.GlobalQuote.Price)
	prev := parseFloat(result.GlobalQuote.PrevClose)
	if current == nil || prev == nil || *current == 0 || *prev == 0 {
		return nil, fmt.Errorf("alphavantage: no quote data for %s", ticker)
	}
	return &model.PricePoint{
		Ticker:       ticker,
		CurrentPrice: round2(*current),
		PrevPrice:    round2(*prev),
		ChangePct:    round2((*current - *prev) / *prev * 100),
	}, nil
}

// DailyCloses fetches the daily close series via TIME_SERIES_DAILY and
// returns it in ascending date order, trimmed to the requested start.
func (f *AlphaVantageFetcher) DailyCloses(ticker string, from time.Time) ([]model.DailyClose, error) {
	outputSize := "compact"
	if time.Since(from) > 90*24*time.Hour {
		outputSize = "full"
	}

	var result struct {
		Series map[string]struct {
			Close string `json:"4. close"`
		} `json:"Time Series (Daily)"`
	}
	query := fmt.Sprintf("function=TIME_SERIES_DAILY&symbol=%s&outputsize=%s", url.QueryEscape(ticker), outputSize)
	if err := f.get(query, &result); err != nil {
		return nil, err
	}
	if len(result.Series) == 0 {
		return nil, fmt.Errorf("alphavantage: no daily series for %s", ticker)
	}

	closes := make([]model.DailyClose, 0, len(result.Series))
	for dateStr, bar := range result.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if date.Before(from) {
			continue
		}
		c := parseFloat(bar.Close)
		if c == nil {
			continue
		}
		closes = append(closes, model.DailyClose{Date: date, Close: *c})
	}
	sort.Slice(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })
	if len(closes) == 0 {
		return nil, fmt.Errorf("alphavantage: no closes after %s for %s", from.Format("2006-01-02"), ticker)
	}
	return closes, nil
}

// Fundamentals fetches valuation metrics via OVERVIEW. Provider sentinels
// ("None", "-", empty) are normalized to nil here so the core never sees a
// string standing in for a missing number.
func (f *AlphaVantageFetcher) Fundamentals(ticker string) (*model.Fundamentals, error) {
	var result struct {
		Symbol       string `json:"Symbol"`
		PERatio      string `json:"PERatio"`
		ROE          string `json:"ReturnOnEquityTTM"`
		DebtEquity   string `json:"DebtToEquity"`
		ProfitMargin string `json:"ProfitMargin"`
		High52Week   string `json:"52WeekHigh"`
	}
	if err := f.get("function=OVERVIEW&symbol="+url.QueryEscape(ticker), &result); err != nil {
		return nil, err
	}
	if result.Symbol == "" {
		return nil, fmt.Errorf("alphavantage: no overview data for %s", ticker)
	}

	fund := &model.Fundamentals{
		Ticker:       ticker,
		PER:          parseFloat(result.PERatio),
		ROE:          parseFloat(result.ROE),
		DebtEquity:   parseFloat(result.DebtEquity),
		ProfitMargin: parseFloat(result.ProfitMargin),
	}
	if h := parseFloat(result.High52Week); h != nil {
		fund.High52Week = *h
	}
	// OVERVIEW carries no current price; the collector fills CurrentPrice and
	// DropFromHighPct from the quote fetched in the same run.
	return fund, nil
}

// dropFromHigh is (current-high)/high*100, guarded to 0 when either side is
// non-positive so the value stays defined.
func dropFromHigh(current, high float64) float64 {
	if high <= 0 || current <= 0 {
		return 0
	}
	return round2((current - high) / high * 100)
}

// parseFloat normalizes a provider numeric field to a nullable float.
// "None", "-", and empty strings are all treated as absent.
func parseFloat(s string) *float64 {
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
