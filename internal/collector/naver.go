package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"InvestSentinel/internal/model"

	"github.com/rs/zerolog"
)

const defaultNaverURL = "https://api.finance.naver.com"

// NaverFetcher serves Korean-market tickers from the Naver finance daily
// chart endpoint. It is free and uncounted, so Korean ETFs never touch the
// Alpha Vantage quota. Fundamentals are not available from this source.
type NaverFetcher struct {
	BaseURL string
	Client  *http.Client
	log     zerolog.Logger
}

// NewNaverFetcher creates a fetcher with optional proxy support.
func NewNaverFetcher(proxyURL string, log zerolog.Logger) *NaverFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &NaverFetcher{
		BaseURL: defaultNaverURL,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		log: log.With().Str("component", "naver").Logger(),
	}
}

func (f *NaverFetcher) Name() string { return "naver" }

// krSymbol strips the exchange suffix the config carries for display.
func krSymbol(ticker string) string {
	s := strings.TrimSuffix(ticker, ".KS")
	return strings.TrimSuffix(s, ".KRX")
}

// Quote derives current and prior close from the last few daily bars.
func (f *NaverFetcher) Quote(ticker string) (*model.PricePoint, error) {
	closes, err := f.DailyCloses(ticker, time.Now().AddDate(0, 0, -10))
	if err != nil {
		return nil, err
	}
	if len(closes) < 2 {
		return nil, fmt.Errorf("naver: not enough daily bars for %s", ticker)
	}

	current := closes[len(closes)-1].Close
	prev := closes[len(closes)-2].Close
	if prev == 0 {
		return nil, fmt.Errorf("naver: zero prior close for %s", ticker)
	}
	return &model.PricePoint{
		Ticker:       ticker,
		CurrentPrice: round2(current),
		PrevPrice:    round2(prev),
		ChangePct:    round2((current - prev) / prev * 100),
	}, nil
}

// DailyCloses fetches the daily close series in ascending date order.
func (f *NaverFetcher) DailyCloses(ticker string, from time.Time) ([]model.DailyClose, error) {
	endpoint := fmt.Sprintf("%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		f.BaseURL, url.QueryEscape(krSymbol(ticker)),
		from.Format("20060102"), time.Now().Format("20060102"))

	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("naver fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("naver read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver: status %d for %s", resp.StatusCode, ticker)
	}

	closes, err := parseNaverDaily(body)
	if err != nil {
		return nil, fmt.Errorf("naver parse %s: %w", ticker, err)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("naver: no daily bars for %s", ticker)
	}
	return closes, nil
}

// Fundamentals is not served by this source; conditional tickers must route
// elsewhere.
func (f *NaverFetcher) Fundamentals(ticker string) (*model.Fundamentals, error) {
	return nil, fmt.Errorf("naver: fundamentals not available for %s", ticker)
}

// parseNaverDaily decodes the daily chart payload: a quasi-JSON array of
// rows, single-quoted, first row a header, columns
// [date, open, high, low, close, volume, foreign ratio].
func parseNaverDaily(body []byte) ([]model.DailyClose, error) {
	normalized := strings.ReplaceAll(string(body), "'", `"`)

	var rows [][]any
	if err := json.Unmarshal([]byte(normalized), &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	var closes []model.DailyClose
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := time.Parse("20060102", dateStr)
		if err != nil {
			continue
		}
		closePrice, ok := row[4].(float64)
		if !ok || closePrice == 0 {
			continue
		}
		closes = append(closes, model.DailyClose{Date: date, Close: closePrice})
	}
	return closes, nil
}
