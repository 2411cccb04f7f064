// Package yahoo implements the price provider on top of the public Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

	quoteRange    = "10d"
	quoteInterval = "1d"

	previewLen = 120
)

// DefaultHosts are tried in order for every request
var DefaultHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

var defaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// errNotFound marks a symbol Yahoo does not know; it is never retried
var errNotFound = errors.New("symbol not found")

// Client is a Yahoo Finance price provider
type Client struct {
	client   *http.Client
	hosts    []string
	backoffs []time.Duration
	log      zerolog.Logger
}

// NewClient creates a new Yahoo Finance client against the public hosts
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithHosts(DefaultHosts, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewClientWithHosts creates a client against the given base URLs
func NewClientWithHosts(hosts []string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		client:   httpClient,
		hosts:    hosts,
		backoffs: defaultBackoffs,
		log:      log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse is the subset of /v8/finance/chart this client reads.
// Price arrays hold nulls for missing candles.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Country string `json:"country"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// candle is one adjusted daily or monthly bar
type candle struct {
	date  time.Time
	open  float64
	close float64
}

// FetchPriceSeries returns the adjusted close history of ticker over period
// sampled at interval, e.g. "10y" and "1mo".
func (c *Client) FetchPriceSeries(ctx context.Context, ticker, period, interval string) ([]domain.PricePoint, error) {
	candles, err := c.fetchCandles(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no price data for %s", ticker)
	}

	points := make([]domain.PricePoint, len(candles))
	for i, cd := range candles {
		points[i] = domain.PricePoint{Date: cd.date, Price: cd.close}
	}
	return points, nil
}

// FetchLastQuote returns the latest of the last ten daily candles. The country
// is looked up on a best-effort basis and left nil when unavailable.
func (c *Client) FetchLastQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	candles, err := c.fetchCandles(ctx, ticker, quoteRange, quoteInterval)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%s: %w", ticker, domain.ErrNoQuoteData)
	}
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, domain.ErrNoQuoteData)
	}

	last := candles[len(candles)-1]
	return &domain.Quote{
		Ticker:    ticker,
		Country:   c.fetchCountry(ctx, ticker),
		LastDate:  last.date.Format("2006-01-02"),
		LastOpen:  last.open,
		LastClose: last.close,
	}, nil
}

// fetchCandles loads the chart for ticker and returns its complete candles.
// The adjusted close replaces the close when present and the open is scaled
// by the same factor.
func (c *Client) fetchCandles(ctx context.Context, ticker, rangeParam, interval string) ([]candle, error) {
	query := url.Values{}
	query.Set("range", rangeParam)
	query.Set("interval", interval)
	query.Set("events", "div,splits")
	query.Set("includeAdjustedClose", "true")
	path := "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + query.Encode()

	var resp chartResponse
	if err := c.getJSON(ctx, ticker, path, &resp, true); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s: %s", ticker, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx := valueAt(quote.Close, i)
		if closePx == nil || *closePx <= 0 {
			continue
		}
		cd := candle{
			// Shift into exchange local time so the calendar date is the trading day
			date:  time.Unix(ts+result.Meta.GMTOffset, 0).UTC().Truncate(24 * time.Hour),
			close: *closePx,
		}
		if open := valueAt(quote.Open, i); open != nil {
			cd.open = *open
		}
		if a := valueAt(adj, i); a != nil && *a > 0 {
			cd.open *= *a / *closePx
			cd.close = *a
		}
		candles = append(candles, cd)
	}

	c.log.Debug().
		Str("ticker", ticker).
		Str("range", rangeParam).
		Str("interval", interval).
		Int("candles", len(candles)).
		Msg("Fetched chart")

	return candles, nil
}

// fetchCountry reads the asset profile country, nil on any failure
func (c *Client) fetchCountry(ctx context.Context, ticker string) *string {
	path := "/v10/finance/quoteSummary/" + url.PathEscape(ticker) + "?modules=assetProfile"

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, ticker, path, &resp, false); err != nil {
		c.log.Debug().Err(err).Str("ticker", ticker).Msg("Country lookup failed")
		return nil
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil
	}
	country := resp.QuoteSummary.Result[0].AssetProfile.Country
	if country == "" {
		return nil
	}
	return &country
}

// getJSON fetches path from each host in turn and decodes the first JSON
// answer into out. With retry set the full host rotation is repeated after
// each backoff.
func (c *Client) getJSON(ctx context.Context, ticker, path string, out interface{}, retry bool) error {
	attempts := 1
	if retry {
		attempts += len(c.backoffs)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		for _, host := range c.hosts {
			err := c.getOnce(ctx, host, ticker, path, out)
			if err == nil {
				return nil
			}
			if errors.Is(err, errNotFound) || ctx.Err() != nil {
				return err
			}
			lastErr = err
			c.log.Debug().Err(err).Str("host", host).Int("attempt", attempt+1).Msg("Yahoo request failed")
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no yahoo hosts configured")
	}
	return lastErr
}

func (c *Client) getOnce(ctx context.Context, host, ticker, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(ticker)))

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read yahoo response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", ticker, errNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests"):
		return fmt.Errorf("yahoo %s returned 429: too many requests", host)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("yahoo %s returned %d: %s", host, resp.StatusCode, preview(body))
	case strings.HasPrefix(string(body), "<"):
		return fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse yahoo json: %w", err)
	}
	return nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > previewLen {
		s = s[:previewLen]
	}
	return s
}
