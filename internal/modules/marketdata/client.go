package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Client fetches daily bars from the Alpha Vantage TIME_SERIES_DAILY
// endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Alpha Vantage client
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "alphavantage").Logger(),
	}
}

// dailySeriesResponse mirrors the provider's JSON shape. All bar values
// arrive as strings.
type dailySeriesResponse struct {
	Series  map[string]map[string]string `json:"Time Series (Daily)"`
	Note    string                       `json:"Note"`
	Message string                       `json:"Error Message"`
}

// FetchDaily returns the daily bars for a symbol, oldest first. The
// provider's compact output covers roughly the last hundred trading days.
func (c *Client) FetchDaily(symbol string) ([]StockBar, error) {
	endpoint := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var payload dailySeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Message != "" {
		return nil, fmt.Errorf("API error for %s: %s", symbol, payload.Message)
	}
	// The provider answers rate-limited calls with 200 and a Note instead
	// of an error status.
	if payload.Note != "" {
		return nil, fmt.Errorf("API rate limited: %s", payload.Note)
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("no daily series for %s", symbol)
	}

	bars := make([]StockBar, 0, len(payload.Series))
	for date, fields := range payload.Series {
		bar, err := parseBar(symbol, date, fields)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Str("date", date).Msg("Skipping malformed bar")
			continue
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Daily series fetched")
	return bars, nil
}

func parseBar(symbol, date string, fields map[string]string) (StockBar, error) {
	bar := StockBar{Symbol: symbol, Date: date}

	var err error
	if bar.Open, err = strconv.ParseFloat(fields["1. open"], 64); err != nil {
		return StockBar{}, fmt.Errorf("bad open: %w", err)
	}
	if bar.High, err = strconv.ParseFloat(fields["2. high"], 64); err != nil {
		return StockBar{}, fmt.Errorf("bad high: %w", err)
	}
	if bar.Low, err = strconv.ParseFloat(fields["3. low"], 64); err != nil {
		return StockBar{}, fmt.Errorf("bad low: %w", err)
	}
	if bar.Close, err = strconv.ParseFloat(fields["4. close"], 64); err != nil {
		return StockBar{}, fmt.Errorf("bad close: %w", err)
	}
	if bar.Volume, err = strconv.ParseInt(fields["5. volume"], 10, 64); err != nil {
		return StockBar{}, fmt.Errorf("bad volume: %w", err)
	}

	return bar, nil
}
