package marketdata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyPayload = `{
	"Meta Data": {"2. Symbol": "RELIANCE.BSE"},
	"Time Series (Daily)": {
		"2026-08-28": {
			"1. open": "2950.00",
			"2. high": "2980.50",
			"3. low": "2940.10",
			"4. close": "2975.25",
			"5. volume": "1250000"
		},
		"2026-08-27": {
			"1. open": "2930.00",
			"2. high": "2955.00",
			"3. low": "2921.00",
			"4. close": "2948.00",
			"5. volume": "980000"
		}
	}
}`

func TestFetchDaily_ParsesSeriesOldestFirst(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "RELIANCE.BSE", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(dailyPayload))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", log)

	bars, err := client.FetchDaily("RELIANCE.BSE")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "2026-08-27", bars[0].Date)
	assert.Equal(t, "2026-08-28", bars[1].Date)
	assert.InDelta(t, 2975.25, bars[1].Close, 1e-9)
	assert.Equal(t, int64(1250000), bars[1].Volume)
	assert.Equal(t, "RELIANCE.BSE", bars[0].Symbol)
}

func TestFetchDaily_RateLimitNote(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", log)

	_, err := client.FetchDaily("RELIANCE.BSE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchDaily_ErrorMessage(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", log)

	_, err := client.FetchDaily("BOGUS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API call")
}

func TestFetchDaily_HTTPError(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", log)

	_, err := client.FetchDaily("RELIANCE.BSE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
