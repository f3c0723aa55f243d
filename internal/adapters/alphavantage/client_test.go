package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "Meta Data": {"2. Symbol": "NVDA"},
  "Time Series (Daily)": {
    "2024-03-05": {
      "1. open": "101.0", "2. high": "103.0", "3. low": "100.0",
      "4. close": "102.0", "5. adjusted close": "102.0", "6. volume": "1200"
    },
    "2024-03-04": {
      "1. open": "99.0", "2. high": "101.0", "3. low": "98.0",
      "4. close": "100.0", "5. adjusted close": "100.0", "6. volume": "1000"
    }
  }
}`

func TestClient_FetchDailyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", r.URL.Query().Get("function"))
		assert.Equal(t, "NVDA", r.URL.Query().Get("symbol"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	bars, err := c.FetchDailyBars(context.Background(), "NVDA")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	// el mapa del API llega sin orden: la salida va por fecha creciente
	assert.Equal(t, "2024-03-04", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-03-05", bars[1].Date.Format("2006-01-02"))
	assert.InDelta(t, 100.0, bars[0].AdjClose, 1e-12)
	assert.InDelta(t, 1200.0, bars[1].Volume, 1e-12)
}

func TestClient_APIErrorBody(t *testing.T) {
	// el API responde 200 con el error dentro del body
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.FetchDailyBars(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error")
}

func TestClient_ThrottleNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.FetchDailyBars(context.Background(), "NVDA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestClient_EmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Meta Data": {}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.FetchDailyBars(context.Background(), "NVDA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty series")
}

func TestClient_ClientErrorNoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.FetchDailyBars(context.Background(), "NVDA")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}
