package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"

	// Free tier: 5 requests/min. Un token cada 12s con burst 1 se queda
	// justo por debajo del límite documentado.
	requestEvery = 12 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de Alpha Vantage con rate limiting y retries.
// Implementa ports.BarProvider. Toda la forma dinámica de las respuestas
// del proveedor (keys numeradas, valores string) queda aislada aquí: el
// core solo ve domain.Bar normalizados.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client. Si baseURL está vacío usa el URL de producción.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(requestEvery), 1),
	}
}

// FetchDailyBars descarga la serie diaria ajustada completa del ticker y la
// devuelve normalizada: fechas estrictamente crecientes, sin forward-fill.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", ticker)
	q.Set("outputsize", "full")
	q.Set("apikey", c.apiKey)

	var resp dailyResponse
	if err := c.get(ctx, c.baseURL+"/query?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("alphavantage.FetchDailyBars: %s: %w", ticker, err)
	}

	// El API devuelve 200 con un body de error/aviso en vez de un status code.
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage.FetchDailyBars: %s: api error: %s", ticker, resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alphavantage.FetchDailyBars: %s: throttled: %s", ticker, resp.Note)
	}
	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("alphavantage.FetchDailyBars: %s: empty series", ticker)
	}

	bars, err := mapDailySeries(resp.Series)
	if err != nil {
		return nil, fmt.Errorf("alphavantage.FetchDailyBars: %s: %w", ticker, err)
	}

	slog.Debug("fetched daily bars", "ticker", ticker,
		"bars", len(bars),
		"from", bars[0].Date.Format("2006-01-02"),
		"to", bars[len(bars)-1].Date.Format("2006-01-02"),
	)
	return bars, nil
}

// get hace un GET con rate limiting y retries con backoff exponencial.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("retrying data request", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
