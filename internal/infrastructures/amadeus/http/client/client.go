package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	derr "github.com/Alexico1969/bkk-tracker/internal/domain/errors"
	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"github.com/Alexico1969/bkk-tracker/internal/domain/ports"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/dto"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/mappers"
	"golang.org/x/time/rate"
)

const offersPath = "/v2/shopping/flight-offers"

// Client searches the flight-offers endpoint. One call covers one date
// pair; rate limiting, the per-call timeout and the 429 retry discipline
// all live here so callers can fan out without coordinating.
type Client struct {
	baseURL       string
	timeout       time.Duration
	maxRetries    int
	retryAfterCap time.Duration
	limiter       *rate.Limiter
	httpClient    *http.Client
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryAfterCap time.Duration, rps float64, burst int) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryAfterCap <= 0 {
		retryAfterCap = 5 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       timeout,
		maxRetries:    maxRetries,
		retryAfterCap: retryAfterCap,
		limiter:       rate.NewLimiter(rate.Limit(rps), burst),
		httpClient:    &http.Client{},
	}
}

func (c *Client) SearchOffers(ctx context.Context, token string, query ports.FareQuery) ([]models.Offer, error) {
	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		offers, retryAfter, err := c.doSearch(ctx, token, reqURL)
		if err == nil {
			return offers, nil
		}
		lastErr = err

		var upstream *derr.UpstreamError
		if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusTooManyRequests {
			return nil, err
		}
		if attempt == c.maxRetries {
			break
		}

		select {
		case <-time.After(c.retryDelay(attempt, retryAfter)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func (c *Client) doSearch(ctx context.Context, token, reqURL string) ([]models.Offer, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, 0, fmt.Errorf("%w after %s", derr.ErrSearchTimeout, c.timeout)
		}
		return nil, 0, fmt.Errorf("flight offers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &derr.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload dto.FlightOffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decode flight offers response: %w", err)
	}

	return mappers.MapOffers(payload.Data), 0, nil
}

// retryDelay honors a capped server hint when present, otherwise backs off
// exponentially with jitter.
func (c *Client) retryDelay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		if hint > c.retryAfterCap {
			return c.retryAfterCap
		}
		return hint
	}

	base := 500 * time.Millisecond << attempt
	jitter := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
	delay := base + jitter
	if delay > c.retryAfterCap {
		return c.retryAfterCap
	}
	return delay
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (c *Client) buildURL(query ports.FareQuery) (string, error) {
	u, err := url.Parse(c.baseURL + offersPath)
	if err != nil {
		return "", fmt.Errorf("parse amadeus base url: %w", err)
	}

	adults := query.Adults
	if adults <= 0 {
		adults = 1
	}
	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	q := u.Query()
	q.Set("originLocationCode", strings.ToUpper(strings.TrimSpace(query.Origin)))
	q.Set("destinationLocationCode", strings.ToUpper(strings.TrimSpace(query.Destination)))
	q.Set("departureDate", query.DepartureDate)
	q.Set("returnDate", query.ReturnDate)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("travelClass", strings.ToUpper(strings.TrimSpace(query.TravelClass)))
	q.Set("currencyCode", strings.ToUpper(strings.TrimSpace(query.CurrencyCode)))
	q.Set("max", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
