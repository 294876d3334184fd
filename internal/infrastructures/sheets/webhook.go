package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
)

// WebhookClient posts a reduced run summary to the spreadsheet webhook.
// The webhook's response is never interpreted beyond its status code.
type WebhookClient struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewWebhookClient(url, secret string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookClient{
		url:        strings.TrimSpace(url),
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type summaryPayload struct {
	Secret      string            `json:"secret"`
	GeneratedAt time.Time         `json:"generatedAt"`
	BestOffer   *models.BestOffer `json:"bestOffer"`
}

func (c *WebhookClient) Send(ctx context.Context, generatedAt time.Time, best *models.BestOffer) error {
	if c.url == "" {
		return fmt.Errorf("webhook url is empty")
	}

	body, err := json.Marshal(summaryPayload{
		Secret:      c.secret,
		GeneratedAt: generatedAt,
		BestOffer:   best,
	})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook status: %s", resp.Status)
	}

	return nil
}
