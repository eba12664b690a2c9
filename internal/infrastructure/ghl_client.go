package infrastructure

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"
	"attrgo/pkg/metrics"

	"golang.org/x/time/rate"
)

// GHLClient implements domain.CRMClient against the GoHighLevel API.
type GHLClient struct {
	client        *http.Client
	apiURL        string
	apiKey        string
	webhookSecret string
	logger        *logger.Logger
	metrics       *metrics.Metrics
	rateLimiter   *rate.Limiter
}

// NewGHLClient creates a rate-limited GoHighLevel client.
func NewGHLClient(apiURL, apiKey, webhookSecret string, timeout time.Duration, rps int, log *logger.Logger, m *metrics.Metrics) *GHLClient {
	return &GHLClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiURL:        apiURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		logger:        log,
		metrics:       m,
		rateLimiter:   rate.NewLimiter(rate.Limit(rps), 10),
	}
}

// SubmitLead forwards a captured lead, with its attribution payload, to GHL.
func (c *GHLClient) SubmitLead(ctx context.Context, lead domain.Lead) error {
	return c.post(ctx, "/leads", "ghl_leads", lead)
}

// TrackConversion forwards a conversion event to GHL.
func (c *GHLClient) TrackConversion(ctx context.Context, conversion domain.Conversion) error {
	return c.post(ctx, "/conversions", "ghl_conversions", conversion)
}

func (c *GHLClient) post(ctx context.Context, path, api string, body interface{}) error {
	if c.apiURL == "" {
		return fmt.Errorf("GHL API URL not configured")
	}

	start := time.Now()

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure(api, "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "json_marshal")
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "request_creation")
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	// Add HMAC signature if secret is provided
	if c.webhookSecret != "" {
		req.Header.Set("X-Signature", c.generateHMACSignature(payload))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "network_error")
		return fmt.Errorf("failed to call GHL: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordExternalAPICall(api, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return fmt.Errorf("GHL API returned status %d", resp.StatusCode)
	}

	c.metrics.RecordExternalAPICall(api, "success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"url":      c.apiURL + path,
		"duration": duration,
	}).Info("Successfully forwarded to GHL")

	return nil
}

// generates HMAC-SHA256 signature for the payload
func (c *GHLClient) generateHMACSignature(payload []byte) string {
	h := hmac.New(sha256.New, []byte(c.webhookSecret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
