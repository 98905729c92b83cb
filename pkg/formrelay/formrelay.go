package formrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts contact-form submissions to an external relay endpoint
// (web3forms-style): the payload plus an access key, answered with a
// success/failure JSON envelope.
type Client struct {
	endpoint  string
	accessKey string
	http      *http.Client
}

// Result is the relay's response envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewClient builds a relay client. An empty access key yields a client whose
// Configured method reports false; callers decide how to degrade.
func NewClient(endpoint, accessKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:  endpoint,
		accessKey: accessKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the relay has credentials to submit with.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != "" && c.accessKey != ""
}

// Submit relays the form fields and returns the relay's verdict.
func (c *Client) Submit(ctx context.Context, fields map[string]string) (*Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("form relay not configured")
	}

	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["access_key"] = c.accessKey

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit relay request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}
	if resp.StatusCode >= 400 && result.Message == "" {
		result.Message = fmt.Sprintf("relay returned status %d", resp.StatusCode)
	}
	return &result, nil
}
