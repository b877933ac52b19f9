// Package indexnow implements the client side of the IndexNow protocol:
// keyed JSON POSTs announcing changed URLs to a search-engine endpoint.
package indexnow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultEndpoint is the shared IndexNow endpoint that fans out to all
// participating search engines.
const DefaultEndpoint = "https://api.indexnow.org/IndexNow"

// maxErrorBody bounds how much of a rejection body is kept for logging.
const maxErrorBody = 4 << 10

// Payload is the JSON body of a bulk submission.
type Payload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexnow rejected submission: %s", e.Status)
}

// Client posts payloads to one endpoint. It never retries.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

// NewClient creates a Client. A nil httpClient falls back to http.DefaultClient.
func NewClient(httpClient *http.Client, endpoint, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{httpClient: httpClient, endpoint: endpoint, userAgent: userAgent}
}

// Endpoint returns the URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts one payload and returns the response status code. Any 2xx
// is success; other statuses produce a *StatusError carrying the body.
func (c *Client) Submit(ctx context.Context, payload Payload) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post submission: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		respBody = []byte(fmt.Sprintf("<unreadable body: %v>", readErr))
	}
	return resp.StatusCode, &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(respBody),
	}
}
