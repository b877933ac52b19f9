package uuidsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds how much of the generator response is read.
const maxBodyBytes = 1 << 10

// Remote fetches a UUID from a plain-text generator API such as
// https://www.uuidgenerator.net/api/version1. No retries are attempted.
type Remote struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// NewRemote creates a Remote source. A nil client falls back to http.DefaultClient.
func NewRemote(client *http.Client, endpoint, userAgent string) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{client: client, endpoint: endpoint, userAgent: userAgent}
}

// NewUUID issues a GET and returns the trimmed response body.
func (r *Remote) NewUUID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build uuid request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch uuid: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch uuid: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read uuid body: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
