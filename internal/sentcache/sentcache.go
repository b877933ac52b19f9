// Package sentcache persists the list of URLs submitted on the previous run.
//
// The cache is a JSON array of strings. It is replaced wholesale on every
// save, never merged.
package sentcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound reports that no cache has been written yet.
var ErrNotFound = errors.New("sent-url cache not found")

// Store loads and replaces the sent-URL list.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, urls []string) error
}

// Encode renders urls as a compact JSON array; nil encodes as [].
func Encode(urls []string) ([]byte, error) {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return nil, fmt.Errorf("encode sent-url cache: %w", err)
	}
	return data, nil
}

// Decode parses a cache payload. Anything other than a JSON array of
// strings is an error.
func Decode(data []byte) ([]string, error) {
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("decode sent-url cache: %w", err)
	}
	if urls == nil {
		return nil, fmt.Errorf("decode sent-url cache: payload is not an array")
	}
	return urls, nil
}
