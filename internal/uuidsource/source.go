// Package uuidsource provides the places a fresh IndexNow key can come from.
package uuidsource

import "context"

// Source yields a raw UUID string. Callers validate the result.
type Source interface {
	NewUUID(ctx context.Context) (string, error)
}
