package uuidsource

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Local generates random (version 4) UUIDs without touching the network.
type Local struct{}

// NewLocal creates a Local source.
func NewLocal() *Local {
	return &Local{}
}

// NewUUID returns a UUIDv4 string.
func (Local) NewUUID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid4: %w", err)
	}
	return id.String(), nil
}
