package uuidsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	goUUID "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteNewUUID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "indexnow-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("6ba7b810-9dad-11d1-80b4-00c04fd430c8\r\n"))
	}))
	t.Cleanup(srv.Close)

	src := NewRemote(srv.Client(), srv.URL, "indexnow-test")
	got, err := src.NewUUID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", got)
}

func TestRemoteNewUUIDStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := NewRemote(srv.Client(), srv.URL, "").NewUUID(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRemoteNewUUIDTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemote(nil, url, "").NewUUID(context.Background())
	require.Error(t, err)
}

// TestLocalNewUUID ensures generated IDs are unique random UUIDs.
func TestLocalNewUUID(t *testing.T) {
	t.Parallel()

	src := NewLocal()
	id1, err := src.NewUUID(context.Background())
	require.NoError(t, err)
	id2, err := src.NewUUID(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	parsed, err := goUUID.Parse(id1)
	require.NoError(t, err)
	assert.Equal(t, goUUID.Version(4), parsed.Version())
}
