package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/JakeFAU/indexnow/internal/config"
	"github.com/JakeFAU/indexnow/internal/publisher"
	"github.com/JakeFAU/indexnow/internal/sentcache"
	"github.com/JakeFAU/indexnow/internal/uuidsource"
)

// MockPublisher mocks the publisher.Publisher interface.
type MockPublisher struct {
	mock.Mock
}

// Publish satisfies the publisher.Publisher interface for the mock.
func (m *MockPublisher) Publish(ctx context.Context, payload any) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// Close satisfies the publisher.Publisher interface for the mock.
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Site:     config.SiteConfig{BaseURL: "https://example.com", PublicDir: filepath.Join(dir, "public")},
		Data:     config.DataConfig{VideosPath: filepath.Join(dir, "videos.json")},
		Cache:    config.CacheConfig{Backend: config.CacheBackendLocal, Path: filepath.Join(dir, "cache.json")},
		UUID:     config.UUIDConfig{Source: config.UUIDSourceRemote, Endpoint: "https://uuid.example/api"},
		IndexNow: config.IndexNowConfig{Endpoint: "https://api.indexnow.org/IndexNow", BatchSize: 100},
		HTTP:     config.HTTPConfig{TimeoutSeconds: 5, UserAgent: "test"},
	}
}

func TestNewApp_LocalCache(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	a, err := NewApp(context.Background(), cfg, zap.NewNop(), Options{})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.GetCache(), "cache is built on demand")
	assert.IsType(t, &uuidsource.Remote{}, a.UUIDSource())
	assert.NotNil(t, a.GetLogger())
	assert.Equal(t, cfg, a.GetConfig())
	assert.NotNil(t, a.Provisioner())

	n, err := a.Notifier(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, n)
	assert.IsType(t, &sentcache.LocalStore{}, a.GetCache())
	assert.IsType(t, publisher.Noop{}, a.GetPublisher())
}

func TestNewApp_MemoryCacheAndLocalUUID(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Cache.Backend = config.CacheBackendMemory
	cfg.UUID.Source = config.UUIDSourceLocal

	a, err := NewApp(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Notifier(context.Background(), true)
	require.NoError(t, err)
	assert.IsType(t, &sentcache.MemoryStore{}, a.GetCache())
	assert.IsType(t, &uuidsource.Local{}, a.UUIDSource())
}

func TestNewApp_GCSCache(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Cache.Backend = config.CacheBackendGCS
	cfg.Cache.GCSBucket = "bucket"
	cfg.Cache.GCSObject = "cache.json"

	factory := func(ctx context.Context) (*storage.Client, error) {
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	a, err := NewApp(context.Background(), cfg, zap.NewNop(), Options{GCSClient: factory})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Notifier(context.Background(), false)
	require.NoError(t, err)
	store, ok := a.GetCache().(*sentcache.GCSStore)
	require.True(t, ok)
	assert.Equal(t, "gs://bucket/cache.json", store.URI())
}

func TestApp_NotifierErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		mutate        func(*config.Config, *Options)
		expectedError string
	}{
		{
			name: "GCS client failure",
			mutate: func(c *config.Config, o *Options) {
				c.Cache.Backend = config.CacheBackendGCS
				c.Cache.GCSBucket = "bucket"
				c.Cache.GCSObject = "cache.json"
				o.GCSClient = func(context.Context) (*storage.Client, error) {
					return nil, errors.New("no credentials")
				}
			},
			expectedError: "failed to create storage client",
		},
		{
			name: "Unknown cache backend",
			mutate: func(c *config.Config, _ *Options) {
				c.Cache.Backend = "redis"
			},
			expectedError: "unknown cache backend: redis",
		},
		{
			name: "Publisher failure",
			mutate: func(c *config.Config, o *Options) {
				c.PubSub.ProjectID = "proj"
				c.PubSub.TopicName = "runs"
				o.Publisher = func(context.Context, string, string) (publisher.Publisher, error) {
					return nil, errors.New("permission denied")
				}
			},
			expectedError: "failed to initialize publisher",
		},
		{
			name: "Missing base URL",
			mutate: func(c *config.Config, _ *Options) {
				c.Site.BaseURL = ""
			},
			expectedError: "site.base_url",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig(t)
			opts := Options{}
			tc.mutate(&cfg, &opts)

			a, err := NewApp(context.Background(), cfg, zap.NewNop(), opts)
			require.NoError(t, err, "notify-only settings must not break app construction")
			t.Cleanup(a.Close)
			assert.NotNil(t, a.Provisioner())

			_, err = a.Notifier(context.Background(), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedError)
		})
	}
}

func TestApp_CloseReleasesPublisherAndWritesMetrics(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.PubSub.ProjectID = "proj"
	cfg.PubSub.TopicName = "runs"
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "indexnow.prom")

	pub := new(MockPublisher)
	pub.On("Close").Return(errors.New("already closed")).Once()
	opts := Options{
		Publisher: func(context.Context, string, string) (publisher.Publisher, error) {
			return pub, nil
		},
	}

	a, err := NewApp(context.Background(), cfg, zap.NewNop(), opts)
	require.NoError(t, err)
	_, err = a.Notifier(context.Background(), false)
	require.NoError(t, err)
	assert.Same(t, pub, a.GetPublisher())

	a.Close()

	pub.AssertExpectations(t)
	_, err = os.Stat(cfg.Metrics.Textfile)
	assert.NoError(t, err)
}

func TestApp_CloseWithoutNotifier(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "indexnow.prom")

	a, err := NewApp(context.Background(), cfg, zap.NewNop(), Options{})
	require.NoError(t, err)
	a.Close()

	_, err = os.Stat(cfg.Metrics.Textfile)
	assert.NoError(t, err)
}
