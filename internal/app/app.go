// Package app initializes and holds the services shared by the commands,
// acting as a small dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/indexnow/internal/clock"
	"github.com/JakeFAU/indexnow/internal/config"
	"github.com/JakeFAU/indexnow/internal/indexnow"
	"github.com/JakeFAU/indexnow/internal/keygen"
	"github.com/JakeFAU/indexnow/internal/metrics"
	"github.com/JakeFAU/indexnow/internal/notifier"
	"github.com/JakeFAU/indexnow/internal/policy/ratelimit"
	"github.com/JakeFAU/indexnow/internal/publisher"
	pubsubpublisher "github.com/JakeFAU/indexnow/internal/publisher/pubsub"
	"github.com/JakeFAU/indexnow/internal/sentcache"
	"github.com/JakeFAU/indexnow/internal/uuidsource"
)

// GCSClientFactory creates storage clients. Swapped out in tests.
type GCSClientFactory func(ctx context.Context) (*storage.Client, error)

// PublisherFactory creates the run-report publisher. Swapped out in tests.
type PublisherFactory func(ctx context.Context, projectID, topicID string) (publisher.Publisher, error)

// DefaultGCSClientFactory uses application default credentials.
func DefaultGCSClientFactory(ctx context.Context) (*storage.Client, error) {
	return storage.NewClient(ctx)
}

// DefaultPublisherFactory connects to Google Cloud Pub/Sub.
func DefaultPublisherFactory(ctx context.Context, projectID, topicID string) (publisher.Publisher, error) {
	return pubsubpublisher.New(ctx, projectID, topicID)
}

// Options overrides how external clients are built.
type Options struct {
	GCSClient GCSClientFactory
	Publisher PublisherFactory
	Clock     clock.Clock
}

// App holds all the shared services for one command invocation. The cache
// and publisher are only built when a notifier is requested.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	httpClient *http.Client
	opts       Options
	cache      sentcache.Store
	publisher  publisher.Publisher
	gcsClient  *storage.Client
	clock      clock.Clock
}

// NewApp builds the services shared by every command.
func NewApp(_ context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.GCSClient == nil {
		opts.GCSClient = DefaultGCSClientFactory
	}
	if opts.Publisher == nil {
		opts.Publisher = DefaultPublisherFactory
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	metrics.Init()

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		opts:       opts,
		clock:      opts.Clock,
	}, nil
}

// initNotifyServices builds the sent-url cache and the run-report publisher.
// It fails fast when a configured backend cannot be initialized.
func (a *App) initNotifyServices(ctx context.Context) error {
	if a.publisher != nil {
		return nil
	}

	switch a.cfg.Cache.Backend {
	case config.CacheBackendGCS:
		client, err := a.opts.GCSClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		store, err := sentcache.NewGCS(client, sentcache.GCSConfig{Bucket: a.cfg.Cache.GCSBucket, Object: a.cfg.Cache.GCSObject})
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.logger.Info("Using GCS sent-url cache", zap.String("uri", store.URI()))
		a.gcsClient = client
		a.cache = store
	case config.CacheBackendMemory:
		a.logger.Info("Using in-memory sent-url cache. Nothing will persist between runs.")
		a.cache = sentcache.NewMemory()
	case config.CacheBackendLocal:
		store, err := sentcache.NewLocal(a.cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.logger.Debug("Using local sent-url cache", zap.String("path", store.Path()))
		a.cache = store
	default:
		return fmt.Errorf("unknown cache backend: %s", a.cfg.Cache.Backend)
	}

	if a.cfg.PubSub.TopicName == "" {
		a.publisher = publisher.Noop{}
		return nil
	}
	pub, err := a.opts.Publisher(ctx, a.cfg.PubSub.ProjectID, a.cfg.PubSub.TopicName)
	if err != nil {
		return fmt.Errorf("failed to initialize publisher: %w", err)
	}
	a.logger.Info("Publishing run reports", zap.String("topic", a.cfg.PubSub.TopicName))
	a.publisher = pub
	return nil
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetCache exposes the sent-url cache. It is nil until Notifier succeeds.
func (a *App) GetCache() sentcache.Store {
	return a.cache
}

// GetPublisher returns the run-report publisher. It is nil until Notifier
// succeeds.
func (a *App) GetPublisher() publisher.Publisher {
	return a.publisher
}

// UUIDSource builds the configured key source.
func (a *App) UUIDSource() uuidsource.Source {
	if a.cfg.UUID.Source == config.UUIDSourceLocal {
		return uuidsource.NewLocal()
	}
	return uuidsource.NewRemote(a.httpClient, a.cfg.UUID.Endpoint, a.cfg.HTTP.UserAgent)
}

// Provisioner builds the key provisioner.
func (a *App) Provisioner() *keygen.Provisioner {
	return keygen.New(a.cfg.Site.PublicDir, a.UUIDSource(), a.logger.Named("keygen"))
}

// Notifier builds the URL notifier along with its cache and publisher.
// Callers must have run cfg.ValidateNotify.
func (a *App) Notifier(ctx context.Context, dryRun bool) (*notifier.Notifier, error) {
	host, err := a.cfg.Host()
	if err != nil {
		return nil, err
	}
	if err := a.initNotifyServices(ctx); err != nil {
		return nil, err
	}
	client := indexnow.NewClient(a.httpClient, a.cfg.IndexNow.Endpoint, a.cfg.HTTP.UserAgent)
	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: a.cfg.IndexNow.BatchesPerSecond})
	submitter := indexnow.NewSubmitter(client, limiter, a.cfg.IndexNow.BatchSize, a.logger.Named("indexnow"))
	return notifier.New(
		notifier.Config{
			BaseURL:    a.cfg.Site.BaseURL,
			Host:       host,
			PublicDir:  a.cfg.Site.PublicDir,
			VideosPath: a.cfg.Data.VideosPath,
			DryRun:     dryRun,
		},
		a.cache,
		submitter,
		a.publisher,
		a.clock,
		a.logger.Named("notifier"),
	), nil
}

// Close releases clients and flushes metrics. Commands defer it so it also
// runs when they fail.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Error closing publisher", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("Error closing storage client", zap.Error(err))
		}
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("Error writing metrics textfile", zap.Error(err))
		} else {
			a.logger.Debug("Wrote metrics textfile", zap.String("path", path))
		}
	}
	// Best effort; stderr sync fails on some terminals.
	_ = a.logger.Sync()
}
