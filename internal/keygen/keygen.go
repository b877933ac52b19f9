// Package keygen provisions the IndexNow key file. It is idempotent: an
// existing key file short-circuits the run without network access.
package keygen

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/indexnow/internal/keyfile"
	"github.com/JakeFAU/indexnow/internal/metrics"
	"github.com/JakeFAU/indexnow/internal/uuidsource"
)

// Result describes what a run did.
type Result struct {
	Outcome string
	Key     string
	Path    string
	Err     error
}

// Provisioner ensures a key file exists in the public directory.
type Provisioner struct {
	publicDir string
	source    uuidsource.Source
	logger    *zap.Logger
}

// New creates a Provisioner.
func New(publicDir string, source uuidsource.Source, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{publicDir: publicDir, source: source, logger: logger}
}

// Run looks for a key file and creates one when none exists. Failures are
// logged and returned in the Result, never as a process-level error, and no
// file is written on any failure path.
func (p *Provisioner) Run(ctx context.Context) Result {
	result := p.run(ctx)
	metrics.ObserveKeygen(result.Outcome)
	metrics.MarkRun("keygen", time.Now())
	return result
}

func (p *Provisioner) run(ctx context.Context) Result {
	existing, err := keyfile.Find(p.publicDir)
	switch {
	case err == nil:
		p.logger.Info("IndexNow key file already exists",
			zap.String("path", existing.Path),
			zap.String("key", existing.Value),
		)
		return Result{Outcome: metrics.KeygenExisting, Key: existing.Value, Path: existing.Path}
	case !errors.Is(err, keyfile.ErrKeyNotFound):
		p.logger.Error("Failed to inspect public directory", zap.String("dir", p.publicDir), zap.Error(err))
		p.logger.Warn("IndexNow key file will not be created because of the error above.")
		return Result{Outcome: metrics.KeygenFailed, Err: err}
	}

	p.logger.Info("IndexNow key file not found; requesting a new UUID")
	raw, err := p.source.NewUUID(ctx)
	if err != nil {
		p.logger.Error("Failed to obtain UUID", zap.Error(err))
		p.logger.Warn("IndexNow key file will not be created because of the error above.")
		return Result{Outcome: metrics.KeygenFailed, Err: err}
	}
	key, err := keyfile.Validate(raw)
	if err != nil {
		p.logger.Error("Received UUID is not usable", zap.Error(err))
		p.logger.Warn("IndexNow key file will not be created because of the error above.")
		return Result{Outcome: metrics.KeygenFailed, Err: err}
	}
	p.logger.Info("Obtained new UUID", zap.String("key", key))

	path, err := keyfile.Write(p.publicDir, key)
	if err != nil {
		p.logger.Error("Failed to write IndexNow key file", zap.Error(err))
		return Result{Outcome: metrics.KeygenFailed, Key: key, Err: err}
	}
	p.logger.Info("Created IndexNow key file", zap.String("path", path), zap.String("content", key))
	return Result{Outcome: metrics.KeygenCreated, Key: key, Path: path}
}
