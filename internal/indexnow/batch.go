package indexnow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/indexnow/internal/metrics"
)

// MaxBatchSize is the protocol limit on urlList length.
const MaxBatchSize = 10000

// Pacer delays submissions. *ratelimit.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context, rawURL string) (time.Duration, error)
}

// Site identifies the submitting site and its verification key.
type Site struct {
	Host        string
	Key         string
	KeyLocation string
}

// Result summarizes a SubmitAll call.
type Result struct {
	Batches       int
	BatchesOK     int
	BatchesFailed int
	URLsAccepted  int
	// Interrupted is set when the context ended before every batch was
	// attempted. Unattempted batches are counted as failed.
	Interrupted bool
}

// Submitter splits URL lists into protocol-sized batches and posts each one.
type Submitter struct {
	client    *Client
	pacer     Pacer
	batchSize int
	logger    *zap.Logger
}

// NewSubmitter creates a Submitter. batchSize is clamped to 1..MaxBatchSize;
// a nil pacer disables pacing.
func NewSubmitter(client *Client, pacer Pacer, batchSize int, logger *zap.Logger) *Submitter {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{client: client, pacer: pacer, batchSize: batchSize, logger: logger}
}

// Chunk splits urls into consecutive slices of at most size elements.
func Chunk(urls []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatchSize
	}
	chunks := make([][]string, 0, (len(urls)+size-1)/size)
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		chunks = append(chunks, urls[start:end])
	}
	return chunks
}

// SubmitAll posts urls in batches. A failed batch is logged and does not
// stop the remaining batches; only context cancellation ends the loop early.
func (s *Submitter) SubmitAll(ctx context.Context, site Site, urls []string) Result {
	var result Result
	if len(urls) == 0 {
		s.logger.Info("No new or updated URLs to submit to IndexNow.")
		return result
	}

	chunks := Chunk(urls, s.batchSize)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			s.logger.Warn("Submission interrupted", zap.Int("remaining_batches", len(chunks)-i), zap.Error(ctx.Err()))
			result.BatchesFailed += len(chunks) - i
			result.Batches += len(chunks) - i
			result.Interrupted = true
			break
		}
		batchLogger := s.logger.With(
			zap.Int("batch", i+1),
			zap.Int("batches", len(chunks)),
			zap.Int("urls", len(chunk)),
		)
		if s.pacer != nil {
			if waited, err := s.pacer.Wait(ctx, s.client.Endpoint()); err != nil {
				batchLogger.Warn("Pacing wait aborted", zap.Error(err))
			} else if waited > time.Millisecond {
				batchLogger.Debug("Paced batch", zap.Duration("waited", waited))
			}
		}

		batchLogger.Info("Submitting batch to IndexNow")
		start := time.Now()
		status, err := s.client.Submit(ctx, Payload{
			Host:        site.Host,
			Key:         site.Key,
			KeyLocation: site.KeyLocation,
			URLList:     chunk,
		})
		elapsed := time.Since(start)
		result.Batches++
		metrics.ObserveBatch(len(chunk), err == nil, elapsed)

		if err != nil {
			result.BatchesFailed++
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				batchLogger.Error("IndexNow rejected batch",
					zap.Int("status", statusErr.StatusCode),
					zap.String("body", statusErr.Body),
				)
				continue
			}
			batchLogger.Error("Failed to submit batch to IndexNow", zap.Error(err))
			continue
		}
		result.BatchesOK++
		result.URLsAccepted += len(chunk)
		batchLogger.Info("Batch accepted by IndexNow", zap.Int("status", status), zap.Duration("elapsed", elapsed))
	}
	return result
}
