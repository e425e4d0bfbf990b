// Package pipeline runs the ingest loop: extract raw readings from the
// source topic, normalize them, append them to the station store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lilblessings/White-River-Basin/internal/domain"
	"github.com/lilblessings/White-River-Basin/internal/observability"
)

// BatchExtractor reads up to batchSize raw readings from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer normalizes a raw reading into an observation.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Observation, error)
}

// BatchLoader appends normalized observations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch []domain.Observation) error
}

// Retry delays double from 200ms up to a 5s ceiling. Any successful extract
// resets the sequence, so a recovered broker is drained at full speed.
const (
	initialRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

// Pipeline orchestrates the extract-normalize-store loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has stored at least one
// batch, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not stored any readings yet")
	}
	return nil
}

// Run executes the ingest loop until the context is cancelled. Transient
// extract and store failures are retried with backoff; cancellation is the
// only way out and is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := initialRetryDelay
	for ctx.Err() == nil {
		err := p.ingestOnce(ctx)
		if err == nil {
			delay = initialRetryDelay
			continue
		}
		if ctx.Err() != nil {
			break
		}

		p.logger.Error("ingest cycle failed", "error", err, "retry_in", delay)
		if !waitFor(ctx, delay) {
			break
		}
		delay = min(delay*2, maxRetryDelay)
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// ingestOnce pulls one batch, normalizes it, and appends the survivors to
// the store. Offsets commit per message: immediately for readings that fail
// normalization (they will never parse differently), and after a successful
// store for the rest.
func (p *Pipeline) ingestOnce(ctx context.Context) error {
	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}

	started := time.Now()
	p.metrics.RecordsConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	observations := make([]domain.Observation, 0, len(raws))
	pending := make([]domain.RawEvent, 0, len(raws))
	for _, raw := range raws {
		obs, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("invalid reading, skipping",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.InvalidRecords.Inc()
			p.commit(ctx, raw)
			continue
		}
		if obs.TimestampSubstituted {
			p.metrics.DateFallbacks.Inc()
		}
		observations = append(observations, obs)
		pending = append(pending, raw)
	}
	if len(observations) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, observations); err != nil {
		return fmt.Errorf("store %d observations: %w", len(observations), err)
	}
	p.metrics.RecordsStored.Add(float64(len(observations)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(started).Seconds())
	p.ready.Store(true)

	for _, raw := range pending {
		p.commit(ctx, raw)
	}
	return nil
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// waitFor sleeps for d unless the context ends first. Reports whether the
// full duration elapsed.
func waitFor(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
