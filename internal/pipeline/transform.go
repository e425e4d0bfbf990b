package pipeline

import (
	"context"
	"log/slog"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

// ReadingTransformer implements Transformer using the domain normalizer.
type ReadingTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReadingTransformer.
func NewTransformer(logger *slog.Logger) *ReadingTransformer {
	return &ReadingTransformer{logger: logger}
}

// Transform normalizes one raw reading. Rows without a station or date are
// rejected; rows with malformed timestamps come through flagged, with a
// warning logged here so the soft-fail stays visible.
func (t *ReadingTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Observation, error) {
	obs, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.Observation{}, err
	}

	if obs.TimestampSubstituted {
		t.logger.Warn("malformed timestamp, substituted current moment",
			"station", obs.Station,
			"topic", raw.Topic,
			"offset", raw.Offset,
		)
	}
	return obs, nil
}
