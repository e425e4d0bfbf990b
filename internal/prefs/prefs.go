// Package prefs round-trips the dashboard's single persisted preference, the
// last-chosen time interval, through an injected key/value capability. The
// derivation core never touches storage directly; it only consumes intervals
// reconstructed here, which may be corrupted and are then discarded in favor
// of a computed default.
package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

// IntervalKey is the single fixed key the selected interval lives under.
const IntervalKey = "dashboard.selected-interval"

// KV is the injected key/value capability. Implementations must be safe for
// concurrent use.
type KV interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
}

// Store reads and writes the interval preference through a KV backend.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// NewStore creates a preference store over the given backend.
func NewStore(kv KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// storedInterval is the on-disk shape: an ISO-8601 pair.
type storedInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SaveInterval persists the interval as an ISO-8601 pair under IntervalKey.
func (s *Store) SaveInterval(iv domain.Interval) error {
	if !iv.Valid() {
		return fmt.Errorf("refusing to save invalid interval %v", iv)
	}
	data, err := json.Marshal(storedInterval{
		Start: iv.Start.Format(time.RFC3339),
		End:   iv.End.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode interval preference: %w", err)
	}
	return s.kv.Set(IntervalKey, string(data))
}

// LoadInterval reconstructs the stored interval. Corrupted or partial values
// are discarded with a warning and ok=false; the caller falls back to a
// computed default.
func (s *Store) LoadInterval() (iv domain.Interval, ok bool) {
	raw, ok := s.kv.Get(IntervalKey)
	if !ok {
		return domain.Interval{}, false
	}

	var stored storedInterval
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("discarding corrupted interval preference", "error", err)
		return domain.Interval{}, false
	}
	iv, err := domain.ParseInterval(stored.Start, stored.End)
	if err != nil {
		s.logger.Warn("discarding unparseable interval preference", "error", err)
		return domain.Interval{}, false
	}
	return iv, true
}
