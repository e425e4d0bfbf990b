// Package store holds normalized observations in memory, per station.
// Telemetry is never persisted; the service rebuilds its window from the
// source topic on restart.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

type stationHistory struct {
	revision uint64
	records  []domain.Observation
}

// MemoryStore is a concurrency-safe in-memory observation store with
// optional retention limits. Every append bumps the station's revision so
// derived-view caches can key on it.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*stationHistory

	maxHistory int           // max records per station, <= 0 means unlimited
	maxAge     time.Duration // max record age, <= 0 means unlimited
}

// New creates a MemoryStore with the given retention limits.
func New(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*stationHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Append adds a batch of observations, grouped by station, and enforces
// retention. Each touched station's revision is bumped exactly once per
// call.
func (s *MemoryStore) Append(batch []domain.Observation) {
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]struct{}, 1)
	for _, obs := range batch {
		h, ok := s.data[obs.Station]
		if !ok {
			h = &stationHistory{}
			s.data[obs.Station] = h
		}
		h.records = append(h.records, obs)
		touched[obs.Station] = struct{}{}
	}

	for station := range touched {
		h := s.data[station]
		h.records = s.enforceRetention(h.records)
		h.revision++
	}
}

// LoadBatch implements the pipeline loader by appending the batch.
func (s *MemoryStore) LoadBatch(_ context.Context, batch []domain.Observation) error {
	s.Append(batch)
	return nil
}

// Records returns a copy of a station's history. Unknown stations yield an
// empty slice.
func (s *MemoryStore) Records(station string) []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[station]
	if !ok {
		return nil
	}
	out := make([]domain.Observation, len(h.records))
	copy(out, h.records)
	return out
}

// Revision returns the station's append counter; 0 for unknown stations.
func (s *MemoryStore) Revision(station string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[station]
	if !ok {
		return 0
	}
	return h.revision
}

// Stations returns the sorted ids of stations with any data.
func (s *MemoryStore) Stations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for station := range s.data {
		out = append(out, station)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) enforceRetention(records []domain.Observation) []domain.Observation {
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		kept := records[:0]
		for _, r := range records {
			if r.Timestamp.Before(cutoff) {
				continue
			}
			kept = append(kept, r)
		}
		records = kept
	}
	if s.maxHistory > 0 && len(records) > s.maxHistory {
		records = records[len(records)-s.maxHistory:]
	}
	return records
}
