package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

func obs(station string, ts time.Time) domain.Observation {
	return domain.Observation{Station: station, Timestamp: ts}
}

func TestMemoryStore_AppendAndRead(t *testing.T) {
	s := New(0, 0)
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	s.Append([]domain.Observation{
		obs("norfork", base),
		obs("norfork", base.Add(time.Hour)),
		obs("bull-shoals", base),
	})

	assert.Len(t, s.Records("norfork"), 2)
	assert.Len(t, s.Records("bull-shoals"), 1)
	assert.Empty(t, s.Records("unknown"))
	assert.Equal(t, []string{"bull-shoals", "norfork"}, s.Stations())
}

func TestMemoryStore_RevisionBumpsPerAppend(t *testing.T) {
	s := New(0, 0)
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, uint64(0), s.Revision("norfork"))

	s.Append([]domain.Observation{obs("norfork", base), obs("norfork", base.Add(time.Hour))})
	assert.Equal(t, uint64(1), s.Revision("norfork"))

	s.Append([]domain.Observation{obs("norfork", base.Add(2 * time.Hour))})
	assert.Equal(t, uint64(2), s.Revision("norfork"))

	// Untouched stations keep their revision.
	assert.Equal(t, uint64(0), s.Revision("bull-shoals"))
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	s := New(0, 0)
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s.Append([]domain.Observation{obs("norfork", base)})

	got := s.Records("norfork")
	require.Len(t, got, 1)
	got[0].Station = "mutated"

	assert.Equal(t, "norfork", s.Records("norfork")[0].Station)
}

func TestMemoryStore_MaxHistory(t *testing.T) {
	s := New(2, 0)
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	s.Append([]domain.Observation{
		obs("norfork", base),
		obs("norfork", base.Add(time.Hour)),
		obs("norfork", base.Add(2*time.Hour)),
	})

	got := s.Records("norfork")
	require.Len(t, got, 2)
	assert.Equal(t, base.Add(time.Hour), got[0].Timestamp)
	assert.Equal(t, base.Add(2*time.Hour), got[1].Timestamp)
}

func TestMemoryStore_MaxAge(t *testing.T) {
	s := New(0, time.Hour)

	s.Append([]domain.Observation{
		obs("norfork", time.Now().Add(-2*time.Hour)),
		obs("norfork", time.Now()),
	})

	got := s.Records("norfork")
	require.Len(t, got, 1)
}
