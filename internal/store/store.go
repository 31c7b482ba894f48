// Package store holds the enriched station collection in memory, backed
// by a JSON snapshot file that is rewritten wholesale on every merge.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/models"
)

// Mirror is an optional secondary location for the snapshot blob.
type Mirror interface {
	Save(ctx context.Context, data []byte) error
	Fetch(ctx context.Context) ([]byte, error)
}

type Options struct {
	Path   string
	Mirror Mirror
}

// Store is the source of truth for queries. Reads never block on
// snapshot file I/O; merge + write is serialized by a single writer lock.
type Store struct {
	mu       sync.RWMutex
	stations map[string]models.Station

	persistMu sync.Mutex
	path      string
	mirror    Mirror
}

func New(opts Options) *Store {
	return &Store{
		stations: make(map[string]models.Station),
		path:     opts.Path,
		mirror:   opts.Mirror,
	}
}

// Load reads the snapshot. A missing or malformed file is not fatal: the
// store starts empty with a warning. When the local file is absent and a
// mirror is configured, the mirror is tried first.
func (s *Store) Load(ctx context.Context) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) && s.mirror != nil {
		data, err = s.mirror.Fetch(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("no station snapshot, starting empty")
		return
	}

	var stations []models.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		parseErr := models.NewParseError("station snapshot", err)
		log.Warn().Err(parseErr).Str("path", s.path).Msg("malformed station snapshot, starting empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = make(map[string]models.Station, len(stations))
	for _, st := range stations {
		s.stations[st.UUID] = st
	}
	log.Info().Int("stations", len(stations)).Msg("loaded station snapshot")
}

// Snapshot returns a copy of all stations ordered by UUID. The copy is
// safe to decorate; the stored records are never handed out directly.
func (s *Store) Snapshot() []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Station, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, st.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out
}

// Get returns one station by UUID.
func (s *Store) Get(uuid string) (models.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stations[uuid]
	if !ok {
		return models.Station{}, false
	}
	return st.Clone(), true
}

// Count returns the number of stored stations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stations)
}

// ReplaceAll swaps the whole collection.
func (s *Store) ReplaceAll(stations []models.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = make(map[string]models.Station, len(stations))
	for _, st := range stations {
		s.stations[st.UUID] = st
	}
}

// Upsert inserts or replaces one station.
func (s *Store) Upsert(station models.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[station.UUID] = station
}

// EvictMissing removes every station whose UUID is not in current and
// returns the number of evicted records.
func (s *Store) EvictMissing(current []string) int {
	keep := make(map[string]struct{}, len(current))
	for _, uuid := range current {
		keep[uuid] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for uuid := range s.stations {
		if _, ok := keep[uuid]; !ok {
			delete(s.stations, uuid)
			evicted++
		}
	}
	return evicted
}

// UpsertAndPersist merges one station and writes the snapshot before
// returning, so the station's work is durable before the next one is
// processed. Concurrent callers are serialized by the writer lock.
func (s *Store) UpsertAndPersist(ctx context.Context, station models.Station) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.Upsert(station)
	return s.persistLocked(ctx)
}

// Persist writes the full snapshot.
func (s *Store) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling station snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing station snapshot: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.Save(ctx, data); err != nil {
			// Local snapshot stays authoritative.
			log.Error().Err(err).Msg("failed to mirror station snapshot")
		}
	}
	return nil
}
