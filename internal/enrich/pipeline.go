// Package enrich orchestrates one enrichment run: fetch the registry
// catalog, geocode every station with coordinates in all configured
// languages, resolve drainage basins and curated alternatives, and merge
// the result into the station store.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/alias"
	"github.com/hydrodata/pegeldict/internal/geocode"
	"github.com/hydrodata/pegeldict/internal/models"
)

// Registry fetches the raw station catalog.
type Registry interface {
	FetchStations(ctx context.Context) ([]models.Station, error)
}

// Geocoder resolves coordinates to an administrative address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64, language string) (geocode.Address, error)
}

// BasinLookup resolves coordinates to a drainage-basin name.
type BasinLookup interface {
	Resolve(lat, lon float64) string
}

// AliasTable returns curated alternative names for a canonical term.
type AliasTable interface {
	Alternatives(category alias.Category, term string) []string
}

// Store is the pipeline's view of the station store.
type Store interface {
	Get(uuid string) (models.Station, bool)
	EvictMissing(current []string) int
	UpsertAndPersist(ctx context.Context, station models.Station) error
	Persist(ctx context.Context) error
}

const DefaultBaselineLanguage = "de"

type Options struct {
	Registry Registry
	Geocoder Geocoder
	Basins   BasinLookup
	Aliases  AliasTable
	Store    Store

	// BaselineLanguage supplies the canonical values; Languages are the
	// additional languages whose differing values become alternatives.
	BaselineLanguage string
	Languages        []string
}

type Pipeline struct {
	registry  Registry
	geocoder  Geocoder
	basins    BasinLookup
	aliases   AliasTable
	store     Store
	baseline  string
	languages []string
}

func New(opts Options) *Pipeline {
	if opts.BaselineLanguage == "" {
		opts.BaselineLanguage = DefaultBaselineLanguage
	}
	return &Pipeline{
		registry:  opts.Registry,
		geocoder:  opts.Geocoder,
		basins:    opts.Basins,
		aliases:   opts.Aliases,
		store:     opts.Store,
		baseline:  opts.BaselineLanguage,
		languages: opts.Languages,
	}
}

// Run executes one enrichment pass. A fetch failure aborts the run with
// the store untouched; per-station failures are contained and never fail
// the run.
func (p *Pipeline) Run(ctx context.Context) error {
	log.Info().Msg("start fetching stations")

	fetched, err := p.registry.FetchStations(ctx)
	if err != nil {
		return fmt.Errorf("fetching station list: %w", err)
	}

	uuids := make([]string, len(fetched))
	for i, st := range fetched {
		uuids[i] = st.UUID
	}
	if evicted := p.store.EvictMissing(uuids); evicted > 0 {
		log.Info().Int("evicted", evicted).Msg("removed stations absent from registry fetch")
		if err := p.store.Persist(ctx); err != nil {
			log.Error().Err(err).Msg("failed to persist store after eviction")
		}
	}

	var wg sync.WaitGroup
	enriched := 0
	for _, st := range fetched {
		if !st.HasCoordinates() {
			p.handleBareStation(ctx, st)
			continue
		}
		enriched++
		wg.Add(1)
		go func(st models.Station) {
			defer wg.Done()
			p.enrichStation(ctx, st)
		}(st)
	}
	wg.Wait()

	log.Info().
		Int("fetched", len(fetched)).
		Int("enriched", enriched).
		Msg("finished fetching stations")
	return nil
}

// handleBareStation deals with a station without coordinates: a known
// station keeps its record (registry fields refreshed, enrichment kept),
// an unknown one is dropped from the batch. No geocode call is issued
// either way.
func (p *Pipeline) handleBareStation(ctx context.Context, st models.Station) {
	prev, known := p.store.Get(st.UUID)
	if !known {
		log.Warn().Str("station", st.Shortname).Msg("has no coordinates")
		return
	}
	if err := p.store.UpsertAndPersist(ctx, carryEnrichment(st, prev)); err != nil {
		log.Error().Err(err).Str("station", st.Shortname).Msg("failed to persist station")
	}
}

func (p *Pipeline) enrichStation(ctx context.Context, st models.Station) {
	enriched, err := p.enrich(ctx, st)
	if err != nil {
		log.Warn().Err(err).Str("station", st.Shortname).Msg("enrichment failed")
		// Keep whatever enrichment the station had; registry fields
		// stay current either way.
		if prev, known := p.store.Get(st.UUID); known {
			enriched = carryEnrichment(st, prev)
		} else {
			enriched = st
		}
	}

	if err := p.store.UpsertAndPersist(ctx, enriched); err != nil {
		log.Error().Err(err).Str("station", st.Shortname).Msg("failed to persist station")
	}
}

// enrich fans out one reverse geocode per language, joins the results and
// derives the enriched record. Any failed language call fails the whole
// station.
func (p *Pipeline) enrich(ctx context.Context, st models.Station) (models.Station, error) {
	lat, lon := *st.Latitude, *st.Longitude

	languages := append([]string{p.baseline}, p.languages...)
	addresses := make([]geocode.Address, len(languages))
	errs := make([]error, len(languages))

	var wg sync.WaitGroup
	for i, language := range languages {
		wg.Add(1)
		go func(i int, language string) {
			defer wg.Done()
			addresses[i], errs[i] = p.geocoder.Reverse(ctx, lat, lon, language)
		}(i, language)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return st, fmt.Errorf("reverse geocoding (%s): %w", languages[i], err)
		}
	}

	baseline := addresses[0]
	country := models.Field{Value: baseline.Country}
	land := models.Field{Value: firstNonEmpty(baseline.State, baseline.County, baseline.City)}
	kreis := models.Field{Value: firstNonEmpty(baseline.County, baseline.City)}
	city := models.Field{Value: baseline.City}

	for _, addr := range addresses[1:] {
		country.AddAlternative(addr.Country)
		land.AddAlternative(firstNonEmpty(addr.State, addr.County, addr.City))
		kreis.AddAlternative(firstNonEmpty(addr.County, addr.City))
		city.AddAlternative(addr.City)
	}

	for _, f := range []*models.Field{&country, &land, &kreis, &city} {
		if alt := transliterate(f.Value); alt != "" {
			f.AddAlternative(alt)
		}
	}

	basin := models.Field{Value: p.basins.Resolve(lat, lon)}
	if basin.HasValue() {
		for _, alt := range p.aliases.Alternatives(alias.CategoryBasin, basin.Value) {
			basin.AddAlternative(alt)
		}
	}

	for _, alt := range p.aliases.Alternatives(alias.CategoryDistrict, kreis.Value) {
		kreis.AddAlternative(alt)
	}

	st.Country = country
	st.Land = land
	st.Kreis = kreis
	st.City = city
	st.Einzugsgebiet = basin
	st.WaterAlternatives = p.aliases.Alternatives(alias.CategoryWater, st.Water.Longname)
	return st, nil
}

// carryEnrichment keeps fresh registry fields and the previously stored
// enrichment.
func carryEnrichment(fresh, prev models.Station) models.Station {
	fresh.Country = prev.Country
	fresh.Land = prev.Land
	fresh.Kreis = prev.Kreis
	fresh.City = prev.City
	fresh.Einzugsgebiet = prev.Einzugsgebiet
	fresh.WaterAlternatives = prev.WaterAlternatives
	return fresh
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var umlauts = []struct {
	from string
	to   string
}{
	{"ü", "ue"},
	{"ä", "ae"},
	{"ö", "oe"},
}

// transliterate returns a mechanically substituted variant of s, or ""
// when s contains none of the umlauts. Only the first matching umlaut is
// substituted; the pairs are checked in fixed priority order.
func transliterate(s string) string {
	for _, u := range umlauts {
		if strings.Contains(s, u.from) {
			return strings.ReplaceAll(s, u.from, u.to)
		}
	}
	return ""
}
