// Package query evaluates station filters and derives the aggregated
// response served by the API.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/models"
)

// AggregatedResponse is the query result: MQTT topics and measurement
// links derived from the matched stations, plus the decorated stations.
type AggregatedResponse struct {
	MqttTopics       []string         `json:"mqtttopics"`
	PegelonlineLinks []string         `json:"pegelonlinelinks"`
	Stations         []models.Station `json:"stations"`
}

// Engine evaluates queries against a station snapshot. It never mutates
// the records it is given; aggregation decorates copies.
type Engine struct {
	mqttBase        string
	pegelonlineBase string
}

func NewEngine(mqttBase, pegelonlineBase string) *Engine {
	return &Engine{
		mqttBase:        mqttBase,
		pegelonlineBase: pegelonlineBase,
	}
}

// Filter applies the query. Free text is mutually exclusive with the
// structured predicates: when q.Q is set the structured fields are
// ignored entirely. Structured predicates are ANDed; an absent field is
// never a constraint.
func (e *Engine) Filter(stations []models.Station, q models.StationQuery) []models.Station {
	if q.IsFreeText() {
		return e.FilterFreeText(stations, q.Q)
	}

	stations = filterStation(q, stations)
	stations = filterGewaesser(q, stations)
	stations = filterField(q.Land, "land", stations, func(st models.Station) models.Field { return st.Land })
	stations = filterAgency(q, stations)
	stations = filterField(q.Country, "country", stations, func(st models.Station) models.Field { return st.Country })
	stations = filterField(q.Einzugsgebiet, "einzugsgebiet", stations, func(st models.Station) models.Field { return st.Einzugsgebiet })
	stations = filterField(q.Kreis, "kreis", stations, func(st models.Station) models.Field { return st.Kreis })
	stations = filterParameter(q, stations)
	stations = filterBbox(q, stations)
	return stations
}

func filterStation(q models.StationQuery, stations []models.Station) []models.Station {
	if q.Station == "" {
		return stations
	}
	log.Debug().Str("station", q.Station).Msg("filter with station")
	return keep(stations, func(st models.Station) bool {
		return containsFold(st.Shortname, q.Station)
	})
}

func filterGewaesser(q models.StationQuery, stations []models.Station) []models.Station {
	if q.Gewaesser == "" {
		return stations
	}
	log.Debug().Str("gewaesser", q.Gewaesser).Msg("filter with gewaesser")
	return keep(stations, func(st models.Station) bool {
		return containsFold(st.Water.Shortname, q.Gewaesser)
	})
}

func filterAgency(q models.StationQuery, stations []models.Station) []models.Station {
	if q.Agency == "" {
		return stations
	}
	log.Debug().Str("agency", q.Agency).Msg("filter with agency")
	return keep(stations, func(st models.Station) bool {
		return containsFold(st.Agency, q.Agency)
	})
}

// filterField matches the canonical value first and falls back to the
// alternatives list.
func filterField(term, name string, stations []models.Station, field func(models.Station) models.Field) []models.Station {
	if term == "" {
		return stations
	}
	log.Debug().Str(name, term).Msg("filter with enrichment field")
	return keep(stations, func(st models.Station) bool {
		return field(st).Matches(term)
	})
}

func filterParameter(q models.StationQuery, stations []models.Station) []models.Station {
	if q.Parameter == "" {
		return stations
	}
	log.Debug().Str("parameter", q.Parameter).Msg("filter with parameter")
	return keep(stations, func(st models.Station) bool {
		for _, ts := range st.Timeseries {
			if strings.EqualFold(ts.Longname, q.Parameter) || strings.EqualFold(ts.Shortname, q.Parameter) {
				return true
			}
		}
		return false
	})
}

// filterBbox keeps stations inside the inclusive rectangle
// minLon,minLat,maxLon,maxLat. A malformed bbox is a silent no-op.
func filterBbox(q models.StationQuery, stations []models.Station) []models.Station {
	if q.BBox == "" {
		return stations
	}

	parts := strings.Split(q.BBox, ",")
	if len(parts) != 4 {
		return stations
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return stations
		}
		coords[i] = v
	}
	minLon, minLat, maxLon, maxLat := coords[0], coords[1], coords[2], coords[3]

	log.Debug().Str("bbox", q.BBox).Msg("filter with bbox")
	return keep(stations, func(st models.Station) bool {
		if !st.HasCoordinates() {
			return false
		}
		return *st.Longitude >= minLon && *st.Longitude <= maxLon &&
			*st.Latitude >= minLat && *st.Latitude <= maxLat
	})
}

// FilterFreeText keeps stations where text is a case-insensitive
// substring of any scanned value: identity fields, enrichment fields and
// their alternatives, the water body names, and every timeseries name.
func (e *Engine) FilterFreeText(stations []models.Station, text string) []models.Station {
	log.Debug().Str("q", text).Msg("filter with free text")
	return keep(stations, func(st models.Station) bool {
		if containsFold(st.Shortname, text) ||
			containsFold(st.Longname, text) ||
			containsFold(st.Agency, text) ||
			containsFold(st.UUID, text) {
			return true
		}
		for _, f := range []models.Field{st.Country, st.Land, st.Kreis, st.City, st.Einzugsgebiet} {
			if f.Matches(text) {
				return true
			}
		}
		for _, alt := range st.WaterAlternatives {
			if containsFold(alt, text) {
				return true
			}
		}
		if containsFold(st.Water.Shortname, text) || containsFold(st.Water.Longname, text) {
			return true
		}
		for _, ts := range st.Timeseries {
			if containsFold(ts.Shortname, text) || containsFold(ts.Longname, text) {
				return true
			}
		}
		return false
	})
}

// Aggregate derives MQTT topics and measurement links for the given
// stations. It decorates deep copies; the input records are not touched.
func (e *Engine) Aggregate(stations []models.Station) AggregatedResponse {
	topics := make([]string, 0, len(stations))
	links := make([]string, 0)
	decorated := make([]models.Station, len(stations))

	for i, st := range stations {
		out := st.Clone()
		out.MqttTopic = e.mqttBase + "/+/+/+/+/" + out.UUID + "/+"
		topics = append(topics, out.MqttTopic)
		for j := range out.Timeseries {
			ts := &out.Timeseries[j]
			ts.MqttTopic = e.mqttBase + "/+/+/+/+/" + out.UUID + "/" + ts.Shortname
			ts.PegelonlineLink = e.pegelonlineBase + "/stations/" + out.UUID + "/" + ts.Shortname + "/measurements.json"
			links = append(links, ts.PegelonlineLink)
		}
		decorated[i] = out
	}

	return AggregatedResponse{
		MqttTopics:       topics,
		PegelonlineLinks: links,
		Stations:         decorated,
	}
}

// Search is the composition exposed to the API layer: filter, then
// aggregate.
func (e *Engine) Search(stations []models.Station, q models.StationQuery) AggregatedResponse {
	return e.Aggregate(e.Filter(stations, q))
}

// Options returns the distinct sorted values available for one filter
// field, canonical values and alternatives combined.
func Options(stations []models.Station, field string) ([]string, error) {
	if field == "" {
		return nil, &models.MissingParameterError{Parameter: "parameter"}
	}

	values := map[string]struct{}{}
	add := func(v string) {
		if v != "" {
			values[v] = struct{}{}
		}
	}

	switch field {
	case "station":
		for _, st := range stations {
			add(st.Shortname)
		}
	case "gewaesser":
		for _, st := range stations {
			add(st.Water.Shortname)
			for _, alt := range st.WaterAlternatives {
				add(alt)
			}
		}
	case "agency":
		for _, st := range stations {
			add(st.Agency)
		}
	case "country":
		collectField(stations, add, func(st models.Station) models.Field { return st.Country })
	case "land":
		collectField(stations, add, func(st models.Station) models.Field { return st.Land })
	case "kreis":
		collectField(stations, add, func(st models.Station) models.Field { return st.Kreis })
	case "einzugsgebiet":
		collectField(stations, add, func(st models.Station) models.Field { return st.Einzugsgebiet })
	case "parameter":
		for _, st := range stations {
			for _, ts := range st.Timeseries {
				add(ts.Longname)
				add(ts.Shortname)
			}
		}
	default:
		return nil, &models.UnsupportedParameterError{Parameter: field}
	}

	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func collectField(stations []models.Station, add func(string), field func(models.Station) models.Field) {
	for _, st := range stations {
		f := field(st)
		add(f.Value)
		for _, alt := range f.Alternatives {
			add(alt)
		}
	}
}

func keep(stations []models.Station, pred func(models.Station) bool) []models.Station {
	out := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		if pred(st) {
			out = append(out, st)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
