package models

import "strings"

// Water identifies the water body a station is located on.
type Water struct {
	Shortname string `json:"shortname"`
	Longname  string `json:"longname"`
}

// Timeseries is one measured parameter of a station. MqttTopic and
// PegelonlineLink are derived values, set only on aggregated copies.
type Timeseries struct {
	Shortname       string  `json:"shortname"`
	Longname        string  `json:"longname"`
	Unit            string  `json:"unit"`
	Equidistance    float64 `json:"equidistance,omitempty"`
	MqttTopic       string  `json:"mqtttopic,omitempty"`
	PegelonlineLink string  `json:"pegelonlinelink,omitempty"`
}

// Field is one enrichable value: the canonical name plus any number of
// alternative names (other languages, synonyms, transliterations).
type Field struct {
	Value        string   `json:"value,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// HasValue reports whether a canonical value has been resolved.
func (f Field) HasValue() bool {
	return f.Value != ""
}

// AddAlternative appends alt unless it is empty or repeats the canonical
// value. Duplicates among alternatives are kept.
func (f *Field) AddAlternative(alt string) {
	if alt == "" || alt == f.Value {
		return
	}
	f.Alternatives = append(f.Alternatives, alt)
}

// Matches reports whether term is a case-insensitive substring of the
// canonical value or of any alternative.
func (f Field) Matches(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(f.Value), term) {
		return true
	}
	for _, alt := range f.Alternatives {
		if strings.Contains(strings.ToLower(alt), term) {
			return true
		}
	}
	return false
}

// Station is an enriched gauge station. Identity is the upstream UUID.
// Registry fields come from PEGELONLINE and are read-only after fetch;
// the Field members and WaterAlternatives are written by the enrichment
// pipeline only.
type Station struct {
	UUID       string       `json:"uuid"`
	Number     string       `json:"number"`
	Shortname  string       `json:"shortname"`
	Longname   string       `json:"longname"`
	KM         float64      `json:"km,omitempty"`
	Agency     string       `json:"agency"`
	Longitude  *float64     `json:"longitude,omitempty"`
	Latitude   *float64     `json:"latitude,omitempty"`
	MqttTopic  string       `json:"mqtttopic,omitempty"`
	Water      Water        `json:"water"`
	Timeseries []Timeseries `json:"timeseries"`

	Country           Field    `json:"country"`
	Land              Field    `json:"land"`
	Kreis             Field    `json:"kreis"`
	City              Field    `json:"city"`
	Einzugsgebiet     Field    `json:"einzugsgebiet"`
	WaterAlternatives []string `json:"water_alternatives,omitempty"`
}

// HasCoordinates reports whether the station can be geocoded at all.
func (s Station) HasCoordinates() bool {
	return s.Longitude != nil && s.Latitude != nil
}

// Clone returns a deep copy, so callers can decorate derived fields
// without touching the stored record.
func (s Station) Clone() Station {
	out := s
	if s.Longitude != nil {
		lon := *s.Longitude
		out.Longitude = &lon
	}
	if s.Latitude != nil {
		lat := *s.Latitude
		out.Latitude = &lat
	}
	out.Timeseries = append([]Timeseries(nil), s.Timeseries...)
	out.Country = s.Country.clone()
	out.Land = s.Land.clone()
	out.Kreis = s.Kreis.clone()
	out.City = s.City.clone()
	out.Einzugsgebiet = s.Einzugsgebiet.clone()
	out.WaterAlternatives = cloneStrings(s.WaterAlternatives)
	return out
}

func (f Field) clone() Field {
	return Field{Value: f.Value, Alternatives: cloneStrings(f.Alternatives)}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// StationQuery carries the filter parameters of one request. Q is
// mutually exclusive with the structured fields and wins when set.
type StationQuery struct {
	Station       string
	Gewaesser     string
	Agency        string
	Land          string
	Country       string
	Einzugsgebiet string
	Kreis         string
	Parameter     string
	BBox          string
	Q             string
}

// IsFreeText reports whether the free-text path applies.
func (q StationQuery) IsFreeText() bool {
	return q.Q != ""
}
