// Package boundary resolves coordinates to drainage-basin names by
// point-in-polygon containment over a static GeoJSON dataset.
package boundary

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// tierKeys in resolution order, finest first. The first key present on a
// matched feature wins.
var tierKeys = []string{"NAME_2500", "NAME_1000", "NAME_500"}

// Lookup holds the loaded basin features. Features are scanned in file
// order and the first containing feature is used; the dataset is assumed
// non-overlapping. With overlapping features the result would depend on
// file order — known limitation, not verified here.
type Lookup struct {
	features []*geojson.Feature
}

// Empty returns a lookup without features; every point is unresolved.
func Empty() *Lookup {
	return &Lookup{}
}

// Load reads and parses a GeoJSON FeatureCollection file.
func Load(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading basin dataset %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Lookup from raw GeoJSON bytes.
func Parse(data []byte) (*Lookup, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing basin dataset: %w", err)
	}
	return &Lookup{features: fc.Features}, nil
}

// Resolve returns the name of the basin containing the point, or "" when
// no feature contains it. Points outside all basins are legitimately
// unresolved, not an error.
func (l *Lookup) Resolve(lat, lon float64) string {
	point := orb.Point{lon, lat}

	for _, f := range l.features {
		if f.Geometry == nil {
			continue
		}
		// Fast bounding box check
		if !f.Geometry.Bound().Contains(point) {
			continue
		}
		if !containsPoint(f.Geometry, point) {
			continue
		}
		for _, key := range tierKeys {
			if name := stringProp(f.Properties, key); name != "" {
				return name
			}
		}
		return ""
	}

	return ""
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	default:
		return false
	}
}

func stringProp(props geojson.Properties, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
