// Package gazetteer provides the deterministic fallback implementation of
// skywatch.Geocoder: an embedded lookup table of UK settlements and
// counties. It is always available and never calls out, at the cost of
// recall compared to the model-backed primary.
package gazetteer

import (
	"context"
	_ "embed"
	"encoding/csv"
	"strings"

	"github.com/fwojciec/skywatch"
)

//go:embed places.csv
var placesCSV string

// Ensure Geocoder implements skywatch.Geocoder at compile time.
var _ skywatch.Geocoder = (*Geocoder)(nil)

// Geocoder resolves town/area text against the embedded place table.
type Geocoder struct {
	places map[string]skywatch.Coordinates
}

// NewGeocoder creates a Geocoder from the embedded table.
func NewGeocoder() (*Geocoder, error) {
	return newGeocoderFromCSV(placesCSV)
}

func newGeocoderFromCSV(data string) (*Geocoder, error) {
	r := csv.NewReader(strings.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EINTERNAL, "malformed gazetteer data: %v", err)
	}

	places := make(map[string]skywatch.Coordinates, len(rows))
	for _, row := range rows {
		if len(row) != 3 || row[0] == "name" {
			continue
		}
		places[normalize(row[0])] = skywatch.Coordinates{Lat: row[1], Lon: row[2]}
	}
	return &Geocoder{places: places}, nil
}

// Geocode resolves a town/area pair. Lookup order follows the source
// prototype: town first, then area. Returns ENOTFOUND when neither value
// is in the table.
func (g *Geocoder) Geocode(ctx context.Context, town, area string) (skywatch.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return skywatch.Unresolved(), skywatch.Errorf(skywatch.ECANCELED, "geocoding canceled")
	}

	for _, query := range []string{town, area} {
		if !skywatch.UsableLocation(query) {
			continue
		}
		if c, ok := g.places[normalize(query)]; ok {
			return c, nil
		}
	}
	return skywatch.Unresolved(), skywatch.Errorf(skywatch.ENOTFOUND, "no coordinates for town=%q area=%q", town, area)
}

// normalize lowercases and trims a lookup key.
func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
