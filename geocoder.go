package skywatch

import "context"

// Geocoder resolves a record's town/area text to coordinates.
// Two implementations share this interface: a model-backed primary and a
// deterministic gazetteer fallback. Resolution is idempotent and never
// depends on other records' outcomes.
type Geocoder interface {
	// Geocode returns coordinates for a UK town/area pair.
	// Returns ENOTFOUND when the location cannot be resolved; the caller
	// decides whether to try another strategy or keep the unresolved
	// sentinel.
	Geocode(ctx context.Context, town, area string) (Coordinates, error)
}
