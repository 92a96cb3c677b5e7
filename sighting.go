package skywatch

import (
	"encoding/json"
	"sort"
	"strings"
)

// NotAvailable is the unresolved-coordinate marker. A record whose town and
// area cannot be geocoded by either strategy keeps this sentinel instead of
// being dropped from the dataset.
const NotAvailable = "NA"

// Coordinates holds a latitude/longitude pair as strings, matching the
// artifact wire format. The zero value is not valid; use Unresolved() for
// the sentinel.
type Coordinates struct {
	Lat string
	Lon string
}

// Unresolved returns the "NA"/"NA" sentinel pair.
func Unresolved() Coordinates {
	return Coordinates{Lat: NotAvailable, Lon: NotAvailable}
}

// IsResolved reports whether the pair holds real coordinates.
func (c Coordinates) IsResolved() bool {
	return c.Lat != "" && c.Lat != NotAvailable && c.Lon != "" && c.Lon != NotAvailable
}

// MarshalJSON encodes coordinates as a two-element array: ["lat","lon"].
func (c Coordinates) MarshalJSON() ([]byte, error) {
	if c.Lat == "" || c.Lon == "" {
		c = Unresolved()
	}
	return json.Marshal([2]string{c.Lat, c.Lon})
}

// UnmarshalJSON decodes the two-element array form. Anything malformed
// becomes the unresolved sentinel rather than an error.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		*c = Unresolved()
		return nil
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

// Sighting represents one reported incident extracted from a source
// document. Records are immutable once geocoded except for Coordinates,
// which is set exactly once.
type Sighting struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Town        string      `json:"town"`
	Area        string      `json:"area"`
	Occupation  string      `json:"occupation"`
	Incident    string      `json:"incident"`
	SourceURL   string      `json:"sourceUrl"`
	Coordinates Coordinates `json:"coordinates"`
}

// Validate returns an error if the sighting is missing required fields.
// A record without a usable town and area cannot be geocoded and is
// invalid; it must be dropped before geocoding is attempted.
func (s *Sighting) Validate() error {
	if s.Date == "" {
		return Errorf(EINVALID, "sighting date required")
	}
	if s.Incident == "" {
		return Errorf(EINVALID, "sighting incident description required")
	}
	if !UsableLocation(s.Town) && !UsableLocation(s.Area) {
		return Errorf(EINVALID, "sighting requires a town or area")
	}
	return nil
}

// UsableLocation reports whether a location value can be fed to a geocoder.
// The source reports use "Not Given" and occasionally "nothing" phrases for
// missing values.
func UsableLocation(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "not given" {
		return false
	}
	return !strings.Contains(v, "nothing")
}

// Dataset is the final aggregated artifact: every successfully processed
// sighting across all documents.
type Dataset []*Sighting

// Sort orders the dataset deterministically by date, then source document,
// then incident text, so repeated runs over identical inputs are
// byte-comparable. Dates compare as raw strings, not as points in time: the
// source reports mix formats ("16-Feb-09", "16/02/2009"), so the order is
// stable but not chronological.
func (d Dataset) Sort() {
	sort.SliceStable(d, func(i, j int) bool {
		if d[i].Date != d[j].Date {
			return d[i].Date < d[j].Date
		}
		if d[i].SourceURL != d[j].SourceURL {
			return d[i].SourceURL < d[j].SourceURL
		}
		return d[i].Incident < d[j].Incident
	})
}
