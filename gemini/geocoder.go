package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/skywatch"
	"google.golang.org/genai"
)

// Ensure Geocoder implements skywatch.Geocoder at compile time.
var _ skywatch.Geocoder = (*Geocoder)(nil)

// Geocoder implements skywatch.Geocoder using Google Gemini.
type Geocoder struct {
	client   *genai.Client
	settings settings
}

// NewGeocoder creates a new Geocoder.
func NewGeocoder(client *genai.Client, opts ...Option) *Geocoder {
	return &Geocoder{client: client, settings: newSettings(opts)}
}

// Geocode resolves a UK town/area pair to best-effort coordinates.
// Returns ENOTFOUND when the model reports the location as unknown.
func (g *Geocoder) Geocode(ctx context.Context, town, area string) (skywatch.Coordinates, error) {
	if town == "" && area == "" {
		return skywatch.Unresolved(), skywatch.Errorf(skywatch.EINVALID, "town or area required")
	}

	ctx, cancel := g.settings.callContext(ctx)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildGeocodePrompt(town, area)}},
		}},
		BuildGeocodeConfig(),
	)
	if err != nil {
		return skywatch.Unresolved(), classifyErr("geocoding", err)
	}
	if result == nil {
		return skywatch.Unresolved(), skywatch.Errorf(skywatch.EINTERNAL, "gemini returned nil result")
	}

	return ParseCoordinates(town, area, []byte(result.Text()))
}

// BuildGeocodeConfig returns the GenerateContentConfig for geocoding calls.
func BuildGeocodeConfig() *genai.GenerateContentConfig {
	temp := float32(0.0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a geolocation assistant for places in the United Kingdom. You return best-effort coordinates for UK locations only, and never guess coordinates for places you do not recognize.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildGeocodePrompt builds the user prompt for one town/area pair.
func BuildGeocodePrompt(town, area string) string {
	return fmt.Sprintf(
		"Give the best-effort latitude and longitude for the UK location "+
			"with town %q and area %q. "+
			"Output a JSON object with keys latitude and longitude, both as "+
			"decimal-degree strings with no spaces. "+
			"If the location is unknown or outside the United Kingdom, use "+
			"\"NA\" for both values. Only output the JSON object.", town, area)
}

// ParseCoordinates validates and decodes a geocoding response.
func ParseCoordinates(town, area string, data []byte) (skywatch.Coordinates, error) {
	if _, err := validate(coordinatesSchema, data); err != nil {
		return skywatch.Unresolved(), err
	}

	var resp struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return skywatch.Unresolved(), skywatch.Errorf(skywatch.ESCHEMA, "response failed to decode: %v", err)
	}

	c := skywatch.Coordinates{Lat: resp.Latitude, Lon: resp.Longitude}
	if !c.IsResolved() {
		return skywatch.Unresolved(), skywatch.Errorf(skywatch.ENOTFOUND, "no coordinates for town=%q area=%q", town, area)
	}
	return c, nil
}
