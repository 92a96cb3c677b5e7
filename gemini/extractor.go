package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/skywatch"
	"google.golang.org/genai"
)

// Ensure Extractor implements skywatch.Extractor at compile time.
var _ skywatch.Extractor = (*Extractor)(nil)

// Extractor implements skywatch.Extractor using Google Gemini.
type Extractor struct {
	client   *genai.Client
	settings settings
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, opts ...Option) *Extractor {
	return &Extractor{client: client, settings: newSettings(opts)}
}

// Extract sends the document text to Gemini and parses the structured
// response into sighting records. Non-UK sightings are excluded by the
// model instruction; responses that fail schema validation come back as
// permanent ESCHEMA errors.
func (e *Extractor) Extract(ctx context.Context, doc *skywatch.Document, text string) (*skywatch.Extraction, error) {
	if text == "" {
		return nil, skywatch.Errorf(skywatch.EINVALID, "document text required")
	}

	// Each model call carries its own deadline so a hung call surfaces as
	// ETIMEOUT instead of stalling the worker.
	ctx, cancel := e.settings.callContext(ctx)
	defer cancel()

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildExtractionPrompt(text)}},
		}},
		BuildExtractionConfig(),
	)
	if err != nil {
		return nil, classifyErr("extraction", err)
	}
	if result == nil {
		return nil, skywatch.Errorf(skywatch.EINTERNAL, "gemini returned nil result")
	}

	records, err := ParseSightings([]byte(result.Text()))
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		r.SourceURL = doc.URL
	}

	return &skywatch.Extraction{
		Records:  records,
		Strategy: skywatch.StrategyPrimary,
	}, nil
}

// BuildExtractionConfig returns the GenerateContentConfig for extraction
// calls.
func BuildExtractionConfig() *genai.GenerateContentConfig {
	temp := float32(0.0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a data extraction assistant working on UK government sighting-report documents. You extract every sighting that occurred in the United Kingdom, exactly as written, without inventing, dropping, merging or summarizing anything.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildExtractionPrompt builds the user prompt for one document's text.
func BuildExtractionPrompt(text string) string {
	return fmt.Sprintf(
		"Given the following raw text from a UK government sighting report, "+
			"extract EVERY sighting that occurred in the United Kingdom. "+
			"Output a JSON array where each object has keys: date, time, town, area, occupation, incident. "+
			"If a value is missing, use \"Not Given\". "+
			"Do NOT invent or hallucinate locations or data. "+
			"Do NOT drop or skip any UK sightings. "+
			"Do NOT merge or summarize multiple sightings. "+
			"Do NOT include any non-UK locations. "+
			"Only output the JSON array, no explanations.\n\n"+
			"Raw text:\n%s\n\nJSON:", text)
}

// ParseSightings validates and decodes an extraction response.
func ParseSightings(data []byte) ([]*skywatch.Sighting, error) {
	if _, err := validate(sightingsSchema, data); err != nil {
		return nil, err
	}

	var rows []struct {
		Date       string `json:"date"`
		Time       string `json:"time"`
		Town       string `json:"town"`
		Area       string `json:"area"`
		Occupation string `json:"occupation"`
		Incident   string `json:"incident"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, skywatch.Errorf(skywatch.ESCHEMA, "response failed to decode: %v", err)
	}

	records := make([]*skywatch.Sighting, 0, len(rows))
	for _, row := range rows {
		records = append(records, &skywatch.Sighting{
			Date:        row.Date,
			Time:        orNotGiven(row.Time),
			Town:        orNotGiven(row.Town),
			Area:        orNotGiven(row.Area),
			Occupation:  orNotGiven(row.Occupation),
			Incident:    row.Incident,
			Coordinates: skywatch.Unresolved(),
		})
	}
	return records, nil
}

// orNotGiven normalizes empty optional values to the source-report
// placeholder.
func orNotGiven(v string) string {
	if v == "" {
		return "Not Given"
	}
	return v
}
