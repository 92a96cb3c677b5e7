// Package skywatch ingests UK government sighting-report PDFs, extracts
// structured sighting records from each document, resolves best-effort
// coordinates for every record, and aggregates the results into a single
// geolocated dataset artifact.
//
// Extraction and geocoding each run through a primary model-backed strategy
// with a deterministic fallback, so a run degrades rather than fails when
// the model service is unavailable.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, gemini/, sqlite/).
package skywatch
