package skywatch

import "context"

// ArtifactStore persists the run's on-disk state: downloaded source bytes,
// per-document intermediate record files, and the final dataset artifact.
//
// WriteDataset is atomic (temp file + rename). Cleanup removes the run's
// working directory; it is only called after a successful write so that a
// failed aggregation leaves intermediates behind for manual recovery.
type ArtifactStore interface {
	// SaveSource writes a document's raw bytes into the working directory.
	SaveSource(ctx context.Context, doc *Document, content []byte) error

	// ReleaseSource deletes a document's raw bytes. Called once the
	// document's records are safely owned by the aggregator or the
	// document is permanently failed.
	ReleaseSource(ctx context.Context, doc *Document) error

	// SaveIntermediate writes one document's geocoded records as a
	// tabular intermediate file.
	SaveIntermediate(ctx context.Context, doc *Document, records []*Sighting) error

	// WriteDataset writes the final aggregated artifact.
	WriteDataset(ctx context.Context, dataset Dataset) error

	// Cleanup removes all temporary per-document artifacts.
	Cleanup() error
}
