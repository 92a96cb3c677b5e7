package mock

import (
	"context"

	"github.com/fwojciec/skywatch"
)

var _ skywatch.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of skywatch.ArtifactStore.
type ArtifactStore struct {
	SaveSourceFn       func(ctx context.Context, doc *skywatch.Document, content []byte) error
	ReleaseSourceFn    func(ctx context.Context, doc *skywatch.Document) error
	SaveIntermediateFn func(ctx context.Context, doc *skywatch.Document, records []*skywatch.Sighting) error
	WriteDatasetFn     func(ctx context.Context, dataset skywatch.Dataset) error
	CleanupFn          func() error
}

func (s *ArtifactStore) SaveSource(ctx context.Context, doc *skywatch.Document, content []byte) error {
	return s.SaveSourceFn(ctx, doc, content)
}

func (s *ArtifactStore) ReleaseSource(ctx context.Context, doc *skywatch.Document) error {
	return s.ReleaseSourceFn(ctx, doc)
}

func (s *ArtifactStore) SaveIntermediate(ctx context.Context, doc *skywatch.Document, records []*skywatch.Sighting) error {
	return s.SaveIntermediateFn(ctx, doc, records)
}

func (s *ArtifactStore) WriteDataset(ctx context.Context, dataset skywatch.Dataset) error {
	return s.WriteDatasetFn(ctx, dataset)
}

func (s *ArtifactStore) Cleanup() error {
	return s.CleanupFn()
}
