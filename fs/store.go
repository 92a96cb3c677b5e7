// Package fs provides file-based storage for pipeline artifacts.
package fs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/skywatch"
	"github.com/google/uuid"
)

// Ensure Store implements skywatch.ArtifactStore at compile time.
var _ skywatch.ArtifactStore = (*Store)(nil)

// Store implements skywatch.ArtifactStore on the local filesystem with
// atomic dataset writes. Each run gets its own working directory under
// baseDir; the final artifact is written to a temp file next to its
// destination and renamed into place.
type Store struct {
	workDir string
	outPath string
}

// NewStore creates a Store with a fresh per-run working directory under
// baseDir. The aggregated dataset is written to outPath.
func NewStore(baseDir, outPath string) (*Store, error) {
	workDir := filepath.Join(baseDir, "skywatch-"+uuid.NewString())
	for _, dir := range []string{
		filepath.Join(workDir, "pdfs"),
		filepath.Join(workDir, "records"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, skywatch.Errorf(skywatch.EINTERNAL, "create working directory: %v", err)
		}
	}
	return &Store{workDir: workDir, outPath: outPath}, nil
}

// WorkDir returns the run's working directory. Useful for reporting where
// intermediates were preserved after a failed aggregation.
func (s *Store) WorkDir() string {
	return s.workDir
}

func (s *Store) sourcePath(doc *skywatch.Document) string {
	return filepath.Join(s.workDir, "pdfs", doc.Name+".pdf")
}

func (s *Store) recordsPath(doc *skywatch.Document) string {
	return filepath.Join(s.workDir, "records", doc.Name+".csv")
}

// validName rejects document names that would escape the working
// directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return skywatch.Errorf(skywatch.EINVALID, "invalid document name %q", name)
	}
	return nil
}

func (s *Store) SaveSource(ctx context.Context, doc *skywatch.Document, content []byte) error {
	if err := validName(doc.Name); err != nil {
		return err
	}
	if err := os.WriteFile(s.sourcePath(doc), content, 0644); err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "save source: %v", err)
	}
	return nil
}

func (s *Store) ReleaseSource(ctx context.Context, doc *skywatch.Document) error {
	if err := validName(doc.Name); err != nil {
		return err
	}
	if err := os.Remove(s.sourcePath(doc)); err != nil && !os.IsNotExist(err) {
		return skywatch.Errorf(skywatch.EINTERNAL, "release source: %v", err)
	}
	return nil
}

// intermediateHeader is the column order of the per-document CSV files.
var intermediateHeader = []string{"date", "time", "town", "area", "occupation", "incident", "latitude", "longitude"}

func (s *Store) SaveIntermediate(ctx context.Context, doc *skywatch.Document, records []*skywatch.Sighting) error {
	if err := validName(doc.Name); err != nil {
		return err
	}

	f, err := os.Create(s.recordsPath(doc))
	if err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "create intermediate: %v", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(intermediateHeader); err != nil {
		f.Close()
		return skywatch.Errorf(skywatch.EINTERNAL, "write intermediate: %v", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Date,
			rec.Time,
			rec.Town,
			rec.Area,
			rec.Occupation,
			rec.Incident,
			rec.Coordinates.Lat,
			rec.Coordinates.Lon,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return skywatch.Errorf(skywatch.EINTERNAL, "write intermediate: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return skywatch.Errorf(skywatch.EINTERNAL, "write intermediate: %v", err)
	}
	if err := f.Close(); err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "write intermediate: %v", err)
	}
	return nil
}

// WriteDataset writes the aggregated artifact atomically: the JSON is
// written to a temp file in the destination directory, then renamed into
// place. A reader never observes a torn file.
func (s *Store) WriteDataset(ctx context.Context, dataset skywatch.Dataset) error {
	if dataset == nil {
		dataset = skywatch.Dataset{}
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "encode dataset: %v", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.outPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "create output directory: %v", err)
	}

	// Temp file must live on the same filesystem as the destination for
	// the rename to be atomic.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.outPath)+".tmp-*")
	if err != nil {
		return skywatch.Errorf(skywatch.EINTERNAL, "create temp artifact: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return skywatch.Errorf(skywatch.EINTERNAL, "write artifact: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return skywatch.Errorf(skywatch.EINTERNAL, "write artifact: %v", err)
	}
	if err := os.Rename(tmpName, s.outPath); err != nil {
		os.Remove(tmpName)
		return skywatch.Errorf(skywatch.EINTERNAL, "publish artifact: %v", err)
	}
	return nil
}

func (s *Store) Cleanup() error {
	return os.RemoveAll(s.workDir)
}
