package pipeline

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/skywatch"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the worker pool when none is configured. The
// dominant cost is waiting on external calls, so a small pool saturates
// the service rate limits long before it saturates the CPU.
const DefaultConcurrency = 4

// Runner drives a full pipeline run. It owns document lifecycle: workers
// only ever touch their own document's state, so the only shared mutable
// state is the result channel and the ledger's per-document rows.
type Runner struct {
	Source    skywatch.DocumentSource
	Fetcher   skywatch.Fetcher
	Text      skywatch.TextExtractor
	Extractor skywatch.Extractor
	Geocoder  skywatch.Geocoder
	Store     skywatch.ArtifactStore
	Ledger    skywatch.Ledger // optional; enables cross-run dedup
	Limiter   *HostLimiter    // optional; throttles document fetches
	Logger    *slog.Logger    // optional

	Concurrency int
	Timeout     time.Duration // run-level; zero means no limit
	RetryDelays []time.Duration
}

// DocumentReport is one document's terminal outcome.
type DocumentReport struct {
	URL      string
	Status   skywatch.Status
	Reason   string
	Records  int
	Strategy skywatch.Strategy
}

// Result summarizes a run.
type Result struct {
	Succeeded int
	Failed    int
	Skipped   int
	Records   int
	Documents []DocumentReport
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// docResult carries one worker's terminal outcome to the aggregator.
type docResult struct {
	report  DocumentReport
	records []*skywatch.Sighting
}

// Run executes the pipeline for every document linked from listURL and
// writes the aggregated dataset. The run completes only after every
// document reaches a terminal state; a run-level timeout or cancellation
// forces remaining in-flight documents to failed.
//
// Cancellation policy: documents already done when the run is canceled ARE
// included in the written dataset. The artifact write is atomic, so a
// partial dataset is never observable as a torn file.
//
// A dataset write failure is fatal and preserves all per-document
// intermediates for manual recovery; on every other exit path the working
// directory is cleaned up.
func (r *Runner) Run(ctx context.Context, listURL string, progress ProgressFunc) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	urls, err := r.Source.Discover(ctx, listURL)
	if err != nil {
		_ = r.Store.Cleanup()
		return nil, err
	}

	result := &Result{}

	// Cross-run dedup: documents the ledger already saw through to a
	// fetched-or-later state are skipped.
	var pending []string
	for _, u := range urls {
		if r.alreadyProcessed(ctx, u) {
			result.Skipped++
			result.Documents = append(result.Documents, DocumentReport{
				URL:    u,
				Status: skywatch.StatusDone,
				Reason: "already processed",
			})
			continue
		}
		pending = append(pending, u)
	}

	total := len(pending)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan docResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, u := range pending {
			u := u
			g.Go(func() error {
				resultCh <- r.processDocument(gctx, u)
				// Worker errors are recorded per document; one document's
				// failure never aborts the group.
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var dataset skywatch.Dataset
	completed := 0
	for res := range resultCh {
		completed++
		result.Documents = append(result.Documents, res.report)

		if res.report.Status == skywatch.StatusDone {
			result.Succeeded++
			dataset = append(dataset, res.records...)
			if progress != nil {
				progress(ProgressEvent{Type: ProgressCompleted, Completed: completed, Total: total, URL: res.report.URL})
			}
		} else {
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: completed,
					Total:     total,
					URL:       res.report.URL,
					Error:     skywatch.Errorf(skywatch.EINTERNAL, "%s", res.report.Reason),
				})
			}
		}
	}

	dataset.Sort()
	result.Records = len(dataset)

	// The write must survive run-level cancellation: documents already
	// done are part of the dataset by policy.
	if err := r.Store.WriteDataset(context.WithoutCancel(ctx), dataset); err != nil {
		// Intermediates stay on disk for manual recovery.
		return result, skywatch.Errorf(skywatch.EINTERNAL, "aggregation write failed: %v", err)
	}

	if err := r.Store.Cleanup(); err != nil && r.Logger != nil {
		r.Logger.Warn("workdir cleanup failed", "err", err)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return result, nil
}

// alreadyProcessed consults the ledger for the dedup policy: anything
// fetched or later in the state machine is not re-fetched.
func (r *Runner) alreadyProcessed(ctx context.Context, url string) bool {
	if r.Ledger == nil {
		return false
	}
	status, err := r.Ledger.Status(ctx, url)
	if err != nil {
		return false
	}
	switch status {
	case skywatch.StatusFetched, skywatch.StatusExtracted, skywatch.StatusGeocoding, skywatch.StatusDone:
		return true
	}
	return false
}

// processDocument drives one document through the state machine. Every
// exit path leaves the document in a terminal state and releases its raw
// bytes.
func (r *Runner) processDocument(ctx context.Context, docURL string) docResult {
	doc := &skywatch.Document{
		URL:    docURL,
		Name:   documentName(docURL),
		Status: skywatch.StatusPending,
	}

	setStatus := func(status skywatch.Status, reason string) {
		doc.Status = status
		doc.Reason = reason
		if r.Ledger != nil {
			// Terminal states must be recorded even when the run is
			// being torn down.
			if err := r.Ledger.Record(context.WithoutCancel(ctx), doc); err != nil && r.Logger != nil {
				r.Logger.Warn("ledger update failed", "url", doc.URL, "err", err)
			}
		}
	}

	fail := func(err error) docResult {
		setStatus(skywatch.StatusFailed, failureReason(ctx, err))
		return docResult{report: DocumentReport{URL: doc.URL, Status: doc.Status, Reason: doc.Reason}}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// Fetch with bounded retry for transient failures.
	setStatus(skywatch.StatusFetching, "")
	var content []byte
	err := Retry(ctx, r.retryDelays(), func(ctx context.Context) error {
		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx, urlHost(doc.URL)); err != nil {
				return skywatch.Errorf(skywatch.ECANCELED, "rate limit wait canceled")
			}
		}
		var err error
		content, err = r.Fetcher.Fetch(ctx, doc.URL)
		return err
	})
	if err != nil {
		return fail(err)
	}

	doc.ContentHash = hashContent(content)
	doc.FetchedAt = time.Now().UTC()
	if err := r.Store.SaveSource(ctx, doc, content); err != nil {
		return fail(err)
	}
	release := func() {
		if err := r.Store.ReleaseSource(context.WithoutCancel(ctx), doc); err != nil && r.Logger != nil {
			r.Logger.Warn("source release failed", "url", doc.URL, "err", err)
		}
	}
	setStatus(skywatch.StatusFetched, "")

	// Extract.
	setStatus(skywatch.StatusExtracting, "")
	text, err := r.Text.ExtractText(content)
	if err != nil {
		release()
		return fail(err)
	}
	extraction, err := r.Extractor.Extract(ctx, doc, text)
	if err != nil {
		release()
		return fail(err)
	}
	setStatus(skywatch.StatusExtracted, "")

	// Records without the required fields or any usable location cannot
	// be geocoded and are dropped before geocoding is attempted.
	records := make([]*skywatch.Sighting, 0, len(extraction.Records))
	for _, rec := range extraction.Records {
		if err := rec.Validate(); err != nil {
			if r.Logger != nil {
				r.Logger.Debug("dropping invalid record", "url", doc.URL, "reason", skywatch.ErrorMessage(err))
			}
			continue
		}
		rec.SourceURL = doc.URL
		rec.ID = recordID(rec)
		records = append(records, rec)
	}

	// Geocode. Resolution is record-local; a record that fails both
	// strategies keeps the sentinel.
	setStatus(skywatch.StatusGeocoding, "")
	for _, rec := range records {
		c, err := r.Geocoder.Geocode(ctx, rec.Town, rec.Area)
		if err != nil {
			release()
			return fail(err)
		}
		rec.Coordinates = c
	}

	if err := r.Store.SaveIntermediate(ctx, doc, records); err != nil {
		release()
		return fail(err)
	}

	// Records are now owned by the aggregator; the raw bytes can go.
	release()
	setStatus(skywatch.StatusDone, "")

	return docResult{
		report: DocumentReport{
			URL:      doc.URL,
			Status:   skywatch.StatusDone,
			Records:  len(records),
			Strategy: extraction.Strategy,
		},
		records: records,
	}
}

func (r *Runner) retryDelays() []time.Duration {
	if r.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return r.RetryDelays
}

// failureReason renders a terminal failure, distinguishing run-level
// timeout from explicit cancellation.
func failureReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "run timeout"
		}
		return "canceled"
	}
	if code := skywatch.ErrorCode(err); code == skywatch.ECANCELED {
		return "canceled"
	}
	return skywatch.ErrorMessage(err)
}

// recordID derives a stable identifier from a record's content, so
// repeated runs over identical inputs produce byte-identical artifacts.
func recordID(rec *skywatch.Sighting) string {
	h := xxhash.New()
	for _, part := range []string{rec.SourceURL, rec.Date, rec.Time, rec.Town, rec.Incident} {
		_, _ = h.WriteString(part)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// hashContent computes the xxHash of the fetched bytes, hex encoded.
func hashContent(content []byte) string {
	h := xxhash.Sum64(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// documentName derives a filesystem-safe identifier from a document URL.
func documentName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return sanitizeName(rawURL)
	}
	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return sanitizeName(u.Host)
	}
	return sanitizeName(base)
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}

// urlHost extracts the host for rate limiting; unparseable URLs share one
// bucket.
func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "default"
	}
	return u.Host
}
