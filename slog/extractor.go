package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/skywatch"
)

// Ensure LoggingExtractor implements skywatch.Extractor.
var _ skywatch.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor and logs which strategy produced
// the records for each document.
type LoggingExtractor struct {
	next   skywatch.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next skywatch.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) Extract(ctx context.Context, doc *skywatch.Document, text string) (result *skywatch.Extraction, err error) {
	defer func(begin time.Time) {
		var records int
		var strategy skywatch.Strategy
		if result != nil {
			records = len(result.Records)
			strategy = result.Strategy
		}
		e.logger.Info("extraction",
			"url", doc.URL,
			"records", records,
			"strategy", string(strategy),
			"duration", time.Since(begin),
			"err", err,
		)
		if result != nil && result.Note != "" {
			e.logger.Debug("extraction note", "url", doc.URL, "note", result.Note)
		}
	}(time.Now())
	return e.next.Extract(ctx, doc, text)
}
