// Package slog provides logging decorators for skywatch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/skywatch"
)

// Ensure LoggingFetcher implements skywatch.Fetcher.
var _ skywatch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with timing and outcome logging.
type LoggingFetcher struct {
	next   skywatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next skywatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (content []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
