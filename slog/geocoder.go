package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/skywatch"
)

// Ensure LoggingGeocoder implements skywatch.Geocoder.
var _ skywatch.Geocoder = (*LoggingGeocoder)(nil)

// LoggingGeocoder wraps a Geocoder with timing and resolution logging.
type LoggingGeocoder struct {
	next   skywatch.Geocoder
	logger *slog.Logger
}

// NewLoggingGeocoder creates a new LoggingGeocoder.
func NewLoggingGeocoder(next skywatch.Geocoder, logger *slog.Logger) *LoggingGeocoder {
	return &LoggingGeocoder{next: next, logger: logger}
}

// Geocode delegates to the wrapped geocoder and logs the operation.
func (g *LoggingGeocoder) Geocode(ctx context.Context, town, area string) (c skywatch.Coordinates, err error) {
	defer func(begin time.Time) {
		g.logger.Debug("geocode",
			"town", town,
			"area", area,
			"resolved", c.IsResolved(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Geocode(ctx, town, area)
}
