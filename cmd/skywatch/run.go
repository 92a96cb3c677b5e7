package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/fwojciec/skywatch"
	"github.com/fwojciec/skywatch/pipeline"
)

// RunCmd executes one pipeline run and reports per-document outcomes.
type RunCmd struct {
	URL    string
	Output string
	Stdout io.Writer
	Stderr io.Writer
}

// Run drives the pipeline and prints a summary. A dataset write failure
// is fatal; individual document failures are reported but do not fail the
// command.
func (c *RunCmd) Run(ctx context.Context, runner *pipeline.Runner) error {
	progress := func(p pipeline.ProgressEvent) {
		switch p.Type {
		case pipeline.ProgressStarted:
			fmt.Fprintf(c.Stdout, "Found %d documents\n", p.Total)
		case pipeline.ProgressFailed:
			fmt.Fprintf(c.Stderr, "skip %s: %v\n", p.URL, p.Error)
			fmt.Fprintf(c.Stdout, "\r[%d/%d] %s", p.Completed, p.Total, truncateURL(p.URL, 40))
		case pipeline.ProgressCompleted:
			fmt.Fprintf(c.Stdout, "\r[%d/%d] %s", p.Completed, p.Total, truncateURL(p.URL, 40))
		case pipeline.ProgressFinished:
			// Clear progress line
			fmt.Fprintf(c.Stdout, "\r%80s\r", "")
		}
	}

	result, err := runner.Run(ctx, c.URL, progress)
	if err != nil {
		if result != nil {
			// The per-document work survived; only the final write failed.
			fmt.Fprintf(c.Stderr, "error: %s\n", skywatch.ErrorMessage(err))
		}
		return err
	}

	for _, doc := range result.Documents {
		switch doc.Status {
		case skywatch.StatusDone:
			if doc.Reason != "" {
				fmt.Fprintf(c.Stdout, "skip %s (%s)\n", truncateURL(doc.URL, 60), doc.Reason)
			} else {
				fmt.Fprintf(c.Stdout, "done %s (%d records, %s)\n", truncateURL(doc.URL, 60), doc.Records, doc.Strategy)
			}
		case skywatch.StatusFailed:
			fmt.Fprintf(c.Stdout, "fail %s (%s)\n", truncateURL(doc.URL, 60), doc.Reason)
		}
	}

	fmt.Fprintf(c.Stdout, "Wrote %d records to %s (%d succeeded, %d failed, %d skipped)\n",
		result.Records, c.Output, result.Succeeded, result.Failed, result.Skipped)

	return nil
}

// truncateURL shortens a URL for display by showing only the path.
// This makes output more useful when many URLs share the same host prefix.
func truncateURL(rawURL string, maxLen int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// Fallback to simple right-truncation
		if len(rawURL) <= maxLen {
			return rawURL
		}
		return rawURL[:maxLen-3] + "..."
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	if len(path) <= maxLen {
		return path
	}

	// Truncate from the left to show the unique suffix
	return "..." + path[len(path)-maxLen+3:]
}
