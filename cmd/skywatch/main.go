package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/skywatch"
	"github.com/fwojciec/skywatch/fs"
	"github.com/fwojciec/skywatch/gazetteer"
	"github.com/fwojciec/skywatch/gemini"
	skyhttp "github.com/fwojciec/skywatch/http"
	"github.com/fwojciec/skywatch/pdf"
	"github.com/fwojciec/skywatch/pipeline"
	skyslog "github.com/fwojciec/skywatch/slog"
	"github.com/fwojciec/skywatch/sqlite"
	"github.com/fwojciec/skywatch/tabular"
	"google.golang.org/genai"
)

// defaultSourceURL is the National Archives listing of the MoD's released
// UFO sighting reports.
const defaultSourceURL = "https://www.gov.uk/government/publications/ufo-reports-in-the-uk"

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string        `arg:"" optional:"" help:"Listing page to discover report PDFs from"`
	Output      string        `short:"o" default:"sightings.json" help:"Path for the aggregated JSON artifact"`
	WorkDir     string        `short:"w" default:"" help:"Base directory for per-run temporary files (default: system temp)"`
	Ledger      string        `short:"l" default:"" help:"SQLite ledger path for cross-run dedup (disabled when empty)"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent document limit"`
	Timeout     time.Duration `short:"t" default:"0" help:"Run-level timeout (0 disables)"`
	RateLimit   float64       `default:"1.0" help:"Fetch requests per second per host"`
	NoModel     bool          `help:"Skip the model-backed strategies; deterministic extraction and geocoding only"`
	Verbose     bool          `short:"v" help:"Enable debug logging"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("skywatch"),
		kong.Description("Extract UK UFO sighting reports from published PDFs into a single JSON dataset"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	_, err = parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.URL == "" {
		cli.URL = defaultSourceURL
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	runner, cleanup, err := m.buildRunner(ctx, cli, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	cmd := &RunCmd{
		URL:    cli.URL,
		Output: cli.Output,
		Stdout: stdout,
		Stderr: stderr,
	}

	return cmd.Run(ctx, runner)
}

// buildRunner wires the pipeline's services from CLI configuration. The
// returned cleanup closes resources the runner holds open (ledger DB).
func (m *Main) buildRunner(ctx context.Context, cli *CLI, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	cleanup := func() {}

	workDir := cli.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	store, err := fs.NewStore(workDir, cli.Output)
	if err != nil {
		return nil, cleanup, err
	}

	fallbackGeo, err := gazetteer.NewGeocoder()
	if err != nil {
		return nil, cleanup, err
	}

	var primaryExtractor skywatch.Extractor
	var primaryGeocoder skywatch.Geocoder
	if !cli.NoModel {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, cleanup, fmt.Errorf("GEMINI_API_KEY is required (use --no-model to run without it)")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create model client: %w", err)
		}
		primaryExtractor = gemini.NewExtractor(client)
		primaryGeocoder = gemini.NewGeocoder(client)
	}

	var ledger skywatch.Ledger
	if cli.Ledger != "" {
		db := sqlite.NewDB(cli.Ledger)
		if err := db.Open(); err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { db.Close() }
		ledger = sqlite.NewLedger(db)
	}

	runner := &pipeline.Runner{
		Source:  skyhttp.NewSource(nil),
		Fetcher: skyslog.NewLoggingFetcher(skyhttp.NewFetcher(), logger),
		Text:    pdf.NewExtractor(),
		Extractor: skyslog.NewLoggingExtractor(&pipeline.Extractor{
			Primary:  primaryExtractor,
			Fallback: tabular.NewExtractor(),
		}, logger),
		Geocoder: skyslog.NewLoggingGeocoder(&pipeline.Geocoder{
			Primary:  primaryGeocoder,
			Fallback: fallbackGeo,
		}, logger),
		Store:       store,
		Ledger:      ledger,
		Limiter:     pipeline.NewHostLimiter(cli.RateLimit),
		Logger:      logger,
		Concurrency: cli.Concurrency,
		Timeout:     cli.Timeout,
	}

	return runner, cleanup, nil
}
