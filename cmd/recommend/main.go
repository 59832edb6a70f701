// Package main is a one-shot command line client that prints recommendations
// for a single recipient profile, using the same catalog and ranking stack as
// the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/onnwee/giftbooks/internal/catalog"
	"github.com/onnwee/giftbooks/internal/config"
	"github.com/onnwee/giftbooks/internal/gift"
	"github.com/onnwee/giftbooks/internal/ranking"
	"github.com/onnwee/giftbooks/internal/recommend"
	"github.com/onnwee/giftbooks/internal/tracing"
	"github.com/onnwee/giftbooks/internal/validate"
)

const serviceName = "giftbooks-cli"

// errUsage marks errors caused by bad arguments (exit status 2).
var errUsage = errors.New("usage error")

// options holds the parsed command line.
type options struct {
	configPath string
	profile    gift.RecipientProfile
	timeout    time.Duration
	queryOnly  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// parseFlags turns args into options. Interests and notes are validated the
// same way the API validates them.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Giftbooks Recommendation CLI")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: recommend [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	var (
		opts         options
		age          string
		relationship string
		budget       string
		personality  string
		interests    string
		notes        string
	)
	fs.StringVar(&opts.configPath, "config", "", "path to YAML config file (optional)")
	fs.StringVar(&age, "age", "", "recipient age group (kid, teen, adult, senior)")
	fs.StringVar(&relationship, "relationship", "", "relationship to the recipient (partner, mom, dad, friend, coworker, child)")
	fs.StringVar(&budget, "budget", "", "budget tier (under25, 25to50, over50)")
	fs.StringVar(&personality, "personality", "", "personality (practical, sentimental, trendy, funny)")
	fs.StringVar(&interests, "interests", "", "comma-separated interests")
	fs.StringVar(&notes, "notes", "", "free-form notes (not used for matching)")
	fs.DurationVar(&opts.timeout, "timeout", 20*time.Second, "overall deadline")
	fs.BoolVar(&opts.queryOnly, "queries-only", false, "print the generated catalog queries without searching")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	var err error
	if interests, err = validate.Interests(interests); err != nil {
		return nil, fmt.Errorf("%w: interests: %w", errUsage, err)
	}
	if notes, err = validate.Notes(notes); err != nil {
		return nil, fmt.Errorf("%w: notes: %w", errUsage, err)
	}

	opts.profile = gift.RecipientProfile{
		AgeGroup:     gift.AgeGroup(age),
		Relationship: gift.Relationship(relationship),
		Budget:       gift.Budget(budget),
		Personality:  gift.Personality(personality),
		Interests:    interests,
		Notes:        notes,
	}
	return &opts, nil
}

// run executes one recommendation and writes the result to stdout as JSON.
// Logs go to stderr so stdout stays machine readable.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.queryOnly {
		return writeJSON(stdout, map[string][]string{"queries": gift.BuildQueries(opts.profile)})
	}

	cfg, errs := config.Load(opts.configPath)
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})).With("component", "cli")
	slog.SetDefault(logger)

	provider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		// Flush pending spans even when the main context was canceled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
	if err != nil {
		logger.Warn("ranking calibration not applied, using default weights", "error", err)
	}

	client := catalog.NewClient(catalog.Config{
		BaseURL: cfg.CatalogBaseURL,
		Limit:   cfg.CatalogLimit,
		Timeout: cfg.CatalogTimeout(),
	}, nil)
	service := recommend.NewService(client,
		recommend.WithRanker(gift.NewRanker(weights)),
		recommend.WithMaxConcurrentFetches(cfg.CatalogMaxConcurrentFetches),
	)

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	ctx, endSpan := tracing.StartSpan(ctx, "cli.recommend")
	result, err := service.Recommend(ctx, opts.profile)
	endSpan(err)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	return writeJSON(stdout, result)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
