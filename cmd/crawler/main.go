package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-crawl-books/config"
	"github.com/aluiziolira/go-crawl-books/models"
	"github.com/aluiziolira/go-crawl-books/schedule"
	"github.com/aluiziolira/go-crawl-books/scraper"
	"github.com/aluiziolira/go-crawl-books/sink"
)

func main() {
	defaultCfg := config.DefaultConfig()
	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("CRAWLER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid CRAWLER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	workersDefault := defaultCfg.Workers
	if value, ok, err := config.EnvInt("CRAWLER_WORKERS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid CRAWLER_WORKERS: %v\n", err)
		os.Exit(1)
	} else if ok {
		workersDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("CRAWLER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("CRAWLER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	maxPages := flag.Int("pages", pagesDefault, "Maximum catalogue pages to walk (0 = all)")
	workers := flag.Int("workers", workersDefault, "Number of concurrent detail fetches")
	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Base URL to crawl")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: json, csv, or dual")
	triggerTime := flag.String("trigger", defaultCfg.TriggerTime, "Daily run time (HH:MM)")
	testDelaySec := flag.Int("test-delay", int(defaultCfg.TestDelay/time.Second), "Verification run this many seconds after startup (0 disables)")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	once := flag.Bool("once", false, "Run a single crawl immediately and exit")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.BaseURL = strings.TrimSuffix(*baseURL, "/")
	cfg.CatalogueTemplate = cfg.BaseURL + "/catalogue/page-%d.html"
	cfg.MaxPages = *maxPages
	cfg.Workers = *workers
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.TriggerTime = *triggerTime
	cfg.TestDelay = time.Duration(*testDelaySec) * time.Second
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	out, err := createSink(cfg)
	if err != nil {
		slog.Error("creating sink", slog.Any("error", err))
		os.Exit(1)
	}

	runner, err := scraper.NewRunner(cfg, out)
	if err != nil {
		slog.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(runner.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	runOnce := func(runCtx context.Context) {
		result, err := runner.Run(runCtx)
		if err != nil {
			slog.Error("run failed", slog.Any("error", err))
			return
		}
		printSummary(result, cfg.OutputFile)
	}

	if *once {
		runOnce(ctx)
	} else {
		trigger, err := schedule.ParseTrigger(cfg.TriggerTime)
		if err != nil {
			slog.Error("invalid trigger time", slog.Any("error", err))
			os.Exit(1)
		}
		sched := schedule.New([]schedule.Trigger{trigger}, cfg.PollInterval, schedule.SystemClock(), runOnce)
		slog.Info("daily run scheduled", slog.String("at", trigger.String()))
		if cfg.TestDelay > 0 {
			verification := sched.AddTriggerAfter(cfg.TestDelay)
			slog.Info("verification run scheduled", slog.String("at", verification.String()))
		}
		if err := sched.Run(ctx); err != nil {
			slog.Error("scheduler exited with fault", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
}

func createSink(cfg *config.Config) (sink.Sink, error) {
	switch cfg.OutputFormat {
	case "json":
		return sink.NewJSONSink(cfg.OutputFile, cfg.DedupeMaxSize), nil
	case "csv":
		return sink.NewCSVSink(cfg.OutputFile, cfg.DedupeMaxSize), nil
	case "dual":
		csvFile := strings.TrimSuffix(cfg.OutputFile, ".json") + ".csv"
		return sink.NewDualSink(cfg.OutputFile, csvFile, cfg.DedupeMaxSize), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
}

func printSummary(result *models.RunResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")
	fmt.Printf("  Pages walked:  %d\n", result.PagesWalked)
	fmt.Printf("  Books found:   %d\n", result.TotalURLs)
	fmt.Printf("  Succeeded:     %d\n", result.SuccessCount)
	fmt.Printf("  Failed:        %d\n", result.FailureCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	duration := result.EndTime.Sub(result.StartTime)
	fmt.Printf("  Duration:      %v\n", duration)
	if duration.Seconds() > 0 {
		fmt.Printf("  Items/sec:     %.2f\n", float64(result.SuccessCount)/duration.Seconds())
	}
	if result.Persisted {
		fmt.Printf("  Output file:   %s\n", outputFile)
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
