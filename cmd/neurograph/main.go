package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ritzau/neurograph/pkg/analysis"
	"github.com/ritzau/neurograph/pkg/config"
	"github.com/ritzau/neurograph/pkg/logging"
	"github.com/ritzau/neurograph/pkg/output"
	"github.com/ritzau/neurograph/pkg/pubsub"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/watcher"
	"github.com/ritzau/neurograph/pkg/web"
	"github.com/spf13/pflag"
)

// Exit codes
const (
	exitError  = 1
	exitConfig = 2
)

func main() {
	flags := config.NewFlagSet("neurograph")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfig)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfig)
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configFile, _ := flags.GetString("config")
	if err := run(ctx, cfg, configFile); err != nil {
		logging.Error("neurograph failed", "error", err)
		if errors.Is(err, scenario.ErrInvalidConfig) {
			os.Exit(exitConfig)
		}
		os.Exit(exitError)
	}
}

func setupLogging(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		return err
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, configFile string) error {
	overrides, err := cfg.Overrides()
	if err != nil {
		return fmt.Errorf("%w: %w", scenario.ErrInvalidConfig, err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		logging.Info("derived seed from clock", "seed", seed)
	}

	var (
		server    *web.Server
		publisher pubsub.Publisher
		store     analysis.Store
	)
	if cfg.Serve {
		server = web.NewServer()
		publisher, store = server.Publisher(), server
	}

	runner, err := analysis.NewRunner(analysis.Options{
		Scenario:   cfg.Scenario,
		Overrides:  overrides,
		Seed:       seed,
		Workers:    cfg.Workers,
		BruteForce: cfg.BruteForce,
		Write:      true,
		OutDir:     cfg.OutDir,
		OutName:    cfg.Out,
		Author:     cfg.Author,
	}, publisher, store)
	if err != nil {
		return err
	}

	snapshot, err := runner.Run(ctx, analysis.RunOptions{Reason: "startup"})
	if err != nil {
		return err
	}
	if cfg.Summary {
		output.PrintSummary(os.Stdout, snapshot.Summary, snapshot.Path)
	} else {
		fmt.Printf("Wrote %d nodes and %d edges to %s\n", snapshot.Graph.NodeCount(), snapshot.Graph.EdgeCount(), snapshot.Path)
	}

	if !cfg.Serve && !cfg.Watch {
		return nil
	}

	if cfg.Watch {
		if err := startWatching(ctx, runner, configFile, cfg.Summary); err != nil {
			return err
		}
	}

	if cfg.Serve {
		server.SetRegenerator(runner)
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.Port)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("web server: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}

	<-ctx.Done()
	return nil
}

// startWatching regenerates whenever the scenario file changes. Failed
// regenerations are logged and the previous snapshot stays current.
func startWatching(ctx context.Context, runner *analysis.Runner, configFile string, summary bool) error {
	fw, err := watcher.NewFileWatcher()
	if err != nil {
		return err
	}
	if err := fw.AddFile(runner.ScenarioFile(), watcher.ChangeTypeScenario); err != nil {
		return err
	}
	if configFile == "" {
		configFile = config.DefaultFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := fw.AddFile(configFile, watcher.ChangeTypeConfig); err != nil {
			logging.Warn("cannot watch config file", "path", configFile, "error", err)
		}
	}
	fw.Start(ctx)

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			change := watcher.AnalyzeChanges(event)
			if change.NeedRestart {
				logging.Warn("config file changed; restart to apply", "paths", change.ChangedFiles)
			}
			if !change.NeedRegenerate {
				continue
			}

			snapshot, err := runner.Run(ctx, analysis.RunOptions{Reason: change.Reason, Reload: true})
			if err != nil {
				// Already logged and published by the runner
				continue
			}
			if summary {
				output.PrintSummary(os.Stdout, snapshot.Summary, snapshot.Path)
			}
		}
	}()

	return nil
}
