package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/neurograph/pkg/export"
	"github.com/ritzau/neurograph/pkg/graph"
	"github.com/ritzau/neurograph/pkg/logging"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/pubsub"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/synth"
)

// Pipeline steps reported on pubsub.TopicGeneration
const (
	StateLoading     = "loading"
	StateGenerating  = "generating"
	StateExporting   = "exporting"
	StateSummarizing = "summarizing"
	StateReady       = "ready"
	StateError       = "error"

	totalSteps = 4
)

// Snapshot is the complete result of one run. It is never modified after it
// has been handed to a Store.
type Snapshot struct {
	Scenario    *scenario.Scenario
	Graph       *model.Graph
	Document    *export.Document
	Summary     *Summary
	Network     *graph.Network
	Changes     *export.Diff // Relative to the previous snapshot
	Seed        uint64
	RunID       uuid.UUID
	Path        string // Exported file; empty when nothing was written
	GeneratedAt time.Time
}

// Store receives each completed snapshot
type Store interface {
	SetSnapshot(*Snapshot)
}

// Options configures a Runner
type Options struct {
	Scenario   string // Built-in name or path to a YAML scenario
	Overrides  scenario.Overrides
	Seed       uint64
	Workers    int
	BruteForce bool

	Write   bool   // Export each snapshot to OutDir
	OutDir  string // Output directory
	OutName string // Explicit file name; empty expands the scenario's template
	Author  string

	Now func() time.Time // Clock for the metadata date; defaults to time.Now
}

// RunOptions configures a single run
type RunOptions struct {
	Reason string // e.g. "startup", "scenario changed", "api request"
	Seed   uint64 // Non-zero replaces the runner's seed from this run on
	Reload bool   // Re-read the scenario file before generating
}

// Runner orchestrates load, generate, export, and summarize. Runs are
// serialized; each one either publishes a complete snapshot or nothing.
type Runner struct {
	opts      Options
	publisher pubsub.Publisher
	store     Store

	mu       sync.Mutex // Prevent concurrent runs
	scenario *scenario.Scenario
	seed     uint64
	latest   *Snapshot
}

// NewRunner resolves and validates the scenario so configuration errors surface
// before the first run. The publisher and store may be nil.
func NewRunner(opts Options, publisher pubsub.Publisher, store Store) (*Runner, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s, err := load(opts.Scenario, opts.Overrides)
	if err != nil {
		return nil, err
	}

	return &Runner{
		opts:      opts,
		publisher: publisher,
		store:     store,
		scenario:  s,
		seed:      opts.Seed,
	}, nil
}

func load(ref string, overrides scenario.Overrides) (*scenario.Scenario, error) {
	s, err := scenario.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(overrides); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ScenarioFile returns the path of the scenario file, or "" for a built-in scenario
func (r *Runner) ScenarioFile() string {
	if scenario.IsBuiltin(r.opts.Scenario) {
		return ""
	}
	return r.opts.Scenario
}

// Latest returns the most recent snapshot, or nil before the first successful run
func (r *Runner) Latest() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Regenerate runs the pipeline with a new seed, or the current one when seed is 0
func (r *Runner) Regenerate(ctx context.Context, seed uint64, reason string) (*Snapshot, error) {
	return r.Run(ctx, RunOptions{Reason: reason, Seed: seed})
}

// Run executes the pipeline. On failure the previous snapshot stays current.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seed := r.seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	logging.InfoContext(ctx, "starting generation", "reason", opts.Reason, "scenario", r.scenario.Name, "seed", seed)
	status := pubsub.GenerationStatus{
		Scenario: r.scenario.Name,
		Seed:     seed,
		Reason:   opts.Reason,
		Total:    totalSteps,
	}

	snapshot, err := r.run(ctx, opts, seed, &status)
	if err != nil {
		logging.ErrorContext(ctx, "generation failed", "reason", opts.Reason, "error", err)
		status.State, status.Message, status.Error = StateError, "Generation failed", err.Error()
		r.publish(pubsub.TopicGeneration, status.State, status)
		return nil, err
	}

	var prev *export.Document
	if r.latest != nil {
		prev = r.latest.Document
	}
	snapshot.Changes = export.Compare(prev, snapshot.Document)

	r.seed = seed
	r.latest = snapshot
	if r.store != nil {
		r.store.SetSnapshot(snapshot)
	}

	status.State, status.Message, status.Step = StateReady, "Generation complete", totalSteps
	r.publish(pubsub.TopicGeneration, status.State, status)
	r.publish(pubsub.TopicSnapshot, "snapshot", pubsub.SnapshotInfo{
		Scenario: snapshot.Scenario.Name,
		Seed:     snapshot.Seed,
		RunID:    snapshot.RunID.String(),
		Nodes:    snapshot.Graph.NodeCount(),
		Edges:    snapshot.Graph.EdgeCount(),
		Path:     snapshot.Path,
		Changes:  snapshot.Changes.String(),
	})

	logging.InfoContext(ctx, "generation complete", "reason", opts.Reason, "nodes", snapshot.Graph.NodeCount(), "edges", snapshot.Graph.EdgeCount(), "changes", snapshot.Changes.String())
	return snapshot, nil
}

func (r *Runner) run(ctx context.Context, opts RunOptions, seed uint64, status *pubsub.GenerationStatus) (*Snapshot, error) {
	step := func(state, message string) {
		status.Step++
		status.State, status.Message = state, message
		r.publish(pubsub.TopicGeneration, state, *status)
	}

	// Phase 1: Scenario
	step(StateLoading, "Loading scenario...")
	s := r.scenario
	if opts.Reload && r.ScenarioFile() != "" {
		reloaded, err := load(r.opts.Scenario, r.opts.Overrides)
		if err != nil {
			return nil, fmt.Errorf("reload scenario: %w", err)
		}
		s = reloaded
		status.Scenario = s.Name
	}

	// Phase 2: Graph
	step(StateGenerating, "Generating graph...")
	generator, err := synth.NewGenerator(s, synth.Options{Seed: seed, Workers: r.opts.Workers, BruteForce: r.opts.BruteForce})
	if err != nil {
		return nil, err
	}
	g, err := generator.Generate(ctx)
	if err != nil {
		return nil, err
	}

	// Phase 3: Document
	step(StateExporting, "Exporting document...")
	runID, err := export.SnapshotID(s, seed)
	if err != nil {
		return nil, err
	}
	now := r.opts.Now()
	date := export.Today(now)
	if s.Date != "" {
		date = s.Date
	}
	doc := export.NewDocument(g, s, export.Meta{Author: r.opts.Author, Date: date, Seed: seed, RunID: runID})

	var path string
	if r.opts.Write {
		// A cancelled run must not leave a file behind
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := r.opts.OutName
		if name == "" {
			name = export.FileName(s.Output, s.Name, date)
		}
		path, err = export.WriteFile(r.opts.OutDir, filepath.Clean(name), doc)
		if err != nil {
			return nil, err
		}
		logging.InfoContext(ctx, "wrote snapshot", "path", path)
	}

	// Phase 4: Summary
	step(StateSummarizing, "Summarizing graph...")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	network := graph.NewNetwork(g)
	summary := summarize(g, s, network)

	r.scenario = s
	return &Snapshot{
		Scenario:    s,
		Graph:       g,
		Document:    doc,
		Summary:     summary,
		Network:     network,
		Seed:        seed,
		RunID:       runID,
		Path:        path,
		GeneratedAt: now,
	}, nil
}

func (r *Runner) publish(topic, eventType string, data any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(topic, eventType, data); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		logging.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
