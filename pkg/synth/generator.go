package synth

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/ritzau/neurograph/pkg/logging"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/spatial"
	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest number of secondary nodes handed to one worker
const minChunk = 512

// Options configures a generation run
type Options struct {
	Seed       uint64 // Same seed and scenario give an identical graph
	Workers    int    // Parallel workers; <= 0 means GOMAXPROCS
	BruteForce bool   // Use the all-pairs scan instead of the spatial grid
}

// Generator assembles graphs for one scenario
type Generator struct {
	scenario  *scenario.Scenario
	opts      Options
	epicenter model.Position
}

// NewGenerator validates the scenario and prepares a generator. Configuration
// problems are reported here, before any generation work.
func NewGenerator(s *scenario.Scenario, opts Options) (*Generator, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no scenario", scenario.ErrInvalidConfig)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	epicenter, _ := s.EpicenterNode()
	return &Generator{
		scenario:  s,
		opts:      opts,
		epicenter: epicenter.Position(),
	}, nil
}

// Generate builds the graph: fixed nodes, secondary nodes, membership, then the
// fixed, link, release, effect, and damage edge families in that order.
// Either the whole graph is returned or an error and no graph.
func (g *Generator) Generate(ctx context.Context) (*model.Graph, error) {
	start := time.Now()
	factory := NewEntityFactory(g.opts.Seed, g.epicenter)
	edges := NewEdgeSynthesizer(g.scenario)

	fixed := factory.Fixed(g.scenario.Nodes)
	var populations []model.Node
	for _, n := range fixed {
		if n.Type() == model.NodeTypePopulation {
			populations = append(populations, n)
		}
	}

	phase := time.Now()
	secondaries, links, err := g.place(ctx, factory, edges)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "placed secondary nodes", "count", len(secondaries), "durationMs", time.Since(phase).Milliseconds())

	affected := Affected(populations, g.epicenter, g.scenario.Rules.AffectedRadius)
	logging.DebugContext(ctx, "resolved affected populations", "affected", affected.Len(), "populations", len(populations))

	phase = time.Now()
	index, err := g.index(secondaries)
	if err != nil {
		return nil, err
	}
	releases, effects, err := g.proximity(ctx, edges, populations, secondaries, index, affected)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "derived proximity edges", "bruteForce", g.opts.BruteForce, "durationMs", time.Since(phase).Milliseconds())

	b := model.NewBuilder(len(fixed)+len(secondaries), len(g.scenario.Synapses)+len(links)+affected.Len())
	if err := b.AddNodes(fixed); err != nil {
		return nil, err
	}
	for _, sec := range secondaries {
		if err := b.AddNode(sec.node); err != nil {
			return nil, err
		}
	}
	if err := b.AddEdges(edges.Fixed(g.scenario.Synapses)); err != nil {
		return nil, err
	}
	if err := b.AddEdges(links); err != nil {
		return nil, err
	}
	for _, family := range [][][]model.Edge{releases, effects} {
		for _, perPopulation := range family {
			if err := b.AddEdges(perPopulation); err != nil {
				return nil, err
			}
		}
	}
	if err := b.AddEdges(edges.Damages(affected)); err != nil {
		return nil, err
	}

	graph := b.Build()
	logging.InfoContext(ctx, "generated graph",
		"scenario", g.scenario.Name,
		"nodes", graph.NodeCount(),
		"edges", graph.EdgeCount(),
		"durationMs", time.Since(start).Milliseconds(),
	)
	return graph, nil
}

// place draws every secondary node and its epicenter link. Index ranges are
// split across workers; each worker writes only its own slots.
func (g *Generator) place(ctx context.Context, factory *EntityFactory, edges *EdgeSynthesizer) ([]secondary, []model.Edge, error) {
	batches := g.scenario.Batches

	// ends[b] is one past the last global slot of batch b
	ends := make([]int, len(batches))
	total := 0
	for b, batch := range batches {
		total += batch.Count
		ends[b] = total
	}

	secondaries := make([]secondary, total)
	links := make([]model.Edge, total)

	chunk := max(minChunk, (total+g.opts.Workers-1)/max(g.opts.Workers, 1))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)

	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		eg.Go(func() error {
			for k := lo; k < hi; k++ {
				if (k-lo)%minChunk == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}
				b := sort.SearchInts(ends, k+1)
				start := ends[b] - batches[b].Count

				sec, err := factory.Secondary(b, &batches[b], k-start)
				if err != nil {
					return fmt.Errorf("%w: %w", scenario.ErrInvalidConfig, err)
				}
				secondaries[k] = sec
				links[k] = edges.Link(sec)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return secondaries, links, nil
}

// index builds the radius query structure over the secondary positions
func (g *Generator) index(secondaries []secondary) (spatial.Index, error) {
	positions := make([]model.Position, len(secondaries))
	for i, sec := range secondaries {
		positions[i] = sec.node.Position
	}

	radius := g.scenario.MaxRadius()
	if g.opts.BruteForce || radius == 0 || len(positions) == 0 {
		return spatial.Scan(positions), nil
	}
	grid, err := spatial.NewGrid(positions, radius)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scenario.ErrInvalidConfig, err)
	}
	logging.Debug("built spatial grid", "cells", grid.Cells(), "cellSize", radius)
	return grid, nil
}

// proximity derives release and effect edges with one task per population and
// family. Results are kept per population so the merge order is fixed.
func (g *Generator) proximity(ctx context.Context, edges *EdgeSynthesizer, populations []model.Node, secondaries []secondary, index spatial.Index, affected Membership) ([][]model.Edge, [][]model.Edge, error) {
	releases := make([][]model.Edge, len(populations))
	effects := make([][]model.Edge, len(populations))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)

	for p, pop := range populations {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			releases[p] = edges.Releases(pop, secondaries, index, affected)
			return nil
		})
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			effects[p] = edges.Effects(pop, secondaries, index)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return releases, effects, nil
}
