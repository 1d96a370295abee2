package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
	"github.com/ritzau/neurograph/pkg/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTBI(t *testing.T) *scenario.Scenario {
	t.Helper()
	s := scenario.TBI()
	require.NoError(t, s.Apply(scenario.Overrides{Counts: map[string]int{"inflammation": 20, "damaged_neuron": 10}}))
	return s
}

func build(t *testing.T, s *scenario.Scenario, seed uint64) *model.Graph {
	t.Helper()
	g, err := synth.NewGenerator(s, synth.Options{Seed: seed})
	require.NoError(t, err)
	graph, err := g.Generate(context.Background())
	require.NoError(t, err)
	return graph
}

func encode(t *testing.T, doc *Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	return buf.Bytes()
}

func TestNewDocumentMetadata(t *testing.T) {
	s := smallTBI(t)
	runID := uuid.New()
	doc := NewDocument(build(t, s, 7), s, Meta{Author: "lab", Date: "2026-01-02", Seed: 7, RunID: runID})

	assert.Equal(t, s.Title, doc.Metadata["title"])
	assert.Equal(t, "lab", doc.Metadata["author"])
	assert.Equal(t, "2026-01-02", doc.Metadata["date"])
	assert.Equal(t, "7", doc.Metadata["seed"])
	assert.Equal(t, "tbi", doc.Metadata["scenario"])
	assert.Equal(t, runID.String(), doc.Metadata["run_id"])
	assert.Equal(t, s.Metadata["investment_goal"], doc.Metadata["investment_goal"])
}

func TestNewDocumentPinnedDate(t *testing.T) {
	s := smallTBI(t)
	s.Date = "2025-03-11"
	doc := NewDocument(build(t, s, 1), s, Meta{Date: "2026-01-02"})

	assert.Equal(t, "2025-03-11", doc.Metadata["date"])
	assert.NotContains(t, doc.Metadata, "run_id")
}

func TestScenarioMetadataCannotShadowStandardKeys(t *testing.T) {
	s := smallTBI(t)
	s.Metadata = map[string]string{"title": "spoofed", "lab": "north"}
	doc := NewDocument(build(t, s, 1), s, Meta{})

	assert.Equal(t, s.Title, doc.Metadata["title"])
	assert.Equal(t, "north", doc.Metadata["lab"])
}

func TestDocumentElements(t *testing.T) {
	s := smallTBI(t)
	graph := build(t, s, 3)
	doc := NewDocument(graph, s, Meta{})

	require.Len(t, doc.Elements.Nodes, graph.NodeCount())
	require.Len(t, doc.Elements.Edges, graph.EdgeCount())

	first := doc.Elements.Nodes[0]
	assert.Equal(t, "mouse_brain", first.Data["id"])
	assert.Equal(t, "organ", first.Data["node_type"])

	var marker NodeElement
	for _, n := range doc.Elements.Nodes {
		if n.Data["id"] == "inflammation_0" {
			marker = n
		}
	}
	require.NotNil(t, marker.Data)
	assert.Equal(t, "secondary", marker.Data["node_type"])
	assert.Equal(t, "inflammatory", marker.Data["category"])
	assert.Contains(t, marker.Data, "level")

	for _, e := range doc.Elements.Edges {
		assert.NotEmpty(t, e.Data["id"])
		assert.NotEmpty(t, e.Data["edge_type"])
	}
}

func TestEdgeElementOmitsMissingStrength(t *testing.T) {
	e := NewEdgeElement(model.Edge{ID: "injury_to_cortex", Source: "tbi", Target: "cortex", Label: "Damages", Type: model.EdgeDamages})
	assert.NotContains(t, e.Data, "strength")

	e = NewEdgeElement(model.Edge{ID: "e", Source: "a", Target: "b", Type: model.EdgeAffects, Strength: model.Strength(1)})
	assert.Equal(t, 1.0, e.Data["strength"])
}

func TestEncodeIsDeterministic(t *testing.T) {
	s := smallTBI(t)
	id, err := SnapshotID(s, 42)
	require.NoError(t, err)

	meta := Meta{Author: "lab", Date: "2026-01-02", Seed: 42, RunID: id}
	first := encode(t, NewDocument(build(t, s, 42), s, meta))

	again, err := SnapshotID(smallTBI(t), 42)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	meta.RunID = again
	second := encode(t, NewDocument(build(t, smallTBI(t), 42), smallTBI(t), meta))
	assert.Equal(t, first, second)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "elements")
}

func TestSnapshotIDDependsOnSeed(t *testing.T) {
	s := smallTBI(t)
	a, err := SnapshotID(s, 1)
	require.NoError(t, err)
	b, err := SnapshotID(s, 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"mouse_brain_tbi_simulation_{date}.json", "mouse_brain_tbi_simulation_2025-03-11.json"},
		{"{name}-{date}.json", "tbi-2025-03-11.json"},
		{"", "tbi_2025-03-11.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.template, "tbi", "2025-03-11"))
	}
}

func TestToday(t *testing.T) {
	assert.Equal(t, "2025-03-11", Today(time.Date(2025, 3, 11, 23, 59, 0, 0, time.UTC)))
}

func TestWriteFile(t *testing.T) {
	s := smallTBI(t)
	doc := NewDocument(build(t, s, 5), s, Meta{Date: "2026-01-02"})
	dir := filepath.Join(t.TempDir(), "data", "synthetic")

	path, err := WriteFile(dir, "out.json", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.json"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, encode(t, doc), written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}
