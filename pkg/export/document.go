// Package export turns a generated graph into the metadata + elements document
// consumed by graph visualization tools, and writes it to date-stamped files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/scenario"
)

// DateLayout is the format of the metadata date and the {date} placeholder
const DateLayout = "2006-01-02"

// DefaultFileName is used when a scenario has no output template
const DefaultFileName = "{name}_{date}.json"

var snapshotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ritzau/neurograph/snapshot"))

// Meta holds the per-run values that are not part of the scenario
type Meta struct {
	Author string
	Date   string // DateLayout; overridden by a date pinned in the scenario
	Seed   uint64
	RunID  uuid.UUID // Omitted when nil
}

// Document is the serialized snapshot
type Document struct {
	Metadata map[string]any `json:"metadata"`
	Elements Elements       `json:"elements"`
}

// Elements holds the node and edge lists in graph order
type Elements struct {
	Nodes []NodeElement `json:"nodes"`
	Edges []EdgeElement `json:"edges"`
}

// NodeElement is one serialized node
type NodeElement struct {
	Data     map[string]any `json:"data"`
	Position model.Position `json:"position"`
}

// EdgeElement is one serialized edge
type EdgeElement struct {
	Data map[string]any `json:"data"`
}

// NewDocument builds the document for g. Metadata entries from the scenario
// never replace the standard keys.
func NewDocument(g *model.Graph, s *scenario.Scenario, meta Meta) *Document {
	metadata := make(map[string]any, len(s.Metadata)+8)
	for k, v := range s.Metadata {
		metadata[k] = v
	}

	date := meta.Date
	if s.Date != "" {
		date = s.Date
	}

	metadata["title"] = s.Title
	metadata["description"] = s.Description
	metadata["author"] = meta.Author
	metadata["date"] = date
	metadata["version"] = s.Version
	metadata["scenario"] = s.Name
	metadata["seed"] = strconv.FormatUint(meta.Seed, 10)
	if meta.RunID != uuid.Nil {
		metadata["run_id"] = meta.RunID.String()
	}

	doc := &Document{
		Metadata: metadata,
		Elements: Elements{
			Nodes: make([]NodeElement, 0, g.NodeCount()),
			Edges: make([]EdgeElement, 0, g.EdgeCount()),
		},
	}

	for _, n := range g.Nodes() {
		doc.Elements.Nodes = append(doc.Elements.Nodes, NewNodeElement(n))
	}
	for _, e := range g.Edges() {
		doc.Elements.Edges = append(doc.Elements.Edges, NewEdgeElement(e))
	}
	return doc
}

// NewNodeElement flattens a node. Attribute fields cannot shadow id, label or node_type.
func NewNodeElement(n model.Node) NodeElement {
	data := make(map[string]any, 6)
	if n.Attrs != nil {
		for k, v := range n.Attrs.Fields() {
			data[k] = v
		}
	}
	data["id"] = n.ID
	data["label"] = n.Label
	data["node_type"] = string(n.Type())
	return NodeElement{Data: data, Position: n.Position}
}

// NewEdgeElement flattens an edge
func NewEdgeElement(e model.Edge) EdgeElement {
	data := e.Fields()
	data["id"] = e.ID
	data["source"] = e.Source
	data["target"] = e.Target
	data["label"] = e.Label
	data["edge_type"] = string(e.Type)
	return EdgeElement{Data: data}
}

// SnapshotID derives a run id from the scenario and seed. The same inputs give
// the same id, so regenerated files stay byte-identical.
func SnapshotID(s *scenario.Scenario, seed uint64) (uuid.UUID, error) {
	data, err := scenario.Marshal(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal scenario: %w", err)
	}
	data = strconv.AppendUint(append(data, '\n'), seed, 10)
	return uuid.NewSHA1(snapshotNamespace, data), nil
}

// Today formats t in DateLayout
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// FileName expands the {name} and {date} placeholders of template
func FileName(template, name, date string) string {
	if template == "" {
		template = DefaultFileName
	}
	return strings.NewReplacer("{name}", name, "{date}", date).Replace(template)
}

// Encode writes doc as indented JSON
func Encode(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}

// WriteFile writes doc to dir/name, creating dir as needed. The file is
// replaced atomically so watchers never see a partial document.
func WriteFile(dir, name string, doc *Document) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
