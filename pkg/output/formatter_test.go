package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/neurograph/pkg/analysis"
	"github.com/ritzau/neurograph/pkg/model"
)

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	summary := &analysis.Summary{
		Scenario:        "glutamate",
		Epicenter:       "tbi_injury_zone",
		Nodes:           10008,
		Edges:           10006,
		NodesByType:     map[model.NodeType]int{model.NodeTypePopulation: 4, model.NodeTypeSecondary: 10000},
		SecondaryByKind: map[string]int{"ligand": 10000},
		EdgesByType:     map[model.EdgeType]int{model.EdgeSynapse: 2, model.EdgeActivates: 10000, model.EdgeDamages: 2},
		AffectedRadius:  150,
		Affected:        []string{"excitatory_neurons_hippocampus"},
		Unaffected:      []string{"excitatory_neurons_cortex"},
		Loops:           []analysis.LoopSummary{{Populations: []string{"excitatory_neurons_hippocampus"}, Secondaries: 12, Size: 13}},
		LargestLoop:     13,
		Reach:           10004,
	}

	var buf bytes.Buffer
	PrintSummary(&buf, summary, "data/synthetic/out.json")
	out := buf.String()

	for _, want := range []string{
		"neurograph - glutamate",
		"Nodes: 10008",
		"Written: data/synthetic/out.json",
		"ligand",
		"releases             0",
		"Affected populations (1):",
		"excitatory_neurons_cortex (unaffected)",
		"Feedback loops: 1 (largest 13 nodes)",
		"Reach from tbi_injury_zone: 10004 node(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "brain_region") {
		t.Error("Node types with zero count should be omitted")
	}
}

func TestPrintSummaryWithoutPath(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, &analysis.Summary{Scenario: "tbi"}, "")

	if strings.Contains(buf.String(), "Written:") {
		t.Error("Expected no output path line")
	}
	if !strings.Contains(buf.String(), "Affected populations: none") {
		t.Errorf("Expected empty affected set, got:\n%s", buf.String())
	}
}
