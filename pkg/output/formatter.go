package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/neurograph/pkg/analysis"
	"github.com/ritzau/neurograph/pkg/model"
)

var nodeTypeOrder = []model.NodeType{
	model.NodeTypeOrgan,
	model.NodeTypeInjury,
	model.NodeTypeRegion,
	model.NodeTypePopulation,
	model.NodeTypeSecondary,
}

var edgeTypeOrder = []model.EdgeType{
	model.EdgeSynapse,
	model.EdgeActivates,
	model.EdgeDamages,
	model.EdgeReleases,
	model.EdgeAffects,
}

// PrintSummary prints a colorized report of a generated graph. path is the
// exported file and may be empty.
func PrintSummary(w io.Writer, s *analysis.Summary, path string) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	title := fmt.Sprintf("neurograph - %s", s.Scenario)
	bold.Fprintln(w, title)
	bold.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "Edges: %d\n", s.Edges)
	if path != "" {
		fmt.Fprintf(w, "Written: %s\n", path)
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "NODES BY TYPE:")
	for _, t := range nodeTypeOrder {
		if n := s.NodesByType[t]; n > 0 {
			fmt.Fprintf(w, "  %-20s %d\n", t, n)
		}
	}
	for _, category := range s.Categories() {
		cyan.Fprintf(w, "    %-18s %d\n", category, s.SecondaryByKind[category])
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "EDGES BY TYPE:")
	for _, t := range edgeTypeOrder {
		n := s.EdgesByType[t]
		if n == 0 {
			yellow.Fprintf(w, "  %-20s %d\n", t, n)
			continue
		}
		fmt.Fprintf(w, "  %-20s %d\n", t, n)
	}
	fmt.Fprintln(w)

	// Affected populations
	fmt.Fprintf(w, "Affected radius: %g\n", s.AffectedRadius)
	if len(s.Affected) == 0 {
		green.Fprintln(w, "Affected populations: none")
	} else {
		red.Fprintf(w, "Affected populations (%d):\n", len(s.Affected))
		for _, id := range s.Affected {
			red.Fprintf(w, "  %s\n", id)
		}
	}
	for _, id := range s.Unaffected {
		fmt.Fprintf(w, "  %s (unaffected)\n", id)
	}
	fmt.Fprintln(w)

	// Feedback loops
	if len(s.Loops) == 0 {
		fmt.Fprintln(w, "Feedback loops: none")
	} else {
		yellow.Fprintf(w, "Feedback loops: %d (largest %d nodes)\n", len(s.Loops), s.LargestLoop)
		for _, loop := range s.Loops {
			fmt.Fprintf(w, "  %s with %d secondary node(s)\n", strings.Join(loop.Populations, ", "), loop.Secondaries)
		}
	}

	cyan.Fprintf(w, "Reach from %s: %d node(s)\n", s.Epicenter, s.Reach)
}
