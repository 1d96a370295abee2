package watcher

// ChangeAnalysis describes what a change requires
type ChangeAnalysis struct {
	NeedRegenerate bool   // Reload the scenario and regenerate the snapshot
	NeedRestart    bool   // The change only takes effect after a restart
	Reason         string // Human-readable trigger, used as the run reason
	ChangedFiles   []string
}

// AnalyzeChanges decides how to react to a debounced change event
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeScenario:
		analysis.NeedRegenerate = true
		analysis.Reason = "scenario changed"

	case ChangeTypeConfig:
		// Flags and environment were merged at startup
		analysis.NeedRestart = true
		analysis.Reason = "config changed"
	}

	return analysis
}
