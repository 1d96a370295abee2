package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebouncerMergesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		input <- ChangeEvent{Type: ChangeTypeScenario, Paths: []string{"/tmp/scenario.yaml"}}
	}
	input <- ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"/tmp/neurograph.toml"}}

	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeScenario {
			t.Errorf("Expected scenario change first, got %v", event.Type)
		}
		if len(event.Paths) != 1 {
			t.Errorf("Expected duplicate paths to collapse, got %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for debounced event")
	}

	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeConfig {
			t.Errorf("Expected config change second, got %v", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for config event")
	}

	select {
	case event := <-d.Output():
		t.Errorf("Unexpected extra event %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 200*time.Millisecond, 300*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// Keep the quiet period from ever elapsing
	stop := time.After(600 * time.Millisecond)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	got := false
	for !got {
		select {
		case <-tick.C:
			input <- ChangeEvent{Type: ChangeTypeScenario, Paths: []string{"s.yaml"}}
		case <-d.Output():
			got = true
		case <-stop:
			t.Fatal("Max wait did not force a flush")
		}
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeScenario, Paths: []string{"s.yaml"}}
	close(input)

	event, ok := <-d.Output()
	if !ok || event.Type != ChangeTypeScenario {
		t.Fatalf("Expected pending event on close, got %+v (ok=%v)", event, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("Expected output to be closed")
	}
}

func TestAnalyzeChanges(t *testing.T) {
	scenario := AnalyzeChanges(ChangeEvent{Type: ChangeTypeScenario, Paths: []string{"s.yaml"}})
	if !scenario.NeedRegenerate || scenario.NeedRestart {
		t.Errorf("Scenario change should regenerate without restart: %+v", scenario)
	}
	if scenario.Reason != "scenario changed" {
		t.Errorf("Unexpected reason %q", scenario.Reason)
	}

	config := AnalyzeChanges(ChangeEvent{Type: ChangeTypeConfig, Paths: []string{"neurograph.toml"}})
	if config.NeedRegenerate || !config.NeedRestart {
		t.Errorf("Config change should only ask for a restart: %+v", config)
	}
}

func TestFileWatcherReportsScenarioWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "notes.txt")

	fw, err := NewFileWatcher()
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	if err := fw.AddFile(path, ChangeTypeScenario); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-fw.Events():
		if event.Type != ChangeTypeScenario {
			t.Errorf("Expected scenario change, got %v", event.Type)
		}
		for _, p := range event.Paths {
			if filepath.Base(p) != "scenario.yaml" {
				t.Errorf("Unwatched file reported: %s", p)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change event")
	}

	cancel()
	for range fw.Events() {
	}
}
