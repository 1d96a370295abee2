package pubsub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func publishSteps(t *testing.T, pub Publisher, states ...string) {
	t.Helper()
	for i, state := range states {
		status := GenerationStatus{State: state, Step: i + 1, Total: len(states), Scenario: "glutamate", Seed: 42}
		if err := pub.Publish(TopicGeneration, state, status); err != nil {
			t.Fatalf("Failed to publish %s: %v", state, err)
		}
	}
}

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
	return Event{}
}

func expectNone(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGenerationReplay(t *testing.T) {
	pub := NewGenerationPublisher()
	defer pub.Close()

	publishSteps(t, pub, "loading", "generating", "exporting", "summarizing", "ready")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGeneration)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	for i, want := range []string{"loading", "generating", "exporting", "summarizing", "ready"} {
		event := receive(t, sub)
		if event.Type != want {
			t.Errorf("Expected event %d to be %s, got %s", i, want, event.Type)
		}
		var status GenerationStatus
		if err := event.Decode(&status); err != nil {
			t.Fatalf("Failed to decode status: %v", err)
		}
		if status.Seed != 42 || status.Step != i+1 {
			t.Errorf("Unexpected status payload %+v", status)
		}
	}
	expectNone(t, sub)
}

func TestEventBufferTrimsOldest(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic("test", TopicConfig{BufferSize: 3, ReplayAll: true})

	for i := 1; i <= 5; i++ {
		if err := pub.Publish("test", "event", map[string]int{"num": i}); err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive the last 3 events (3, 4, 5)
	for want := 3; want <= 5; want++ {
		if event := receive(t, sub); event.Version != want {
			t.Errorf("Expected version %d, got %d", want, event.Version)
		}
	}
}

func TestSnapshotReplayLastOnly(t *testing.T) {
	pub := NewGenerationPublisher()
	defer pub.Close()

	for seed := uint64(1); seed <= 3; seed++ {
		if err := pub.Publish(TopicSnapshot, "snapshot", SnapshotInfo{Scenario: "tbi", Seed: seed, Nodes: 8006}); err != nil {
			t.Fatalf("Failed to publish snapshot: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicSnapshot)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	var info SnapshotInfo
	if err := receive(t, sub).Decode(&info); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if info.Seed != 3 {
		t.Errorf("Expected latest snapshot seed 3, got %d", info.Seed)
	}
	expectNone(t, sub)
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	publishSteps(t, pub, "loading", "generating")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGeneration)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Topic is not configured, so nothing is replayed
	expectNone(t, sub)

	publishSteps(t, pub, "ready")
	if event := receive(t, sub); event.Version != 3 {
		t.Errorf("Expected version 3, got %d", event.Version)
	}
}

func TestContextCancelUnsubscribes(t *testing.T) {
	pub := NewGenerationPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := pub.Subscribe(ctx, TopicGeneration); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if pub.SubscriberCount(TopicGeneration) != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", pub.SubscriberCount(TopicGeneration))
	}

	cancel()

	deadline := time.Now().Add(time.Second)
	for pub.SubscriberCount(TopicGeneration) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Subscription was not removed after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewGenerationPublisher()

	sub, err := pub.Subscribe(context.Background(), TopicGeneration)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Error("Expected subscription channel to be closed")
	}
	if err := pub.Publish(TopicGeneration, "ready", GenerationStatus{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if _, err := pub.Subscribe(context.Background(), TopicGeneration); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicGeneration, Type: "ready", Data: []byte(`{"state":"ready"}`), Version: 7}

	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "event: ready\nid: 7\ndata: {") {
		t.Errorf("Unexpected SSE framing: %q", out)
	}
	if !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("Expected blank line terminator, got %q", out)
	}
	if !strings.Contains(out, `"data":{"state":"ready"}`) {
		t.Errorf("Expected raw payload to be embedded, got %q", out)
	}
}
