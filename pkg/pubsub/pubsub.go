// Package pubsub fans generation events out to in-process subscribers such as
// the SSE endpoints of the web server.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the generation runner
const (
	TopicGeneration = "generation" // GenerationStatus events, one per pipeline step
	TopicSnapshot   = "snapshot"   // SnapshotInfo events, one per completed graph
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic
	Type    string          `json:"type"`    // Event type, e.g. "generating", "ready", "error"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic sequence number
}

// Decode unmarshals the event payload into v
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation closes the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// GenerationStatus reports progress of one generation run
type GenerationStatus struct {
	State    string `json:"state"`           // loading, generating, exporting, summarizing, ready, error
	Message  string `json:"message"`         // Human-readable status message
	Step     int    `json:"step"`            // Current step number (1-based)
	Total    int    `json:"total"`           // Total number of steps
	Scenario string `json:"scenario"`        // Scenario name
	Seed     uint64 `json:"seed,string"`     // Seed of the run
	Reason   string `json:"reason"`          // What triggered the run, e.g. "startup", "scenario changed"
	Error    string `json:"error,omitempty"` // Failure message for the error state
}

// SnapshotInfo describes a newly published graph snapshot
type SnapshotInfo struct {
	Scenario string `json:"scenario"`
	Seed     uint64 `json:"seed,string"`
	RunID    string `json:"run_id"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Path     string `json:"path,omitempty"` // Exported file, when written
	Changes  string `json:"changes"`        // Summary of the diff against the previous snapshot
}
