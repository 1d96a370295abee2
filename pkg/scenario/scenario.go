// Package scenario describes a synthetic network declaratively: which fixed
// nodes exist, which secondary batches are generated, and which proximity and
// category rules derive edges. New biological scenarios are configuration.
package scenario

import (
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/spatial"
)

// Scenario is the full description of one generated network
type Scenario struct {
	Name        string            `yaml:"name" validate:"required"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version"`
	Date        string            `yaml:"date"`     // Pinned metadata date; empty means the generation date
	Output      string            `yaml:"output"`   // File name template, e.g. "{name}_{date}.json"
	Metadata    map[string]string `yaml:"metadata"` // Extra metadata entries

	Epicenter string      `yaml:"epicenter" validate:"required"` // ID of the injury node
	Nodes     []FixedNode `yaml:"nodes" validate:"required,min=1,dive"`
	Batches   []Batch     `yaml:"batches" validate:"dive"`
	Synapses  []Synapse   `yaml:"synapses" validate:"dive"`
	Rules     Rules       `yaml:"rules"`
}

// FixedNode is a hand-placed anatomical node
type FixedNode struct {
	ID               string         `yaml:"id" validate:"required"`
	Label            string         `yaml:"label" validate:"required"`
	Type             model.NodeType `yaml:"type" validate:"required,oneof=organ injury brain_region neuronal_population"`
	X                float64        `yaml:"x"`
	Y                float64        `yaml:"y"`
	Description      string         `yaml:"description"`
	Neurotransmitter string         `yaml:"neurotransmitter"`
}

// Position returns the node's configured position
func (n FixedNode) Position() model.Position {
	return model.Position{X: n.X, Y: n.Y}
}

// Batch is a group of secondary nodes sampled around the epicenter
type Batch struct {
	Name        string `yaml:"name" validate:"required"` // ID prefix: <name>_<index>
	Label       string `yaml:"label" validate:"required"`
	Category    string `yaml:"category" validate:"required"`
	Description string `yaml:"description"`
	Count       int    `yaml:"count" validate:"gte=0"`

	// Exactly one of Spread (relative to the epicenter) or Region (absolute)
	Spread *Spread         `yaml:"spread" validate:"required_without=Region,excluded_with=Region"`
	Region *spatial.Region `yaml:"region" validate:"required_without=Spread,omitempty"`

	// At most one severity rule
	Level          *Level          `yaml:"level" validate:"omitempty"`
	ProximityLevel *ProximityLevel `yaml:"proximity_level" validate:"excluded_with=Level,omitempty"`

	Link Link `yaml:"link"`
}

// Spread is the half-width of the sampling box on each axis
type Spread struct {
	DX float64 `yaml:"dx" validate:"gte=0"`
	DY float64 `yaml:"dy" validate:"gte=0"`
}

// SamplingRegion resolves the region secondary nodes are drawn from
func (b Batch) SamplingRegion(epicenter model.Position) spatial.Region {
	if b.Region != nil {
		return *b.Region
	}
	return spatial.Around(epicenter, b.Spread.DX, b.Spread.DY)
}

// Level draws a severity uniformly from a range
type Level struct {
	Key   string        `yaml:"key" validate:"required"`
	Range spatial.Range `yaml:",inline"`
}

// ProximityLevel assigns Near to nodes strictly closer than Radius to the
// epicenter and Far to all others
type ProximityLevel struct {
	Key    string  `yaml:"key" validate:"required"`
	Radius float64 `yaml:"radius" validate:"gt=0"`
	Near   float64 `yaml:"near" validate:"gte=0"`
	Far    float64 `yaml:"far" validate:"gte=0"`
}

// Link is the epicenter -> secondary edge generated for every node in a batch
type Link struct {
	Prefix      string         `yaml:"prefix" validate:"required"` // Edge ID prefix: <prefix>_<index>
	Label       string         `yaml:"label" validate:"required"`
	Type        model.EdgeType `yaml:"type" validate:"required,oneof=activates damages"`
	Strength    spatial.Range  `yaml:"strength"`
	Description string         `yaml:"description"`
}

// Synapse is a fixed edge between two fixed nodes
type Synapse struct {
	ID               string         `yaml:"id" validate:"required"`
	Source           string         `yaml:"source" validate:"required"`
	Target           string         `yaml:"target" validate:"required,nefield=Source"`
	Label            string         `yaml:"label" validate:"required"`
	Type             model.EdgeType `yaml:"type" validate:"required,oneof=synapse activates damages releases affects"`
	Neurotransmitter string         `yaml:"neurotransmitter"`
}

// Rules configures the proximity-derived edge families. A nil rule disables its family.
type Rules struct {
	AffectedRadius float64      `yaml:"affected_radius" validate:"gt=0"`
	Release        *ReleaseRule `yaml:"release" validate:"omitempty"`
	Effect         *EffectRule  `yaml:"effect" validate:"omitempty"`
	Damage         *DamageRule  `yaml:"damage" validate:"omitempty"`
}

// ReleaseRule derives population -> secondary edges for populations carrying
// Neurotransmitter. Affected populations get AffectedStrength.
type ReleaseRule struct {
	Radius           float64  `yaml:"radius" validate:"gt=0"`
	Neurotransmitter string   `yaml:"neurotransmitter" validate:"required"`
	Label            string   `yaml:"label" validate:"required"`
	Strength         float64  `yaml:"strength" validate:"gte=0"`
	AffectedStrength float64  `yaml:"affected_strength" validate:"gtfield=Strength"`
	Batches          []string `yaml:"batches"` // Empty means all batches
}

// EffectRule derives secondary -> population edges for every population
type EffectRule struct {
	Radius   float64  `yaml:"radius" validate:"gt=0"`
	Label    string   `yaml:"label" validate:"required"`
	Strength float64  `yaml:"strength" validate:"gte=0"`
	Batches  []string `yaml:"batches"`
}

// DamageRule derives epicenter -> affected population edges
type DamageRule struct {
	Label    string   `yaml:"label" validate:"required"`
	Strength *float64 `yaml:"strength" validate:"omitempty,gte=0"`
}

func appliesTo(batches []string, name string) bool {
	if len(batches) == 0 {
		return true
	}
	for _, b := range batches {
		if b == name {
			return true
		}
	}
	return false
}

// AppliesTo reports whether the release rule covers the named batch
func (r *ReleaseRule) AppliesTo(batch string) bool {
	return r != nil && appliesTo(r.Batches, batch)
}

// AppliesTo reports whether the effect rule covers the named batch
func (r *EffectRule) AppliesTo(batch string) bool {
	return r != nil && appliesTo(r.Batches, batch)
}

// FixedNodeCount returns the number of hand-placed nodes
func (s *Scenario) FixedNodeCount() int {
	return len(s.Nodes)
}

// SecondaryCount returns the total number of generated secondary nodes
func (s *Scenario) SecondaryCount() int {
	total := 0
	for _, b := range s.Batches {
		total += b.Count
	}
	return total
}

// EpicenterNode returns the configured epicenter
func (s *Scenario) EpicenterNode() (FixedNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == s.Epicenter {
			return n, true
		}
	}
	return FixedNode{}, false
}

// MaxRadius returns the largest proximity radius used by the enabled rules
func (s *Scenario) MaxRadius() float64 {
	radius := 0.0
	if s.Rules.Release != nil {
		radius = max(radius, s.Rules.Release.Radius)
	}
	if s.Rules.Effect != nil {
		radius = max(radius, s.Rules.Effect.Radius)
	}
	return radius
}
