package model

// NodeType represents the kind of entity a node stands for
type NodeType string

const (
	NodeTypeOrgan      NodeType = "organ"
	NodeTypeInjury     NodeType = "injury"
	NodeTypeRegion     NodeType = "brain_region"
	NodeTypePopulation NodeType = "neuronal_population"
	NodeTypeSecondary  NodeType = "secondary"
)

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeOrgan, NodeTypeInjury, NodeTypeRegion, NodeTypePopulation, NodeTypeSecondary:
		return true
	}
	return false
}

// EdgeType represents the kind of interaction between two nodes
type EdgeType string

const (
	EdgeSynapse   EdgeType = "synapse"   // Fixed connection between populations
	EdgeActivates EdgeType = "activates" // Epicenter raises a secondary entity
	EdgeDamages   EdgeType = "damages"   // Epicenter damages a secondary entity or population
	EdgeReleases  EdgeType = "releases"  // Population emits a secondary entity
	EdgeAffects   EdgeType = "affects"   // Secondary entity acts on a population
)

// Valid reports whether t is one of the known edge types
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeSynapse, EdgeActivates, EdgeDamages, EdgeReleases, EdgeAffects:
		return true
	}
	return false
}

// Position is a point in the 2D layout. Nodes hold it by value so it cannot be
// changed once the node exists.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attributes is the closed set of per-kind attribute schemas. The node type is
// derived from the attribute variant, so a node cannot carry attributes that
// belong to another kind.
type Attributes interface {
	Kind() NodeType
	// Fields flattens the attributes for serialization. Empty values are omitted.
	Fields() map[string]any
}

// OrganAttributes describes the organ root
type OrganAttributes struct{}

func (OrganAttributes) Kind() NodeType         { return NodeTypeOrgan }
func (OrganAttributes) Fields() map[string]any { return nil }

// InjuryAttributes describes the injury epicenter
type InjuryAttributes struct {
	Description string
}

func (InjuryAttributes) Kind() NodeType { return NodeTypeInjury }

func (a InjuryAttributes) Fields() map[string]any {
	if a.Description == "" {
		return nil
	}
	return map[string]any{"description": a.Description}
}

// RegionAttributes describes an anatomical brain region
type RegionAttributes struct{}

func (RegionAttributes) Kind() NodeType         { return NodeTypeRegion }
func (RegionAttributes) Fields() map[string]any { return nil }

// PopulationAttributes describes a neuronal population
type PopulationAttributes struct {
	Neurotransmitter string // e.g. "glutamate", "GABA"; empty when unspecified
}

func (PopulationAttributes) Kind() NodeType { return NodeTypePopulation }

func (a PopulationAttributes) Fields() map[string]any {
	if a.Neurotransmitter == "" {
		return nil
	}
	return map[string]any{"neurotransmitter": a.Neurotransmitter}
}

// SecondaryAttributes describes a bulk-generated entity such as a ligand,
// an inflammation marker, or a damaged neuron
type SecondaryAttributes struct {
	Category    string // e.g. "ligand", "inflammatory", "neuron"
	Description string
	LevelKey    string  // Attribute name for Level, e.g. "level" or "damage_level"
	Level       float64 // Synthetic severity; only present when LevelKey is set
}

func (SecondaryAttributes) Kind() NodeType { return NodeTypeSecondary }

func (a SecondaryAttributes) Fields() map[string]any {
	fields := map[string]any{"category": a.Category}
	if a.Description != "" {
		fields["description"] = a.Description
	}
	if a.LevelKey != "" {
		fields[a.LevelKey] = a.Level
	}
	return fields
}

// Node represents a vertex in the synthesized network
type Node struct {
	ID       string
	Label    string
	Position Position
	Attrs    Attributes
}

// Type returns the node type derived from the attribute variant
func (n *Node) Type() NodeType {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs.Kind()
}

// Neurotransmitter returns the population's neurotransmitter, or "" for other kinds
func (n *Node) Neurotransmitter() string {
	if a, ok := n.Attrs.(PopulationAttributes); ok {
		return a.Neurotransmitter
	}
	return ""
}

// Edge represents a directed interaction between two nodes
type Edge struct {
	ID       string
	Source   string
	Target   string
	Label    string
	Type     EdgeType
	Strength *float64 // nil when the interaction has no strength

	// Optional attributes
	Neurotransmitter string
	Description      string
}

// Fields flattens the optional edge attributes for serialization
func (e *Edge) Fields() map[string]any {
	fields := make(map[string]any)
	if e.Strength != nil {
		fields["strength"] = *e.Strength
	}
	if e.Neurotransmitter != "" {
		fields["neurotransmitter"] = e.Neurotransmitter
	}
	if e.Description != "" {
		fields["description"] = e.Description
	}
	return fields
}

// Strength returns a pointer to s, for populating Edge.Strength
func Strength(s float64) *float64 {
	return &s
}
