package synth

import (
	"github.com/ritzau/neurograph/pkg/model"
	"github.com/ritzau/neurograph/pkg/spatial"
)

// Membership is the set of populations within the damage radius of the epicenter
type Membership struct {
	ids []string
	set map[string]bool
}

// Affected returns the populations strictly closer than radius to the epicenter,
// in the order they were given
func Affected(populations []model.Node, epicenter model.Position, radius float64) Membership {
	m := Membership{set: make(map[string]bool)}
	for _, p := range populations {
		if spatial.Within(p.Position, epicenter, radius) {
			m.ids = append(m.ids, p.ID)
			m.set[p.ID] = true
		}
	}
	return m
}

// Contains reports whether the population is affected
func (m Membership) Contains(id string) bool {
	return m.set[id]
}

// IDs returns the affected population IDs in population order
func (m Membership) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Len returns the number of affected populations
func (m Membership) Len() int {
	return len(m.ids)
}
