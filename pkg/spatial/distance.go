// Package spatial holds the 2D geometry used by the generator: distances,
// uniform position sampling, and a bucketed grid for radius queries.
package spatial

import (
	"github.com/ritzau/neurograph/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Distance returns the Euclidean distance between two positions
func Distance(a, b model.Position) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

// Within reports whether b lies strictly closer than radius to a.
// A point exactly on the radius is outside.
func Within(a, b model.Position, radius float64) bool {
	return Distance(a, b) < radius
}

func vec(p model.Position) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
