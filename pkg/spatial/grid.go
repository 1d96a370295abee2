package spatial

import (
	"fmt"
	"math"
	"slices"

	"github.com/ritzau/neurograph/pkg/model"
)

// Index answers radius queries over a fixed set of points. Results are point
// indices in ascending order, restricted to points strictly within the radius.
type Index interface {
	Within(center model.Position, radius float64) []int
}

// Scan is the all-pairs Index: every query checks every point
type Scan []model.Position

// Within implements Index
func (s Scan) Within(center model.Position, radius float64) []int {
	var result []int
	for i, p := range s {
		if Within(center, p, radius) {
			result = append(result, i)
		}
	}
	return result
}

type cellKey struct {
	x, y int64
}

// Grid buckets points into square cells so a radius query only visits the cells
// overlapping the query circle's bounding box
type Grid struct {
	size   float64
	points []model.Position
	cells  map[cellKey][]int
}

// NewGrid buckets points into cells of the given size. The size should be close
// to the typical query radius.
func NewGrid(points []model.Position, size float64) (*Grid, error) {
	if !(size > 0) || math.IsInf(size, 1) {
		return nil, fmt.Errorf("grid cell size must be positive and finite, got %g", size)
	}

	g := &Grid{
		size:   size,
		points: points,
		cells:  make(map[cellKey][]int),
	}
	for i, p := range points {
		key := g.key(p)
		g.cells[key] = append(g.cells[key], i)
	}
	return g, nil
}

// Within implements Index
func (g *Grid) Within(center model.Position, radius float64) []int {
	if !(radius > 0) {
		return nil
	}

	lo := g.key(model.Position{X: center.X - radius, Y: center.Y - radius})
	hi := g.key(model.Position{X: center.X + radius, Y: center.Y + radius})

	var result []int
	collect := func(indices []int) {
		for _, i := range indices {
			if Within(center, g.points[i], radius) {
				result = append(result, i)
			}
		}
	}

	// Walking the bounding box is wasteful when it covers more cells than exist
	span := float64(hi.x-lo.x+1) * float64(hi.y-lo.y+1)
	if span > float64(len(g.cells)) {
		for key, indices := range g.cells {
			if key.x >= lo.x && key.x <= hi.x && key.y >= lo.y && key.y <= hi.y {
				collect(indices)
			}
		}
	} else {
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				collect(g.cells[cellKey{x, y}])
			}
		}
	}

	slices.Sort(result)
	return result
}

// Cells returns the number of non-empty cells
func (g *Grid) Cells() int {
	return len(g.cells)
}

func (g *Grid) key(p model.Position) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / g.size)),
		y: int64(math.Floor(p.Y / g.size)),
	}
}
