package spatial

import (
	"fmt"
	"math/rand/v2"

	"github.com/ritzau/neurograph/pkg/model"
	"gonum.org/v1/gonum/stat/distuv"
)

// Region is an axis-aligned rectangle
type Region struct {
	XMin float64 `yaml:"x_min"`
	XMax float64 `yaml:"x_max"`
	YMin float64 `yaml:"y_min"`
	YMax float64 `yaml:"y_max"`
}

// Around returns the region centered on p extending dx and dy on each side
func Around(p model.Position, dx, dy float64) Region {
	return Region{XMin: p.X - dx, XMax: p.X + dx, YMin: p.Y - dy, YMax: p.Y + dy}
}

// Validate checks that the bounds are ordered
func (r Region) Validate() error {
	if r.XMin > r.XMax {
		return fmt.Errorf("x_min %g greater than x_max %g", r.XMin, r.XMax)
	}
	if r.YMin > r.YMax {
		return fmt.Errorf("y_min %g greater than y_max %g", r.YMin, r.YMax)
	}
	return nil
}

// Contains reports whether p lies inside the closed region
func (r Region) Contains(p model.Position) bool {
	return p.X >= r.XMin && p.X <= r.XMax && p.Y >= r.YMin && p.Y <= r.YMax
}

// Sampler draws positions uniformly from a region using an injected random source
type Sampler struct {
	x, y distuv.Uniform
}

// NewSampler creates a sampler for region drawing from src. The x coordinate is
// drawn before the y coordinate.
func NewSampler(region Region, src rand.Source) (*Sampler, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		x: distuv.Uniform{Min: region.XMin, Max: region.XMax, Src: src},
		y: distuv.Uniform{Min: region.YMin, Max: region.YMax, Src: src},
	}, nil
}

// Sample draws one position
func (s *Sampler) Sample() model.Position {
	return model.Position{X: s.draw(s.x), Y: s.draw(s.y)}
}

// distuv.Uniform.Rand is Min + (Max-Min)*u, which stays within the bounds and
// collapses to Min for a zero-width side.
func (s *Sampler) draw(u distuv.Uniform) float64 {
	if u.Min == u.Max {
		return u.Min
	}
	return u.Rand()
}

// Range is a closed interval of values drawn uniformly. A zero-width range is a constant.
type Range struct {
	Min float64 `yaml:"min" validate:"gte=0"`
	Max float64 `yaml:"max" validate:"gtefield=Min"`
}

// Constant returns a range that always yields v
func Constant(v float64) Range {
	return Range{Min: v, Max: v}
}

// Draw returns a value from the range using src. Constant ranges consume no randomness.
func (r Range) Draw(src rand.Source) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return distuv.Uniform{Min: r.Min, Max: r.Max, Src: src}.Rand()
}
