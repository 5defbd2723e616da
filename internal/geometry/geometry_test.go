package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		pts    []Vertex
		center Vertex
		extent Extent
	}{
		{
			name:   "axis aligned",
			pts:    []Vertex{{10, 20}, {30, 20}, {30, 40}, {10, 40}},
			center: Vertex{20, 30},
			extent: Extent{MinX: 10, MaxX: 30, MinY: 20, MaxY: 40},
		},
		{
			name:   "odd span truncates",
			pts:    []Vertex{{0, 0}, {5, 0}, {5, 3}, {0, 3}},
			center: Vertex{2, 1},
			extent: Extent{MinX: 0, MaxX: 5, MinY: 0, MaxY: 3},
		},
		{
			name:   "unordered skewed corners",
			pts:    []Vertex{{104, 52}, {98, 61}, {140, 66}, {146, 50}},
			center: Vertex{122, 58},
			extent: Extent{MinX: 98, MaxX: 146, MinY: 50, MaxY: 66},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, e := Normalize(tt.pts)
			assert.Equal(t, tt.center, c)
			assert.Equal(t, tt.extent, e)
			assert.Equal(t, tt.extent.MaxX-tt.extent.MinX, e.Width())
			assert.Equal(t, tt.extent.MaxY-tt.extent.MinY, e.Height())
		})
	}
}

func TestBoundingExtent_Empty(t *testing.T) {
	assert.Equal(t, Extent{}, BoundingExtent(nil))
}

func TestUsable(t *testing.T) {
	assert.False(t, Usable(nil))
	assert.False(t, Usable([]Vertex{{0, 0}, {1, 1}, {2, 2}}))
	assert.True(t, Usable([]Vertex{{0, 0}, {1, 0}, {1, 1}, {0, 1}}))
}
