// Package geometry normalizes OCR word polygons into centers and extents in
// page pixel space.
package geometry

// Vertex is one corner of a word polygon in page pixel coordinates.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Extent is the axis-aligned bounding box of a polygon.
type Extent struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Width returns the extent width.
func (e Extent) Width() int { return e.MaxX - e.MinX }

// Height returns the extent height.
func (e Extent) Height() int { return e.MaxY - e.MinY }

// Center returns the integer midpoint of the extent. Division truncates, which
// matches floor for the non-negative coordinates OCR produces.
func (e Extent) Center() Vertex {
	return Vertex{X: (e.MinX + e.MaxX) / 2, Y: (e.MinY + e.MaxY) / 2}
}

// PolygonVertices is the number of corners a usable word polygon carries.
const PolygonVertices = 4

// BoundingExtent returns the extent of a set of vertices.
func BoundingExtent(pts []Vertex) Extent {
	if len(pts) == 0 {
		return Extent{}
	}
	e := Extent{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < e.MinX {
			e.MinX = p.X
		}
		if p.X > e.MaxX {
			e.MaxX = p.X
		}
		if p.Y < e.MinY {
			e.MinY = p.Y
		}
		if p.Y > e.MaxY {
			e.MaxY = p.Y
		}
	}
	return e
}

// Normalize computes the center and extent of a word polygon. It does not
// check the vertex count; callers drop polygons with fewer than
// PolygonVertices corners before calling it.
func Normalize(pts []Vertex) (Vertex, Extent) {
	e := BoundingExtent(pts)
	return e.Center(), e
}

// Usable reports whether a polygon has enough corners to be normalized.
func Usable(pts []Vertex) bool {
	return len(pts) >= PolygonVertices
}
