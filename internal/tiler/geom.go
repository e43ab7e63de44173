package tiler

import "math"

// Vec2 is a 2D point or vector in whatever coordinate space the caller is
// working in (3857 meters, overview pixels, ...).
type Vec2 struct {
	X, Y float64
}

// Add returns a+b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a scaled by s.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// BBox is an axis-aligned bounding box.
type BBox struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Edges returns the box's four corners as (start,end) edge pairs, in
// clockwise order starting at the top-left corner.
func (b BBox) Edges() [4][2]Vec2 {
	tl := Vec2{b.XMin, b.YMin}
	tr := Vec2{b.XMax, b.YMin}
	br := Vec2{b.XMax, b.YMax}
	bl := Vec2{b.XMin, b.YMax}
	return [4][2]Vec2{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

// BBoxFromPoints returns the smallest BBox containing every point.
func BBoxFromPoints(points []Vec2) BBox {
	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	return BBox{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}
