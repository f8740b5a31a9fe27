/*
Copyright © 2018 the rivergeom authors.
This file is part of rivergeom.

rivergeom is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

rivergeom is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with rivergeom.  If not, see <http://www.gnu.org/licenses/>.
*/

package rivergeom

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Shape is a planar geometry that can take part in stitching. The set of
// implementations is closed: Line, Vertex and Area.
type Shape interface {
	geom.Geom

	// Endpoints returns the first and last vertex of the shape.
	Endpoints() (start, end geom.Point)

	// Vertices returns the coordinate sequence of the shape. For an Area
	// this is the outer ring.
	Vertices() []geom.Point

	// Touches reports whether the shape and s have at least one point in
	// common while their interiors do not intersect.
	Touches(s Shape) bool
}

// Boundary is a geometry that a transect ray can cross.
type Boundary interface {
	CrossedBy(ray geom.LineString) bool
}

// Boundaries is a Boundary made of several parts, such as the left and
// right banks of a channel. A ray crosses it when it crosses any part.
type Boundaries []Boundary

// CrossedBy implements Boundary.
func (b Boundaries) CrossedBy(ray geom.LineString) bool {
	for _, p := range b {
		if p.CrossedBy(ray) {
			return true
		}
	}
	return false
}

// Line is a polyline shape.
type Line struct {
	geom.LineString
}

// Vertex is a single-point shape.
type Vertex struct {
	geom.Point
}

// Area is a polygonal shape.
type Area struct {
	geom.Polygon
}

// AsShape wraps g in the matching Shape implementation. Multi-part
// geometries must be split into their parts first.
func AsShape(g geom.Geom) (Shape, error) {
	switch t := g.(type) {
	case Shape:
		return t, nil
	case geom.LineString:
		return Line{LineString: t}, nil
	case *geom.LineString:
		return Line{LineString: *t}, nil
	case geom.Point:
		return Vertex{Point: t}, nil
	case *geom.Point:
		return Vertex{Point: *t}, nil
	case geom.Polygon:
		return Area{Polygon: t}, nil
	case *geom.Polygon:
		return Area{Polygon: *t}, nil
	default:
		return nil, fmt.Errorf("rivergeom: unsupported shape type %T", g)
	}
}

// Endpoints implements Shape.
func (l Line) Endpoints() (start, end geom.Point) {
	if len(l.LineString) == 0 {
		return
	}
	return l.LineString[0], l.LineString[len(l.LineString)-1]
}

// Vertices implements Shape.
func (l Line) Vertices() []geom.Point { return l.LineString }

// IsClosed reports whether the first and last vertices of l coincide.
func (l Line) IsClosed() bool {
	if len(l.LineString) == 0 {
		return false
	}
	s, e := l.Endpoints()
	return s.Equals(e)
}

// onBoundary reports whether p is one of the endpoints of an open line.
func (l Line) onBoundary(p geom.Point) bool {
	if len(l.LineString) == 0 || l.IsClosed() {
		return false
	}
	s, e := l.Endpoints()
	return p.Equals(s) || p.Equals(e)
}

// Touches implements Shape.
func (l Line) Touches(s Shape) bool {
	switch o := s.(type) {
	case Line:
		return linesTouch(l, o)
	case Vertex:
		return l.onBoundary(o.Point)
	case Area:
		return lineTouchesArea(l, o)
	}
	return false
}

// CrossedBy implements Boundary. The ray crosses l when their interiors
// meet in isolated points only.
func (l Line) CrossedBy(ray geom.LineString) bool {
	r := Line{LineString: ray}
	crosses := false
	overlap := false
	forEachIntersection(l, r, func(n int, a, _ geom.Point) bool {
		if n > 1 {
			overlap = true
			return false
		}
		if !l.onBoundary(a) && !r.onBoundary(a) {
			crosses = true
		}
		return true
	})
	return crosses && !overlap
}

// Endpoints implements Shape. Both values are the vertex itself.
func (v Vertex) Endpoints() (start, end geom.Point) { return v.Point, v.Point }

// Vertices implements Shape.
func (v Vertex) Vertices() []geom.Point { return []geom.Point{v.Point} }

// Touches implements Shape. A point has no boundary, so two vertices
// never touch.
func (v Vertex) Touches(s Shape) bool {
	switch o := s.(type) {
	case Line:
		return o.onBoundary(v.Point)
	case Area:
		return v.Point.Within(o.Polygon) == geom.OnEdge
	}
	return false
}

// Endpoints implements Shape. Both values are the first vertex of the
// outer ring.
func (a Area) Endpoints() (start, end geom.Point) {
	if len(a.Polygon) == 0 || len(a.Polygon[0]) == 0 {
		return
	}
	return a.Polygon[0][0], a.Polygon[0][0]
}

// Vertices implements Shape.
func (a Area) Vertices() []geom.Point {
	if len(a.Polygon) == 0 {
		return nil
	}
	return a.Polygon[0]
}

// Touches implements Shape.
func (a Area) Touches(s Shape) bool {
	switch o := s.(type) {
	case Line:
		return lineTouchesArea(o, a)
	case Vertex:
		return o.Touches(a)
	case Area:
		return areasTouch(a, o)
	}
	return false
}

// CrossedBy implements Boundary. The ray crosses a when part of its
// interior lies inside a and part lies outside.
func (a Area) CrossedBy(ray geom.LineString) bool {
	var inside, outside bool
	pathSegments(ray, func(p, q geom.Point) bool {
		in, out, _ := pieceStatus(p, q, a.Polygon)
		inside = inside || in
		outside = outside || out
		return !(inside && outside)
	})
	return inside && outside
}

// forEachIntersection calls f with the result of every non-empty
// intersection between a segment of a and a segment of b.
func forEachIntersection(a, b Line, f func(n int, p, q geom.Point) bool) {
	if !a.Bounds().Overlaps(b.Bounds()) {
		return
	}
	pathSegments(a.LineString, func(a1, a2 geom.Point) bool {
		more := true
		pathSegments(b.LineString, func(b1, b2 geom.Point) bool {
			if n, p, q := segmentIntersection(a1, a2, b1, b2); n > 0 {
				more = f(n, p, q)
			}
			return more
		})
		return more
	})
}

// linesTouch reports whether a and b meet only at points that lie on the
// boundary of at least one of them.
func linesTouch(a, b Line) bool {
	if len(a.LineString) == 0 || len(b.LineString) == 0 {
		return false
	}
	intersects := false
	touches := true
	forEachIntersection(a, b, func(n int, p, _ geom.Point) bool {
		intersects = true
		if n > 1 || (!a.onBoundary(p) && !b.onBoundary(p)) {
			touches = false
		}
		return touches
	})
	return intersects && touches
}

// lineTouchesArea reports whether l meets the boundary of a without
// entering its interior.
func lineTouchesArea(l Line, a Area) bool {
	if len(l.LineString) == 0 || len(a.Polygon) == 0 {
		return false
	}
	if !l.Bounds().Overlaps(a.Bounds()) {
		return false
	}
	var inside, onEdge bool
	pathSegments(l.LineString, func(p, q geom.Point) bool {
		in, _, edge := pieceStatus(p, q, a.Polygon)
		inside = inside || in
		onEdge = onEdge || edge
		return !inside
	})
	return onEdge && !inside
}

// areasTouch reports whether the rings of a and b meet while their
// interiors are disjoint.
func areasTouch(a, b Area) bool {
	if len(a.Polygon) == 0 || len(b.Polygon) == 0 {
		return false
	}
	if !a.Bounds().Overlaps(b.Bounds()) {
		return false
	}
	inA, edgeA, sameA := ringsAgainst(a, b)
	if inA || sameA {
		return false
	}
	inB, edgeB, sameB := ringsAgainst(b, a)
	if inB || sameB {
		return false
	}
	return edgeA || edgeB
}

// ringsAgainst classifies the rings of a against b. inside is true when
// part of a ring of a lies inside b, onEdge when the rings meet, and
// allOnEdge when every ring of a lies on the rings of b.
func ringsAgainst(a, b Area) (inside, onEdge, allOnEdge bool) {
	allOnEdge = true
	for _, ring := range a.Polygon {
		ringSegments(ring, func(p, q geom.Point) bool {
			in, out, edge := pieceStatus(p, q, b.Polygon)
			inside = inside || in
			onEdge = onEdge || edge
			if in || out {
				allOnEdge = false
			}
			return !inside
		})
		if inside {
			return
		}
	}
	return
}
