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
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// orient returns twice the signed area of the triangle abc: positive when
// c is to the left of the directed line ab, negative to the right and zero
// when the three points are collinear.
func orient(a, b, c geom.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// axisValue returns the coordinate of p along the dominant axis of the
// segment ab, which orders collinear points without division.
func axisValue(a, b, p geom.Point) float64 {
	if math.Abs(b.X-a.X) >= math.Abs(b.Y-a.Y) {
		return p.X
	}
	return p.Y
}

// onSegment reports whether p lies on the closed segment ab.
func onSegment(p, a, b geom.Point) bool {
	if orient(a, b, p) != 0 {
		return false
	}
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// segmentIntersection returns the points shared by the closed segments
// p1p2 and q1q2. n is 0 when they are disjoint, 1 when they meet in the
// single point a, and 2 when they overlap along the segment from a to b.
// Whenever the shared point is an input vertex, that vertex is returned
// exactly.
func segmentIntersection(p1, p2, q1, q2 geom.Point) (n int, a, b geom.Point) {
	pDegenerate := p1.Equals(p2)
	qDegenerate := q1.Equals(q2)
	switch {
	case pDegenerate && qDegenerate:
		if p1.Equals(q1) {
			return 1, p1, p1
		}
		return 0, a, b
	case pDegenerate:
		if onSegment(p1, q1, q2) {
			return 1, p1, p1
		}
		return 0, a, b
	case qDegenerate:
		if onSegment(q1, p1, p2) {
			return 1, q1, q1
		}
		return 0, a, b
	}

	o1 := sign(orient(p1, p2, q1))
	o2 := sign(orient(p1, p2, q2))
	o3 := sign(orient(q1, q2, p1))
	o4 := sign(orient(q1, q2, p2))

	if o1 == 0 && o2 == 0 {
		return collinearOverlap(p1, p2, q1, q2)
	}
	if o1*o2 > 0 || o3*o4 > 0 {
		return 0, a, b
	}
	switch {
	case o1 == 0:
		return 1, q1, q1
	case o2 == 0:
		return 1, q2, q2
	case o3 == 0:
		return 1, p1, p1
	case o4 == 0:
		return 1, p2, p2
	}
	d3 := orient(q1, q2, p1)
	d4 := orient(q1, q2, p2)
	t := d3 / (d3 - d4)
	a = geom.Point{X: p1.X + t*(p2.X-p1.X), Y: p1.Y + t*(p2.Y-p1.Y)}
	return 1, a, a
}

// collinearOverlap intersects two collinear, non-degenerate segments.
func collinearOverlap(p1, p2, q1, q2 geom.Point) (n int, a, b geom.Point) {
	v := func(p geom.Point) float64 { return axisValue(p1, p2, p) }
	pLo, pHi := p1, p2
	if v(pLo) > v(pHi) {
		pLo, pHi = pHi, pLo
	}
	qLo, qHi := q1, q2
	if v(qLo) > v(qHi) {
		qLo, qHi = qHi, qLo
	}
	lo := pLo
	if v(qLo) > v(lo) {
		lo = qLo
	}
	hi := pHi
	if v(qHi) < v(hi) {
		hi = qHi
	}
	switch {
	case v(lo) > v(hi):
		return 0, a, b
	case v(lo) == v(hi):
		return 1, lo, lo
	}
	return 2, lo, hi
}

// pathSegments calls f for each segment of pts, stopping early when f
// returns false. A single point is reported as one zero-length segment.
func pathSegments(pts []geom.Point, f func(a, b geom.Point) bool) {
	if len(pts) == 1 {
		f(pts[0], pts[0])
		return
	}
	for i := 1; i < len(pts); i++ {
		if !f(pts[i-1], pts[i]) {
			return
		}
	}
}

// ringSegments calls f for each edge of ring, including the closing edge
// when the ring is not explicitly closed.
func ringSegments(ring []geom.Point, f func(a, b geom.Point) bool) {
	if len(ring) == 0 {
		return
	}
	pathSegments(ring, f)
	if len(ring) > 2 && !ring[0].Equals(ring[len(ring)-1]) {
		f(ring[len(ring)-1], ring[0])
	}
}

// splitParameters returns the sorted, de-duplicated positions in [0, 1]
// along segment ab where ab meets the rings of poly, including both ends.
func splitParameters(a, b geom.Point, poly geom.Polygon) []float64 {
	t := []float64{0, 1}
	param := func(p geom.Point) float64 {
		if math.Abs(b.X-a.X) >= math.Abs(b.Y-a.Y) {
			return (p.X - a.X) / (b.X - a.X)
		}
		return (p.Y - a.Y) / (b.Y - a.Y)
	}
	if a.Equals(b) {
		return []float64{0}
	}
	for _, ring := range poly {
		ringSegments(ring, func(r1, r2 geom.Point) bool {
			n, p, q := segmentIntersection(a, b, r1, r2)
			if n > 0 {
				t = append(t, param(p))
			}
			if n > 1 {
				t = append(t, param(q))
			}
			return true
		})
	}
	sort.Float64s(t)
	o := t[:1]
	for _, v := range t[1:] {
		if v != o[len(o)-1] && v >= 0 && v <= 1 {
			o = append(o, v)
		}
	}
	return o
}

// pieceStatus classifies the pieces of segment ab, split where it meets
// the boundary of poly, and reports which of the inside, outside and
// on-edge statuses occur.
func pieceStatus(a, b geom.Point, poly geom.Polygon) (inside, outside, onEdge bool) {
	t := splitParameters(a, b, poly)
	if len(t) == 1 {
		switch a.Within(poly) {
		case geom.Inside:
			inside = true
		case geom.OnEdge:
			onEdge = true
		default:
			outside = true
		}
		return
	}
	at := func(s float64) geom.Point {
		return geom.Point{X: a.X + s*(b.X-a.X), Y: a.Y + s*(b.Y-a.Y)}
	}
	for _, s := range t {
		if at(s).Within(poly) == geom.OnEdge {
			onEdge = true
		}
	}
	for i := 1; i < len(t); i++ {
		switch at((t[i-1] + t[i]) / 2).Within(poly) {
		case geom.Inside:
			inside = true
		case geom.OnEdge:
			onEdge = true
		default:
			outside = true
		}
	}
	return
}
