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
	"testing"

	"github.com/ctessum/geom"
)

func square(x0, y0, x1, y1 float64) Area {
	return Area{Polygon: geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}}
}

func TestTouches(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want bool
	}{
		{name: "end to end", a: line(0, 0, 1, 1), b: line(1, 1, 2, 0), want: true},
		{name: "end to interior", a: line(0, 0, 2, 0), b: line(1, 0, 1, 5), want: true},
		{name: "crossing", a: line(0, 0, 2, 2), b: line(0, 2, 2, 0), want: false},
		{name: "disjoint", a: line(0, 0, 1, 0), b: line(0, 1, 1, 1), want: false},
		{name: "overlap", a: line(0, 0, 2, 0), b: line(1, 0, 3, 0), want: false},
		{name: "collinear end to end", a: line(0, 0, 1, 0), b: line(1, 0, 2, 0), want: true},
		{name: "closed line at vertex", a: line(0, 0, 1, 0, 1, 1, 0, 0), b: line(1, 0, 2, 0), want: true},
		{name: "interior vertices", a: line(0, 0, 1, 1, 2, 0), b: line(0, 2, 1, 1, 2, 2), want: false},
		{name: "degenerate line", a: line(5, 5, 5, 5), b: line(0, 0, 10, 10), want: false},
		{name: "vertex at end", a: Vertex{Point: geom.Point{X: 1, Y: 1}}, b: line(0, 0, 1, 1), want: true},
		{name: "vertex at interior", a: Vertex{Point: geom.Point{X: 1, Y: 1}}, b: line(0, 0, 2, 2), want: false},
		{name: "vertex pair", a: Vertex{Point: geom.Point{X: 1, Y: 1}}, b: Vertex{Point: geom.Point{X: 1, Y: 1}}, want: false},
		{name: "vertex on ring", a: Vertex{Point: geom.Point{X: 0, Y: 1}}, b: square(0, 0, 2, 2), want: true},
		{name: "vertex inside", a: Vertex{Point: geom.Point{X: 1, Y: 1}}, b: square(0, 0, 2, 2), want: false},
		{name: "line along ring", a: line(-1, 0, 3, 0), b: square(0, 0, 2, 2), want: true},
		{name: "line ending on ring", a: line(-1, 1, 0, 1), b: square(0, 0, 2, 2), want: true},
		{name: "line entering area", a: line(-1, 1, 1, 1), b: square(0, 0, 2, 2), want: false},
		{name: "line outside area", a: line(-3, 1, -1, 1), b: square(0, 0, 2, 2), want: false},
		{name: "adjacent areas", a: square(0, 0, 2, 2), b: square(2, 0, 4, 2), want: true},
		{name: "corner areas", a: square(0, 0, 2, 2), b: square(2, 2, 4, 4), want: true},
		{name: "overlapping areas", a: square(0, 0, 2, 2), b: square(1, 1, 3, 3), want: false},
		{name: "separate areas", a: square(0, 0, 2, 2), b: square(3, 3, 4, 4), want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := test.a.Touches(test.b); have != test.want {
				t.Errorf("a.Touches(b): want %v but have %v", test.want, have)
			}
			if have := test.b.Touches(test.a); have != test.want {
				t.Errorf("b.Touches(a): want %v but have %v", test.want, have)
			}
		})
	}
}

func TestCrossedBy(t *testing.T) {
	bank := square(0, 0, 10, 10)
	tests := []struct {
		name string
		b    Boundary
		ray  geom.LineString
		want bool
	}{
		{name: "area inside", b: bank, ray: line(5, 5, 8, 5).LineString, want: false},
		{name: "area exit", b: bank, ray: line(5, 5, 12, 5).LineString, want: true},
		{name: "area reach edge", b: bank, ray: line(5, 5, 10, 5).LineString, want: false},
		{name: "area outside", b: bank, ray: line(12, 5, 15, 5).LineString, want: false},
		{name: "area pass through", b: bank, ray: line(-1, 5, 11, 5).LineString, want: true},
		{name: "line cross", b: line(10, 0, 10, 10), ray: line(5, 5, 12, 5).LineString, want: true},
		{name: "line reach", b: line(10, 0, 10, 10), ray: line(5, 5, 10, 5).LineString, want: false},
		{name: "line short", b: line(10, 0, 10, 10), ray: line(5, 5, 8, 5).LineString, want: false},
		{name: "line overlap", b: line(10, 0, 10, 10), ray: line(10, 5, 10, 12).LineString, want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := test.b.CrossedBy(test.ray); have != test.want {
				t.Errorf("want %v but have %v", test.want, have)
			}
		})
	}
}

func TestAsShape(t *testing.T) {
	for _, g := range []geom.Geom{
		geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}},
		geom.Point{X: 1, Y: 1},
		geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
	} {
		if _, err := AsShape(g); err != nil {
			t.Errorf("%T: %v", g, err)
		}
	}
	if _, err := AsShape(geom.MultiLineString{}); err == nil {
		t.Error("want an error for a multi-part geometry")
	}
}
