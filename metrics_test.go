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
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"
)

// columnDEM returns an 11×11 elevation grid whose values equal their
// column index, with row 0 at y = 10 and unit pixels.
func columnDEM(t *testing.T) *Raster {
	tr, err := NewTransform(Translation(0, 10).Multiply(Scale(1, -1)))
	if err != nil {
		t.Fatal(err)
	}
	data := mat.NewDense(11, 11, nil)
	for r := 0; r < 11; r++ {
		for c := 0; c < 11; c++ {
			data.Set(r, c, float64(c))
		}
	}
	return NewRaster(data, tr, -9999)
}

var metricLines = []geom.LineString{
	{{X: 0, Y: 5}, {X: 10, Y: 5}},
	{{X: 5, Y: 0}, {X: 5, Y: 10}},
	{{X: 0, Y: 0}, {X: 10, Y: 10}},
	{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}},
	{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 5, Y: 0}, {X: 0, Y: 0}},
}

func TestAverageSlope(t *testing.T) {
	dem := columnDEM(t)
	want := []float64{1, 0, 0.70711, 0.5, 0}
	have, err := AverageSlopes(metricLines, dem, false, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if absDifferent(have[i], want[i], 1e-5) {
			t.Errorf("line %d: want %g but have %g", i, want[i], have[i])
		}
	}
	pct, err := AverageSlopes(metricLines, dem, false, true)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if absDifferent(pct[i], want[i]*100, 1e-3) {
			t.Errorf("line %d percent: want %g but have %g", i, want[i]*100, pct[i])
		}
	}
}

func TestAverageSlopeSymmetry(t *testing.T) {
	dem := columnDEM(t)
	for i, l := range metricLines {
		r := make(geom.LineString, len(l))
		for j, p := range l {
			r[len(l)-1-j] = p
		}
		fwd, err := AverageSlope(l, dem, false, false)
		if err != nil {
			t.Fatal(err)
		}
		rev, err := AverageSlope(r, dem, false, false)
		if err != nil {
			t.Fatal(err)
		}
		if fwd != -rev {
			t.Errorf("line %d: forward %g, reversed %g", i, fwd, rev)
		}
		abs, err := AverageSlope(r, dem, true, false)
		if err != nil {
			t.Fatal(err)
		}
		if abs != math.Abs(fwd) {
			t.Errorf("line %d: absolute: want %g but have %g", i, math.Abs(fwd), abs)
		}
	}
}

func TestAverageSlopeDegenerate(t *testing.T) {
	dem := columnDEM(t)
	s, err := AverageSlope(geom.LineString{{X: 5, Y: 5}, {X: 5, Y: 5}}, dem, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(s, 1) {
		t.Errorf("want +Inf but have %g", s)
	}
	if _, err := AverageSlope(geom.LineString{{X: 5, Y: 5}, {X: 50, Y: 5}}, dem, false, false); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("want ErrOutOfBounds but have %v", err)
	}
	if _, err := AverageSlope(nil, dem, false, false); err == nil {
		t.Error("want an error for an empty line")
	}
}

func TestSinuosity(t *testing.T) {
	have := Sinuosities(metricLines)
	want := []float64{1, 1, 1, 1.41421}
	for i, w := range want {
		if different(have[i], w, 1e-5) {
			t.Errorf("line %d: want %g but have %g", i, w, have[i])
		}
	}
	if !math.IsInf(have[4], 1) {
		t.Errorf("closed loop: want +Inf but have %g", have[4])
	}
	for i, s := range have {
		if s < 1 {
			t.Errorf("line %d: sinuosity %g < 1", i, s)
		}
	}
}

func TestLength(t *testing.T) {
	if l := Length(metricLines[3]); l != 20 {
		t.Errorf("want 20 but have %g", l)
	}
	if l := Length(geom.LineString{{X: 1, Y: 1}}); l != 0 {
		t.Errorf("single point: want 0 but have %g", l)
	}
	if d := StraightDistance(metricLines[4]); d != 0 {
		t.Errorf("closed loop: want 0 but have %g", d)
	}
}

func TestBearingFromNorth(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	tests := []struct {
		shift int
		want  []float64
	}{
		{shift: 1, want: []float64{math.NaN(), 0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}},
		{shift: 2, want: []float64{math.NaN(), math.NaN(), math.Pi / 4, 3 * math.Pi / 4, 5 * math.Pi / 4}},
	}
	for _, test := range tests {
		have, err := BearingFromNorth(pts, test.shift)
		if err != nil {
			t.Fatal(err)
		}
		for i, w := range test.want {
			if math.IsNaN(w) {
				if !math.IsNaN(have[i]) {
					t.Errorf("shift %d, %d: want NaN but have %g", test.shift, i, have[i])
				}
				continue
			}
			if absDifferent(have[i], w, 1e-12) {
				t.Errorf("shift %d, %d: want %g but have %g", test.shift, i, w, have[i])
			}
		}
	}
	if _, err := BearingFromNorth(pts, 0); !errors.Is(err, ErrInvalidShift) {
		t.Errorf("want ErrInvalidShift but have %v", err)
	}
}
