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
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// LinearDistance returns the cumulative distance along line at each of
// its vertices. The first entry is zero.
func LinearDistance(line geom.LineString) []float64 {
	d := make([]float64, len(line))
	for i := 1; i < len(line); i++ {
		d[i] = math.Hypot(line[i].X-line[i-1].X, line[i].Y-line[i-1].Y)
	}
	return floats.CumSum(d, d)
}

// pointAt returns the point at distance d along line, where cum holds the
// cumulative vertex distances of line.
func pointAt(line geom.LineString, cum []float64, d float64) geom.Point {
	for i := 1; i < len(line); i++ {
		if d > cum[i] || cum[i] == cum[i-1] {
			continue
		}
		f := (d - cum[i-1]) / (cum[i] - cum[i-1])
		a, b := line[i-1], line[i]
		return geom.Point{X: a.X + f*(b.X-a.X), Y: a.Y + f*(b.Y-a.Y)}
	}
	return line[len(line)-1]
}

// PointsAlongLine returns points along line at distances 0, interval,
// 2·interval and so on, for every distance less than the length of line.
func PointsAlongLine(line geom.LineString, interval float64) ([]geom.Point, error) {
	if !(interval > 0) {
		return nil, fmt.Errorf("%w: have %g", ErrInvalidInterval, interval)
	}
	if len(line) == 0 {
		return nil, nil
	}
	cum := LinearDistance(line)
	length := cum[len(cum)-1]
	var pts []geom.Point
	for k := 0; float64(k)*interval < length; k++ {
		pts = append(pts, pointAt(line, cum, float64(k)*interval))
	}
	return pts, nil
}

// Station is a point interpolated along a line, together with its
// distance from the start of the line.
type Station struct {
	D, X, Y float64
}

// InterpolateCoords returns stations along line at distances 0, step,
// 2·step and so on, for every distance less than the length of line
// rounded down to a whole number.
func InterpolateCoords(line geom.LineString, step float64) ([]Station, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("%w: have %g", ErrInvalidInterval, step)
	}
	if len(line) == 0 {
		return nil, nil
	}
	cum := LinearDistance(line)
	stop := math.Floor(cum[len(cum)-1])
	var o []Station
	for k := 0; float64(k)*step < stop; k++ {
		d := float64(k) * step
		p := pointAt(line, cum, d)
		o = append(o, Station{D: d, X: p.X, Y: p.Y})
	}
	return o, nil
}

// OrthogonalBearing returns each bearing rotated a quarter turn
// counter-clockwise, in [0, 2π). NaN values are kept.
func OrthogonalBearing(bearings []float64) []float64 {
	o := make([]float64, len(bearings))
	for i, b := range bearings {
		if math.IsNaN(b) {
			o[i] = b
			continue
		}
		o[i] = mod2Pi(b - math.Pi/2)
	}
	return o
}

// TransectConfig holds the settings for BuildTransects.
type TransectConfig struct {
	// Step is the increment by which a ray is grown while searching for
	// the bank.
	Step float64

	// Spacing is the distance between transects along the center line.
	Spacing float64

	// Buffer is the distance each transect is extended past the point
	// where it reaches the bank.
	Buffer float64

	// MaxSearchDistance is the longest ray that is tried before the
	// search gives up.
	MaxSearchDistance float64
}

func (c TransectConfig) validate() error {
	switch {
	case !(c.Step > 0):
		return fmt.Errorf("%w: step must be > 0, have %g", ErrInvalidConfig, c.Step)
	case !(c.Spacing > 0):
		return fmt.Errorf("%w: spacing must be > 0, have %g", ErrInvalidConfig, c.Spacing)
	case !(c.Buffer >= 0):
		return fmt.Errorf("%w: buffer must be >= 0, have %g", ErrInvalidConfig, c.Buffer)
	case !(c.MaxSearchDistance >= 0):
		return fmt.Errorf("%w: maximum search distance must be >= 0, have %g", ErrInvalidConfig, c.MaxSearchDistance)
	}
	return nil
}

// BuildTransects returns lines across center that reach the bank on both
// sides. Points are placed along center every cfg.Spacing, and every
// point after the first gets one transect orthogonal to the direction
// from the previous point. From the point, a ray is grown in each
// orthogonal direction, cfg.Step at a time, until it crosses bank or
// reaches cfg.MaxSearchDistance, and is then extended by cfg.Buffer. The
// transect joins the ends of the two rays.
func BuildTransects(center geom.LineString, bank Boundary, cfg TransectConfig) ([]geom.LineString, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pts, err := PointsAlongLine(center, cfg.Spacing)
	if err != nil {
		return nil, err
	}
	bearings, err := BearingFromNorth(pts, 1)
	if err != nil {
		return nil, err
	}
	ortho := OrthogonalBearing(bearings)
	var o []geom.LineString
	for i := 1; i < len(pts); i++ {
		b := ortho[i]
		end1 := cfg.rayToBank(pts[i], b, bank)
		end2 := cfg.rayToBank(pts[i], mod2Pi(b-math.Pi), bank)
		o = append(o, geom.LineString{end1, end2})
	}
	return o, nil
}

// rayToBank grows a ray from start along bearing until it crosses bank or
// reaches the maximum search distance, and returns its end extended by
// the buffer distance.
func (c TransectConfig) rayToBank(start geom.Point, bearing float64, bank Boundary) geom.Point {
	sin, cos := math.Sincos(bearing)
	at := func(d float64) geom.Point {
		return geom.Point{X: start.X + sin*d, Y: start.Y + cos*d}
	}
	k := 1
	end := at(c.Step)
	for !bank.CrossedBy(geom.LineString{start, end}) && float64(k)*c.Step < c.MaxSearchDistance {
		k++
		end = at(float64(k) * c.Step)
	}
	return geom.Point{X: end.X + sin*c.Buffer, Y: end.Y + cos*c.Buffer}
}
