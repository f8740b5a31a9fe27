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
)

// Length returns the length of line. A line with fewer than two vertices
// has zero length.
func Length(line geom.LineString) float64 { return line.Length() }

// StraightDistance returns the distance between the first and last
// vertices of line.
func StraightDistance(line geom.LineString) float64 {
	if len(line) < 2 {
		return 0
	}
	s, e := line[0], line[len(line)-1]
	return math.Hypot(e.X-s.X, e.Y-s.Y)
}

// AverageSlope returns the elevation change from the first to the last
// vertex of line, sampled from dem, divided by the length of line. If
// absolute is true the magnitude is returned, and if asPercent is true
// the result is multiplied by 100. A line of zero length has an infinite
// slope whose sign follows the elevation change.
func AverageSlope(line geom.LineString, dem *Raster, absolute, asPercent bool) (float64, error) {
	if len(line) == 0 {
		return math.NaN(), fmt.Errorf("rivergeom: average slope of an empty line")
	}
	s, e := line[0], line[len(line)-1]
	zs, err := dem.Sample(s.X, s.Y)
	if err != nil {
		return math.NaN(), fmt.Errorf("rivergeom: sampling start elevation: %w", err)
	}
	ze, err := dem.Sample(e.X, e.Y)
	if err != nil {
		return math.NaN(), fmt.Errorf("rivergeom: sampling end elevation: %w", err)
	}
	dz := ze - zs
	var slope float64
	if l := line.Length(); l == 0 {
		if dz < 0 {
			slope = math.Inf(-1)
		} else {
			slope = math.Inf(1)
		}
	} else {
		slope = dz / l
	}
	if absolute {
		slope = math.Abs(slope)
	}
	if asPercent {
		slope *= 100
	}
	return slope, nil
}

// AverageSlopes returns the average slope of each line.
func AverageSlopes(lines []geom.LineString, dem *Raster, absolute, asPercent bool) ([]float64, error) {
	o := make([]float64, len(lines))
	for i, l := range lines {
		s, err := AverageSlope(l, dem, absolute, asPercent)
		if err != nil {
			return nil, fmt.Errorf("rivergeom: line %d: %w", i, err)
		}
		o[i] = s
	}
	return o, nil
}

// Sinuosity returns the ratio of the length of line to the distance
// between its endpoints. It is +Inf when the endpoints coincide.
func Sinuosity(line geom.LineString) float64 {
	d := StraightDistance(line)
	if d == 0 {
		return math.Inf(1)
	}
	return line.Length() / d
}

// Sinuosities returns the sinuosity of each line.
func Sinuosities(lines []geom.LineString) []float64 {
	o := make([]float64, len(lines))
	for i, l := range lines {
		o[i] = Sinuosity(l)
	}
	return o
}

// BearingFromNorth returns, for each point, the clockwise angle from north
// in radians [0, 2π) of the direction from the point shift places earlier
// to the point itself. The first shift entries have no predecessor and
// are NaN.
func BearingFromNorth(points []geom.Point, shift int) ([]float64, error) {
	if shift < 1 {
		return nil, fmt.Errorf("%w: have %d", ErrInvalidShift, shift)
	}
	o := make([]float64, len(points))
	for i := range points {
		if i < shift {
			o[i] = math.NaN()
			continue
		}
		p0, p1 := points[i-shift], points[i]
		o[i] = mod2Pi(math.Atan2(p1.X-p0.X, p1.Y-p0.Y))
	}
	return o, nil
}

// mod2Pi returns v modulo 2π in [0, 2π).
func mod2Pi(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	if v >= 2*math.Pi {
		v = 0
	}
	return v
}
