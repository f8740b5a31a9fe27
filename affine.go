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

	"gonum.org/v1/gonum/mat"
)

// Affine is a two-dimensional affine map
//
//	| x |   | A B C |   | col |
//	| y | = | D E F | · | row |
//	| 1 |   | 0 0 1 |   |  1  |
//
// that places raster pixel indices in planar space. An Affine is a value
// and is never modified after it is created.
type Affine struct {
	A, B, C, D, E, F float64
}

// NewAffine returns an Affine with the given coefficients.
func NewAffine(a, b, c, d, e, f float64) Affine {
	return Affine{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Identity returns the identity map.
func Identity() Affine { return Affine{A: 1, E: 1} }

// Translation returns a map that shifts by (xoff, yoff).
func Translation(xoff, yoff float64) Affine {
	return Affine{A: 1, C: xoff, E: 1, F: yoff}
}

// Scale returns a map that scales x by sx and y by sy.
func Scale(sx, sy float64) Affine { return Affine{A: sx, E: sy} }

// Rotation returns a counter-clockwise rotation about the origin by
// the given angle in degrees.
func Rotation(degrees float64) Affine {
	c, s := cosSinDeg(degrees)
	return Affine{A: c, B: -s, D: s, E: c}
}

// cosSinDeg returns exact values for multiples of 90°, where math.Cos and
// math.Sin would leave round-off in the zero terms.
func cosSinDeg(deg float64) (float64, float64) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// Multiply returns the composition a·b, which applies b first and then a.
func (a Affine) Multiply(b Affine) Affine {
	return Affine{
		A: a.A*b.A + a.B*b.D,
		B: a.A*b.B + a.B*b.E,
		C: a.A*b.C + a.B*b.F + a.C,
		D: a.D*b.A + a.E*b.D,
		E: a.D*b.B + a.E*b.E,
		F: a.D*b.C + a.E*b.F + a.F,
	}
}

// Determinant returns the determinant of the linear part of a.
func (a Affine) Determinant() float64 { return a.A*a.E - a.B*a.D }

// IsInvertible reports whether a has an inverse.
func (a Affine) IsInvertible() bool {
	det := a.Determinant()
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Inverse returns the inverse of a, or ErrSingular if there is none.
func (a Affine) Inverse() (Affine, error) {
	if !a.IsInvertible() {
		return Affine{}, fmt.Errorf("%w: determinant of %v is %g", ErrSingular, a, a.Determinant())
	}
	idet := 1 / a.Determinant()
	ra := a.E * idet
	rb := -a.B * idet
	rd := -a.D * idet
	re := a.A * idet
	return Affine{
		A: ra, B: rb, C: -a.C*ra - a.F*rb,
		D: rd, E: re, F: -a.C*rd - a.F*re,
	}, nil
}

// Apply maps (u, v) to (x, y). For a raster map, u is the column and
// v is the row.
func (a Affine) Apply(u, v float64) (x, y float64) {
	return a.A*u + a.B*v + a.C, a.D*u + a.E*v + a.F
}

// Coefficients returns [A, B, C, D, E, F].
func (a Affine) Coefficients() [6]float64 {
	return [6]float64{a.A, a.B, a.C, a.D, a.E, a.F}
}

// Matrix returns a as a 3×3 homogeneous matrix.
func (a Affine) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		a.A, a.B, a.C,
		a.D, a.E, a.F,
		0, 0, 1,
	})
}

func (a Affine) String() string {
	return fmt.Sprintf("Affine(%g, %g, %g, %g, %g, %g)", a.A, a.B, a.C, a.D, a.E, a.F)
}

// Transform converts between raster (row, column) indices and planar
// (x, y) coordinates. The inverse map is computed once when the
// Transform is created. A Transform is safe for concurrent use.
type Transform struct {
	forward, inverse Affine
}

// NewTransform returns a Transform for the given pixel-to-coordinate map.
// It fails with ErrSingular if the map cannot be inverted.
func NewTransform(a Affine) (*Transform, error) {
	inv, err := a.Inverse()
	if err != nil {
		return nil, err
	}
	return &Transform{forward: a, inverse: inv}, nil
}

// Affine returns the pixel-to-coordinate map.
func (t *Transform) Affine() Affine { return t.forward }

// PixelToCoord returns the planar coordinates of the given row and column.
func (t *Transform) PixelToCoord(row, col float64) (x, y float64) {
	return t.forward.Apply(col, row)
}

// CoordToPixel returns the row and column of the pixel containing (x, y).
// Fractional indices are floored, so a point on a pixel edge belongs to
// the pixel with the lower index.
func (t *Transform) CoordToPixel(x, y float64) (row, col int) {
	c, r := t.inverse.Apply(x, y)
	return floorIndex(r), floorIndex(c)
}

// PixelsToCoords is the vector form of PixelToCoord.
func (t *Transform) PixelsToCoords(rows, cols []float64) (xs, ys []float64, err error) {
	if len(rows) != len(cols) {
		return nil, nil, fmt.Errorf("%w: %d rows and %d columns", ErrLengthMismatch, len(rows), len(cols))
	}
	xs, ys = applyMany(t.forward, cols, rows)
	return xs, ys, nil
}

// CoordsToPixels is the vector form of CoordToPixel.
func (t *Transform) CoordsToPixels(xs, ys []float64) (rows, cols []int, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("%w: %d x and %d y values", ErrLengthMismatch, len(xs), len(ys))
	}
	c, r := applyMany(t.inverse, xs, ys)
	rows = make([]int, len(r))
	cols = make([]int, len(c))
	for i := range r {
		rows[i] = floorIndex(r[i])
		cols[i] = floorIndex(c[i])
	}
	return rows, cols, nil
}

// applyMany multiplies the homogeneous matrix of a by the 3×n matrix
// whose columns are (u[i], v[i], 1).
func applyMany(a Affine, u, v []float64) (x, y []float64) {
	n := len(u)
	if n == 0 {
		return []float64{}, []float64{}
	}
	in := mat.NewDense(3, n, nil)
	in.SetRow(0, u)
	in.SetRow(1, v)
	for i := 0; i < n; i++ {
		in.Set(2, i, 1)
	}
	var out mat.Dense
	out.Mul(a.Matrix(), in)
	x = mat.Row(nil, 0, &out)
	y = mat.Row(nil, 1, &out)
	return x, y
}

// snapTolerance is the relative distance from an integer within which a
// fractional index is treated as that integer before flooring.
const snapTolerance = 1e-9

func floorIndex(v float64) int {
	r := math.Round(v)
	if math.Abs(v-r) <= snapTolerance*math.Max(1, math.Abs(v)) {
		return int(r)
	}
	return int(math.Floor(v))
}
