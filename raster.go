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
	"gonum.org/v1/gonum/mat"
)

// Raster is a grid of values indexed [row][col] together with the
// transform that places it in planar space. Row 0 is the top edge of the
// grid. A Raster is read-only once created.
type Raster struct {
	// Data holds the grid values.
	Data *mat.Dense

	// Transform maps between pixel indices and coordinates.
	Transform *Transform

	// NoData is the value that marks missing data. It is informational;
	// Sample returns it like any other value.
	NoData float64
}

// NewRaster returns a Raster holding data placed by t.
func NewRaster(data *mat.Dense, t *Transform, noData float64) *Raster {
	return &Raster{Data: data, Transform: t, NoData: noData}
}

// Dims returns the number of rows and columns in r.
func (r *Raster) Dims() (rows, cols int) { return r.Data.Dims() }

// Bounds returns the planar extent covered by r.
func (r *Raster) Bounds() *geom.Bounds {
	rows, cols := r.Dims()
	b := geom.NewBounds()
	for _, rc := range [][2]float64{{0, 0}, {0, float64(cols)}, {float64(rows), 0}, {float64(rows), float64(cols)}} {
		x, y := r.Transform.PixelToCoord(rc[0], rc[1])
		b.Extend(geom.Point{X: x, Y: y}.Bounds())
	}
	return b
}

// Sample returns the value of the pixel that contains (x, y). A location
// that resolves to a pixel outside of the grid yields an
// *OutOfBoundsError rather than a value.
func (r *Raster) Sample(x, y float64) (float64, error) {
	row, col := r.Transform.CoordToPixel(x, y)
	rows, cols := r.Dims()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return math.NaN(), &OutOfBoundsError{X: x, Y: y, Row: row, Col: col, Rows: rows, Cols: cols}
	}
	return r.Data.At(row, col), nil
}

// SampleMany returns the value under each point.
func (r *Raster) SampleMany(pts []geom.Point) ([]float64, error) {
	o := make([]float64, len(pts))
	for i, p := range pts {
		v, err := r.Sample(p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("rivergeom: sampling point %d: %w", i, err)
		}
		o[i] = v
	}
	return o, nil
}

// IsNoData reports whether v is missing data in r.
func (r *Raster) IsNoData(v float64) bool {
	if math.IsNaN(r.NoData) {
		return math.IsNaN(v)
	}
	return v == r.NoData
}
