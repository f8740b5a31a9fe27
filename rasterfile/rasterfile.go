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

// Package rasterfile reads and writes elevation rasters stored as ESRI
// ASCII grids, optionally placed by a world file and described by a .prj
// file.
package rasterfile

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/spatialmodel/rivergeom"
	"gonum.org/v1/gonum/mat"
)

// DefaultNoData is the no-data value of a grid whose header does not
// specify one.
const DefaultNoData = -9999.

// MaxCells is the largest number of cells ReadASCIIGrid will read.
const MaxCells = 1 << 28

// Header holds the header of an ESRI ASCII grid.
type Header struct {
	NCols, NRows int

	// XLL and YLL locate the lower-left corner of the grid, or the
	// center of the lower-left pixel if Center is true.
	XLL, YLL float64
	Center   bool

	CellSize float64
	NoData   float64
}

// Affine returns the pixel-to-coordinate map described by h, with row 0
// at the top of the grid.
func (h Header) Affine() rivergeom.Affine {
	x0, y0 := h.XLL, h.YLL
	if h.Center {
		x0 -= h.CellSize / 2
		y0 -= h.CellSize / 2
	}
	top := y0 + float64(h.NRows)*h.CellSize
	return rivergeom.NewAffine(h.CellSize, 0, x0, 0, -h.CellSize, top)
}

// Meta describes a loaded raster.
type Meta struct {
	Width, Height int
	NoData        float64
	Transform     rivergeom.Affine

	// WorldFile is the world file that placed the raster, if any.
	WorldFile string

	// CRS is the spatial reference read from the .prj file, or nil if
	// there is none.
	CRS *proj.SR
}

// ReadASCIIGrid reads an ESRI ASCII grid.
func ReadASCIIGrid(r io.Reader) (*mat.Dense, Header, error) {
	h := Header{NoData: DefaultNoData}
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)

	var first string
	seen := make(map[string]bool)
	for s.Scan() {
		key := s.Text()
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !s.Scan() {
			return nil, h, fmt.Errorf("rasterfile: missing value for header key %q", key)
		}
		val := s.Text()
		var err error
		switch k := strings.ToLower(key); k {
		case "ncols":
			h.NCols, err = strconv.Atoi(val)
		case "nrows":
			h.NRows, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			h.XLL, err = strconv.ParseFloat(val, 64)
			h.Center = k == "xllcenter"
		case "yllcorner", "yllcenter":
			h.YLL, err = strconv.ParseFloat(val, 64)
		case "cellsize":
			h.CellSize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			h.NoData, err = strconv.ParseFloat(val, 64)
		default:
			return nil, h, fmt.Errorf("rasterfile: unknown header key %q", key)
		}
		if err != nil {
			return nil, h, fmt.Errorf("rasterfile: header key %q: %v", key, err)
		}
		seen[headerKey(key)] = true
	}
	if err := s.Err(); err != nil {
		return nil, h, fmt.Errorf("rasterfile: reading grid: %v", err)
	}
	for _, k := range []string{"ncols", "nrows", "xll", "yll", "cellsize"} {
		if !seen[k] {
			return nil, h, fmt.Errorf("rasterfile: header is missing %q", k)
		}
	}
	if h.NCols <= 0 || h.NRows <= 0 || !(h.CellSize > 0) {
		return nil, h, fmt.Errorf("rasterfile: invalid grid %d×%d with cell size %g", h.NRows, h.NCols, h.CellSize)
	}

	if h.NCols > MaxCells/h.NRows {
		return nil, h, fmt.Errorf("rasterfile: grid %d×%d has more than %d cells", h.NRows, h.NCols, MaxCells)
	}
	n := h.NRows * h.NCols
	data := make([]float64, 0, n)
	parse := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("rasterfile: value %d: %v", len(data), err)
		}
		data = append(data, v)
		return nil
	}
	if first == "" {
		return nil, h, fmt.Errorf("rasterfile: grid has no values")
	}
	if err := parse(first); err != nil {
		return nil, h, err
	}
	for len(data) < n && s.Scan() {
		if err := parse(s.Text()); err != nil {
			return nil, h, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, h, fmt.Errorf("rasterfile: reading grid: %v", err)
	}
	if len(data) != n {
		return nil, h, fmt.Errorf("rasterfile: want %d values but have %d", n, len(data))
	}
	return mat.NewDense(h.NRows, h.NCols, data), h, nil
}

// headerKey returns the lower-case header key, with the corner and
// center variants of the origin keys merged.
func headerKey(key string) string {
	k := strings.ToLower(key)
	if strings.HasPrefix(k, "xll") || strings.HasPrefix(k, "yll") {
		return k[:3]
	}
	return k
}

// WriteASCIIGrid writes data as an ESRI ASCII grid with the given header.
// The dimensions in h are taken from data.
func WriteASCIIGrid(w io.Writer, data mat.Matrix, h Header) error {
	h.NRows, h.NCols = data.Dims()
	bw := bufio.NewWriter(w)
	ll := "corner"
	if h.Center {
		ll = "center"
	}
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", h.NCols, h.NRows)
	fmt.Fprintf(bw, "xll%s %s\nyll%s %s\n", ll, ftoa(h.XLL), ll, ftoa(h.YLL))
	fmt.Fprintf(bw, "cellsize %s\nNODATA_value %s\n", ftoa(h.CellSize), ftoa(h.NoData))
	for i := 0; i < h.NRows; i++ {
		for j := 0; j < h.NCols; j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(ftoa(data.At(i, j)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ReadWorldFile reads a six-line world file. World files locate the
// center of the upper-left pixel; the returned map locates its corner.
func ReadWorldFile(r io.Reader) (rivergeom.Affine, error) {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	var v [6]float64
	for i := range v {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return rivergeom.Affine{}, fmt.Errorf("rasterfile: reading world file: %v", err)
			}
			return rivergeom.Affine{}, fmt.Errorf("rasterfile: world file has %d values; want 6", i)
		}
		f, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return rivergeom.Affine{}, fmt.Errorf("rasterfile: world file line %d: %v", i+1, err)
		}
		v[i] = f
	}
	a, d, b, e, c, f := v[0], v[1], v[2], v[3], v[4], v[5]
	return rivergeom.NewAffine(a, b, c-a/2-b/2, d, e, f-d/2-e/2), nil
}

// worldFileExtensions are the sidecar extensions searched by Load, in
// order.
var worldFileExtensions = []string{".wld", ".asw", ".tfw", ".WLD", ".ASW", ".TFW"}

// FindWorldFile returns the path of the world file next to path, or ""
// if there is none.
func FindWorldFile(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range worldFileExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

// Load reads the ESRI ASCII grid at path. A world file next to the grid
// overrides the placement given in the grid header, and a .prj file next
// to the grid supplies the spatial reference.
func Load(path string) (*rivergeom.Raster, *Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("rasterfile: %v", err)
	}
	defer f.Close()
	data, h, err := ReadASCIIGrid(f)
	if err != nil {
		return nil, nil, fmt.Errorf("rasterfile: loading %s: %v", path, err)
	}
	m := &Meta{
		Width:     h.NCols,
		Height:    h.NRows,
		NoData:    h.NoData,
		Transform: h.Affine(),
	}
	if wf := FindWorldFile(path); wf != "" {
		w, err := os.Open(wf)
		if err != nil {
			return nil, nil, fmt.Errorf("rasterfile: %v", err)
		}
		m.Transform, err = ReadWorldFile(w)
		w.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("rasterfile: %s: %v", wf, err)
		}
		m.WorldFile = wf
	}
	if m.CRS, err = readPrj(path); err != nil {
		return nil, nil, err
	}
	t, err := rivergeom.NewTransform(m.Transform)
	if err != nil {
		return nil, nil, fmt.Errorf("rasterfile: loading %s: %w", path, err)
	}
	return rivergeom.NewRaster(data, t, m.NoData), m, nil
}

// readPrj parses the .prj file next to path. It returns nil if there is
// no such file.
func readPrj(path string) (*proj.SR, error) {
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	b, err := ioutil.ReadFile(prj)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("rasterfile: %v", err)
	}
	sr, err := proj.Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("rasterfile: parsing %s: %v", prj, err)
	}
	return sr, nil
}
