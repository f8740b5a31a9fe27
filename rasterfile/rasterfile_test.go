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

package rasterfile

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spatialmodel/rivergeom"
	"gonum.org/v1/gonum/mat"
)

const testGrid = `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -1
1 2 3
4 -1 6
`

func TestReadASCIIGrid(t *testing.T) {
	data, h, err := ReadASCIIGrid(strings.NewReader(testGrid))
	if err != nil {
		t.Fatal(err)
	}
	want := Header{NCols: 3, NRows: 2, XLL: 100, YLL: 200, CellSize: 10, NoData: -1}
	if !reflect.DeepEqual(h, want) {
		t.Errorf("want %+v but have %+v", want, h)
	}
	if !mat.Equal(data, mat.NewDense(2, 3, []float64{1, 2, 3, 4, -1, 6})) {
		t.Errorf("bad data %v", mat.Formatted(data))
	}
	if a := h.Affine(); a != rivergeom.NewAffine(10, 0, 100, 0, -10, 220) {
		t.Errorf("bad affine %v", a)
	}
}

func TestReadASCIIGridCenter(t *testing.T) {
	g := "ncols 1\nnrows 1\nxllcenter 5\nyllcenter 5\ncellsize 10\n7\n"
	data, h, err := ReadASCIIGrid(strings.NewReader(g))
	if err != nil {
		t.Fatal(err)
	}
	if h.NoData != DefaultNoData {
		t.Errorf("want default no-data but have %g", h.NoData)
	}
	if data.At(0, 0) != 7 {
		t.Errorf("want 7 but have %g", data.At(0, 0))
	}
	if a := h.Affine(); a != rivergeom.NewAffine(10, 0, 0, 0, -10, 10) {
		t.Errorf("bad affine %v", a)
	}
}

func TestReadASCIIGridErrors(t *testing.T) {
	for _, g := range []string{
		"ncols 3\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"ncols 1\nnrows 1\nxllcorner 0\ncellsize 1\n1\n",
		"ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nbanana 1\n",
		"ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 0\n1\n",
		"ncols 3037000500\nnrows 3037000500\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"ncols 65536\nnrows 8192\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"",
	} {
		if _, _, err := ReadASCIIGrid(strings.NewReader(g)); err == nil {
			t.Errorf("want an error for %q", g)
		}
	}
}

func TestReadWorldFile(t *testing.T) {
	a, err := ReadWorldFile(strings.NewReader("10\n0\n0\n-10\n105\n215\n"))
	if err != nil {
		t.Fatal(err)
	}
	if want := rivergeom.NewAffine(10, 0, 100, 0, -10, 220); a != want {
		t.Errorf("want %v but have %v", want, a)
	}
	if _, err := ReadWorldFile(strings.NewReader("10\n0\n0\n")); err == nil {
		t.Error("want an error for a short world file")
	}
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "rasterfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "dem.asc")
	if err := ioutil.WriteFile(path, []byte(testGrid), 0644); err != nil {
		t.Fatal(err)
	}
	r, m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 3 || m.Height != 2 || m.NoData != -1 || m.CRS != nil || m.WorldFile != "" {
		t.Errorf("bad metadata %+v", m)
	}
	v, err := r.Sample(125, 215)
	if err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Errorf("want 3 but have %g", v)
	}

	// A world file moves the grid and a .prj file sets its projection.
	if err := ioutil.WriteFile(filepath.Join(dir, "dem.wld"), []byte("1\n0\n0\n-1\n0.5\n1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, "dem.prj"), []byte("+proj=longlat\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r, m, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.CRS == nil {
		t.Error("missing spatial reference")
	}
	if m.WorldFile != filepath.Join(dir, "dem.wld") {
		t.Errorf("bad world file %q", m.WorldFile)
	}
	v, err = r.Sample(2.5, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if v != 6 {
		t.Errorf("want 6 but have %g", v)
	}
}

func TestWriteASCIIGrid(t *testing.T) {
	data := mat.NewDense(2, 2, []float64{1.5, 2, -9999, 4})
	h := Header{XLL: 10, YLL: 20, CellSize: 0.5, NoData: -9999}
	var b bytes.Buffer
	if err := WriteASCIIGrid(&b, data, h); err != nil {
		t.Fatal(err)
	}
	data2, h2, err := ReadASCIIGrid(&b)
	if err != nil {
		t.Fatal(err)
	}
	h.NRows, h.NCols = 2, 2
	if !reflect.DeepEqual(h, h2) {
		t.Errorf("want %+v but have %+v", h, h2)
	}
	if !mat.Equal(data, data2) {
		t.Errorf("want %v but have %v", mat.Formatted(data), mat.Formatted(data2))
	}
}
