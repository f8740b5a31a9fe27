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

package rivergeomutil

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/rivergeom"
)

func TestToFloat64SliceE(t *testing.T) {
	for _, test := range []struct {
		name string
		in   interface{}
		want []float64
	}{
		{name: "nil", in: nil, want: nil},
		{name: "floats", in: []float64{1, 2}, want: []float64{1, 2}},
		{name: "strings", in: []string{"1", " 2.5"}, want: []float64{1, 2.5}},
		{name: "empty strings", in: []string{""}, want: []float64{}},
		{name: "csv", in: "1,-2", want: []float64{1, -2}},
		{name: "json", in: "[3, 4.5]", want: []float64{3, 4.5}},
		{name: "toml", in: []interface{}{int64(1), 0.5}, want: []float64{1, 0.5}},
	} {
		t.Run(test.name, func(t *testing.T) {
			have, err := toFloat64SliceE(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("want %#v but have %#v", test.want, have)
			}
		})
	}
	if _, err := toFloat64SliceE([]string{"a"}); err == nil {
		t.Error("want an error for a non-number")
	}
}

func TestRasterConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Raster.Affine", []string{"1", "0", "0", "0", "-1"})
	if _, err := rasterConfig(cfg); err == nil {
		t.Error("want an error for 5 coefficients")
	}

	cfg.Set("Raster.Affine", []string{"2", "0", "100", "0", "-2", "50"})
	rc, err := rasterConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := rc.Transform(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if row, col := tr.CoordToPixel(103, 45); row != 2 || col != 1 {
		t.Errorf("want (2, 1) but have (%d, %d)", row, col)
	}
	if _, err := rc.Load(context.Background()); err == nil {
		t.Error("want an error for a missing raster file")
	}

	cfg.Set("Raster.Affine", []string{"1", "2", "0", "2", "4", "0"})
	rc, err = rasterConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rc.Transform(context.Background()); !errors.Is(err, rivergeom.ErrSingular) {
		t.Errorf("want a singular transform error but have %v", err)
	}
}

func TestRasterConfigLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "rivergeomutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "dem.asc")
	grid := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2\n3 4\n"
	if err := ioutil.WriteFile(path, []byte(grid), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("RIVERGEOM_TEST_DIR", dir)
	defer os.Unsetenv("RIVERGEOM_TEST_DIR")
	cfg := viper.New()
	cfg.Set("Raster.File", "${RIVERGEOM_TEST_DIR}/dem.asc")
	rc, err := rasterConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := rc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v, err := r.Sample(1.5, 0.5); err != nil || v != 4 {
		t.Errorf("want 4 but have %g (%v)", v, err)
	}

	// The affine coefficients move the grid.
	rc.Affine = []float64{1, 0, 10, 0, -1, 2}
	r, err = rc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v, err := r.Sample(10.5, 1.5); err != nil || v != 1 {
		t.Errorf("want 1 but have %g (%v)", v, err)
	}
}

func TestCoords(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Coord.X", []string{"1", "2"})
	cfg.Set("Coord.Y", []string{"3"})
	if _, _, err := coords(cfg, "Coord.X", "Coord.Y"); !errors.Is(err, rivergeom.ErrLengthMismatch) {
		t.Errorf("want a length mismatch error but have %v", err)
	}
	cfg.Set("Coord.Y", "3,4")
	xs, ys, err := coords(cfg, "Coord.X", "Coord.Y")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(xs, []float64{1, 2}) || !reflect.DeepEqual(ys, []float64{3, 4}) {
		t.Errorf("have %v, %v", xs, ys)
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile("/this/does/not/exist/out.shp"); err == nil {
		t.Error("want an error for a missing directory")
	}
	for _, f := range []string{"", "gs://bucket/out.shp", filepath.Join(os.TempDir(), "out.shp")} {
		if have, err := checkOutputFile(f); err != nil || have != f {
			t.Errorf("%q: have %q, %v", f, have, err)
		}
	}
}
