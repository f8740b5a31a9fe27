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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spatialmodel/rivergeom"
	"github.com/spatialmodel/rivergeom/vectorfile"
)

// execute runs the command line given by args and returns its output.
func execute(t *testing.T, args ...string) string {
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestVersion(t *testing.T) {
	if have, want := execute(t, "version"), "rivergeom v"+rivergeom.Version+"\n"; have != want {
		t.Errorf("want %q but have %q", want, have)
	}
}

func TestRowColCommand(t *testing.T) {
	Cfg.Set("Raster.Affine", []float64{1, 0, 0, 0, -1, 10})
	Cfg.Set("Coord.X", []string{"0.5", "2.5"})
	Cfg.Set("Coord.Y", []string{"9.5", "7.5"})
	have := table(execute(t, "rowcol"))
	want := [][]string{{"x", "y", "row", "col"}, {"0.5", "9.5", "0", "0"}, {"2.5", "7.5", "2", "2"}}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("want %v but have %v", want, have)
	}
}

func TestXYCommand(t *testing.T) {
	Cfg.Set("Raster.Affine", []float64{1, 0, 0, 0, -1, 10})
	Cfg.Set("Pixel.Rows", []string{"0", "2"})
	Cfg.Set("Pixel.Cols", []string{"0", "1"})
	have := table(execute(t, "xy"))
	want := [][]string{{"row", "col", "x", "y"}, {"0", "0", "0", "10"}, {"2", "1", "1", "8"}}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("want %v but have %v", want, have)
	}
}

func TestSinuosityCommand(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	Cfg.Set("Lines.File", filepath.Join(dir, "segs.shp"))
	Cfg.Set("Lines.IDField", "id")
	Cfg.Set("OutputFile", "")
	have := table(execute(t, "sinuosity"))
	if len(have) != 4 {
		t.Fatalf("want a header and 3 rows but have %v", have)
	}
	if want := []string{"3", "10", "1"}; !reflect.DeepEqual(have[3], want) {
		t.Errorf("want %v but have %v", want, have[3])
	}
}

func TestStitchCommand(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "stitched.shp")
	Cfg.Set("Lines.File", filepath.Join(dir, "segs.shp"))
	Cfg.Set("Lines.IDField", "id")
	Cfg.Set("Stitch.Seed", "2")
	Cfg.Set("Stitch.MaxAttempts", 0)
	Cfg.Set("OutputFile", out)
	execute(t, "stitch")
	lines, err := vectorfile.ReadLines(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || len(lines[0]) != 6 {
		t.Errorf("want one line of 6 vertices but have %v", lines)
	}
}

func TestTransectCommand(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "transects.shp")
	Cfg.Set("Lines.File", filepath.Join(dir, "center.geojson"))
	Cfg.Set("Transect.Bank", filepath.Join(dir, "bank.geojson"))
	Cfg.Set("Transect.Step", 0.5)
	Cfg.Set("Transect.Spacing", 2.0)
	Cfg.Set("Transect.Buffer", 1.0)
	Cfg.Set("Transect.MaxSearchDistance", 20.0)
	Cfg.Set("OutputFile", out)
	execute(t, "transect")
	lines, err := vectorfile.ReadLines(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 4 {
		t.Errorf("want 4 transects but have %d", len(lines))
	}
}

func TestBatchCommand(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	os.Setenv("RIVERGEOM_TEST_DIR", dir)
	defer os.Unsetenv("RIVERGEOM_TEST_DIR")
	path := filepath.Join(dir, "batch.toml")
	if err := ioutil.WriteFile(path, []byte(testBatch), 0644); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("Batch.File", "${RIVERGEOM_TEST_DIR}/batch.toml")
	execute(t, "batch")
	if _, err := os.Stat(filepath.Join(dir, "transects.shp")); err != nil {
		t.Error(err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(path, []byte("LogLevel = \"debug\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("config", path)
	defer Cfg.Set("config", "")
	execute(t, "version")
	if have := Cfg.GetString("LogLevel"); have != "debug" {
		t.Errorf("want debug but have %s", have)
	}

	Cfg.Set("LogLevel", "loud")
	defer Cfg.Set("LogLevel", "info")
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err == nil {
		t.Error("want an error for an invalid log level")
	}
}
