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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/rivergeom"
	"github.com/spatialmodel/rivergeom/rasterfile"
	"github.com/spf13/cast"
)

// RasterConfig specifies an elevation raster and, optionally, the affine
// coefficients that place it.
type RasterConfig struct {
	// File is the path or URL of an ESRI ASCII grid.
	File string

	// Affine holds the six coefficients a, b, c, d, e, f of the map from
	// (col, row) to (x, y). If set, it overrides the placement read from
	// File.
	Affine []float64
}

// rasterConfig reads the Raster options from cfg.
func rasterConfig(cfg *viper.Viper) (RasterConfig, error) {
	c := RasterConfig{File: os.ExpandEnv(cfg.GetString("Raster.File"))}
	var err error
	c.Affine, err = toFloat64SliceE(cfg.Get("Raster.Affine"))
	if err != nil {
		return c, fmt.Errorf("rivergeomutil: Raster.Affine: %v", err)
	}
	if len(c.Affine) != 0 && len(c.Affine) != 6 {
		return c, fmt.Errorf("rivergeomutil: Raster.Affine needs 6 coefficients but has %d", len(c.Affine))
	}
	return c, nil
}

func (c RasterConfig) affine() (*rivergeom.Transform, error) {
	a := c.Affine
	return rivergeom.NewTransform(rivergeom.NewAffine(a[0], a[1], a[2], a[3], a[4], a[5]))
}

// Transform returns the pixel transform specified by c, loading the
// raster only if no affine coefficients are given.
func (c RasterConfig) Transform(ctx context.Context) (*rivergeom.Transform, error) {
	if len(c.Affine) == 6 {
		return c.affine()
	}
	r, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.Transform, nil
}

// Load loads the raster specified by c.
func (c RasterConfig) Load(ctx context.Context) (*rivergeom.Raster, error) {
	if c.File == "" {
		return nil, fmt.Errorf("rivergeomutil: no raster file specified; please set Raster.File")
	}
	path, err := maybeDownload(ctx, c.File)
	if err != nil {
		return nil, err
	}
	r, _, err := rasterfile.Load(path)
	if err != nil {
		return nil, err
	}
	if len(c.Affine) == 6 {
		t, err := c.affine()
		if err != nil {
			return nil, err
		}
		r = rivergeom.NewRaster(r.Data, t, r.NoData)
	}
	return r, nil
}

// transectConfig reads the Transect options from cfg.
func transectConfig(cfg *viper.Viper) rivergeom.TransectConfig {
	return rivergeom.TransectConfig{
		Step:              cfg.GetFloat64("Transect.Step"),
		Spacing:           cfg.GetFloat64("Transect.Spacing"),
		Buffer:            cfg.GetFloat64("Transect.Buffer"),
		MaxSearchDistance: cfg.GetFloat64("Transect.MaxSearchDistance"),
	}
}

// coords returns the pairs held by the slice options xName and yName.
func coords(cfg *viper.Viper, xName, yName string) (xs, ys []float64, err error) {
	if xs, err = toFloat64SliceE(cfg.Get(xName)); err != nil {
		return nil, nil, fmt.Errorf("rivergeomutil: %s: %v", xName, err)
	}
	if ys, err = toFloat64SliceE(cfg.Get(yName)); err != nil {
		return nil, nil, fmt.Errorf("rivergeomutil: %s: %v", yName, err)
	}
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("rivergeomutil: %s has %d values but %s has %d: %w",
			xName, len(xs), yName, len(ys), rivergeom.ErrLengthMismatch)
	}
	return xs, ys, nil
}

// toFloat64SliceE converts a configuration value to a slice of floats,
// accounting for the fact that it might be a list of strings if it was
// set from a command line argument, a JSON array if it was set from an
// environment variable, or a list of numbers if it was set from a
// configuration file.
func toFloat64SliceE(v interface{}) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return t, nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, nil
		}
		var o []float64
		if strings.HasPrefix(t, "[") {
			if err := json.Unmarshal([]byte(t), &o); err != nil {
				return nil, err
			}
			return o, nil
		}
		return toFloat64SliceE(strings.Split(t, ","))
	}
	s, err := cast.ToSliceE(v)
	if err != nil {
		if ss, err2 := cast.ToStringSliceE(v); err2 == nil {
			s = make([]interface{}, len(ss))
			for i, x := range ss {
				s[i] = x
			}
		} else {
			return nil, err
		}
	}
	o := make([]float64, 0, len(s))
	for _, x := range s {
		if str, ok := x.(string); ok {
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			x = str
		}
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return nil, err
		}
		o = append(o, f)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file directory exists,
// and expands any environment variables. An empty path is allowed and
// means that results are printed instead.
func checkOutputFile(f string) (string, error) {
	f = os.ExpandEnv(f)
	if f == "" || IsBlob(f) {
		return f, nil
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("rivergeomutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}
