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

// Package vectorfile reads line, point and polygon features from
// shapefiles and GeoJSON files, and writes lines and points to
// shapefiles.
package vectorfile

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/rivergeom"
)

// Meta describes a vector file.
type Meta struct {
	// CRS is the spatial reference read from the .prj file, or nil if
	// there is none.
	CRS *proj.SR
}

// Explode converts g into segments, splitting multi-part geometries into
// their parts. A geometry with a single part keeps id as its ID; the
// parts of a multi-part geometry get IDs of the form "id.k", with k
// counting from 0.
func Explode(id string, g geom.Geom) ([]rivergeom.Segment, error) {
	var parts []geom.Geom
	switch t := g.(type) {
	case geom.MultiLineString:
		for _, l := range t {
			parts = append(parts, l)
		}
	case geom.MultiPolygon:
		for _, p := range t {
			parts = append(parts, p)
		}
	case geom.MultiPoint:
		for _, p := range t {
			parts = append(parts, p)
		}
	case geom.GeometryCollection:
		parts = t
	case nil:
		return nil, fmt.Errorf("vectorfile: feature %s has no geometry", id)
	default:
		parts = []geom.Geom{g}
	}
	var o []rivergeom.Segment
	for k, p := range parts {
		partID := id
		if len(parts) > 1 {
			partID = id + "." + strconv.Itoa(k)
		}
		switch p.(type) {
		case geom.MultiLineString, geom.MultiPolygon, geom.MultiPoint, geom.GeometryCollection:
			sub, err := Explode(partID, p)
			if err != nil {
				return nil, err
			}
			o = append(o, sub...)
			continue
		}
		s, err := rivergeom.AsShape(p)
		if err != nil {
			return nil, fmt.Errorf("vectorfile: feature %s: %v", partID, err)
		}
		o = append(o, rivergeom.Segment{ID: partID, Shape: s})
	}
	return o, nil
}

// ReadShapefile reads the features in the shapefile at path as segments.
// The ID of each feature is read from idField, or is the record number
// if idField is empty.
func ReadShapefile(path, idField string) ([]rivergeom.Segment, *Meta, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, nil, fmt.Errorf("vectorfile: opening %s: %v", path, err)
	}
	m := new(Meta)
	sr, err := d.SR()
	if err == nil {
		m.CRS = sr
	} else if !os.IsNotExist(err) {
		d.Close()
		return nil, nil, fmt.Errorf("vectorfile: reading projection of %s: %v", path, err)
	}

	var fields []string
	if idField != "" {
		fields = []string{idField}
	}
	var segs []rivergeom.Segment
	for row := 0; ; row++ {
		g, vals, more := d.DecodeRowFields(fields...)
		if err := d.Error(); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("vectorfile: reading %s: %v", path, err)
		}
		if !more {
			break
		}
		id := strconv.Itoa(row)
		if idField != "" {
			id = strings.TrimSpace(vals[idField])
		}
		parts, err := Explode(id, g)
		if err != nil {
			d.Close()
			return nil, nil, err
		}
		segs = append(segs, parts...)
	}
	d.Close()
	return segs, m, nil
}

// ReadSegments reads the features in a shapefile (.shp) or GeoJSON
// (.geojson or .json) file as segments. See ReadShapefile and
// ReadGeoJSONSegments for how IDs are assigned.
func ReadSegments(path, idField string) ([]rivergeom.Segment, *Meta, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path, idField)
	case ".geojson", ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("vectorfile: %v", err)
		}
		defer f.Close()
		segs, err := ReadGeoJSONSegments(f, idField)
		if err != nil {
			return nil, nil, fmt.Errorf("vectorfile: reading %s: %v", path, err)
		}
		return segs, new(Meta), nil
	default:
		return nil, nil, fmt.Errorf("vectorfile: unsupported file type %q", path)
	}
}

// ReadLines reads the line features in path.
func ReadLines(path string) ([]geom.LineString, error) {
	segs, _, err := ReadSegments(path, "")
	if err != nil {
		return nil, err
	}
	o := make([]geom.LineString, len(segs))
	for i, s := range segs {
		l, ok := s.Shape.(rivergeom.Line)
		if !ok {
			return nil, fmt.Errorf("vectorfile: feature %s of %s is a %T, not a line", s.ID, path, s.Shape)
		}
		o[i] = l.LineString
	}
	return o, nil
}

// ReadBoundary reads the line or polygon features in path as a single
// boundary.
func ReadBoundary(path string) (rivergeom.Boundary, error) {
	segs, _, err := ReadSegments(path, "")
	if err != nil {
		return nil, err
	}
	var b rivergeom.Boundaries
	for _, s := range segs {
		part, ok := s.Shape.(rivergeom.Boundary)
		if !ok {
			return nil, fmt.Errorf("vectorfile: feature %s of %s is a %T, which cannot be a boundary", s.ID, path, s.Shape)
		}
		b = append(b, part)
	}
	switch len(b) {
	case 0:
		return nil, fmt.Errorf("vectorfile: %s has no features", path)
	case 1:
		return b[0], nil
	}
	return b, nil
}

// Field is a shapefile attribute column with one value per feature.
type Field struct {
	goshp.Field
	Values []interface{}
}

// StringField returns a text column.
func StringField(name string, values []string) Field {
	f := Field{Field: goshp.StringField(name, 50), Values: make([]interface{}, len(values))}
	for i, v := range values {
		f.Values[i] = v
	}
	return f
}

// FloatField returns a floating point column.
func FloatField(name string, values []float64) Field {
	f := Field{Field: goshp.FloatField(name, 20, 8), Values: make([]interface{}, len(values))}
	for i, v := range values {
		f.Values[i] = v
	}
	return f
}

// IntField returns an integer column.
func IntField(name string, values []int) Field {
	f := Field{Field: goshp.NumberField(name, 10), Values: make([]interface{}, len(values))}
	for i, v := range values {
		f.Values[i] = v
	}
	return f
}

// WriteLines writes lines to a polyline shapefile at path, with one
// attribute column per field.
func WriteLines(path string, lines []geom.LineString, fields ...Field) error {
	g := make([]geom.Geom, len(lines))
	for i, l := range lines {
		g[i] = geom.MultiLineString{l}
	}
	return write(path, goshp.POLYLINE, g, fields)
}

// WritePoints writes points to a point shapefile at path, with one
// attribute column per field.
func WritePoints(path string, pts []geom.Point, fields ...Field) error {
	g := make([]geom.Geom, len(pts))
	for i, p := range pts {
		g[i] = p
	}
	return write(path, goshp.POINT, g, fields)
}

func write(path string, t goshp.ShapeType, g []geom.Geom, fields []Field) error {
	shpFields := make([]goshp.Field, len(fields))
	for i, f := range fields {
		if len(f.Values) != len(g) {
			return fmt.Errorf("vectorfile: field %d has %d values for %d features", i, len(f.Values), len(g))
		}
		shpFields[i] = f.Field
	}
	path = strings.TrimSuffix(path, filepath.Ext(path)) + ".shp"
	e, err := shp.NewEncoderFromFields(path, t, shpFields...)
	if err != nil {
		return fmt.Errorf("vectorfile: creating %s: %v", path, err)
	}
	vals := make([]interface{}, len(fields))
	for i, gg := range g {
		for j, f := range fields {
			vals[j] = f.Values[i]
		}
		if err := e.EncodeFields(gg, vals...); err != nil {
			e.Close()
			return fmt.Errorf("vectorfile: writing %s: %v", path, err)
		}
	}
	e.Close()
	return nil
}

// CopyPrj copies the .prj file that accompanies from, if there is one, to
// accompany to.
func CopyPrj(from, to string) error {
	src := strings.TrimSuffix(from, filepath.Ext(from)) + ".prj"
	b, err := ioutil.ReadFile(src)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("vectorfile: %v", err)
	}
	dst := strings.TrimSuffix(to, filepath.Ext(to)) + ".prj"
	if err := ioutil.WriteFile(dst, b, 0644); err != nil {
		return fmt.Errorf("vectorfile: %v", err)
	}
	return nil
}
