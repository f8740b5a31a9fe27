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

package vectorfile

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/spatialmodel/rivergeom"
)

// object holds any GeoJSON object: a geometry, a feature or a feature
// collection.
type object struct {
	Type        string                 `json:"type"`
	Coordinates interface{}            `json:"coordinates"`
	Geometries  []object               `json:"geometries"`
	Geometry    *object                `json:"geometry"`
	Properties  map[string]interface{} `json:"properties"`
	Features    []object               `json:"features"`
}

// multiTypes gives the part type of each multi-part geometry type.
var multiTypes = map[string]string{
	"MultiPoint":      "Point",
	"MultiLineString": "LineString",
	"MultiPolygon":    "Polygon",
}

// geometry converts o, which must be a GeoJSON geometry, to a geom.Geom.
// Multi-part geometries are returned as a geom.GeometryCollection of
// their parts.
func (o *object) geometry() (geom.Geom, error) {
	if o == nil {
		return nil, nil
	}
	if o.Type == "GeometryCollection" {
		gc := make(geom.GeometryCollection, len(o.Geometries))
		for i := range o.Geometries {
			g, err := o.Geometries[i].geometry()
			if err != nil {
				return nil, err
			}
			gc[i] = g
		}
		return gc, nil
	}
	coordinates, err := planar(o.Coordinates)
	if err != nil {
		return nil, err
	}
	partType, ok := multiTypes[o.Type]
	if !ok {
		return geojson.FromGeoJSON(&geojson.Geometry{Type: o.Type, Coordinates: coordinates})
	}
	coords, ok := coordinates.([]interface{})
	if !ok {
		return nil, geojson.InvalidGeometryError{}
	}
	parts := make(geom.GeometryCollection, len(coords))
	for i, c := range coords {
		g, err := geojson.FromGeoJSON(&geojson.Geometry{Type: partType, Coordinates: c})
		if err != nil {
			return nil, err
		}
		parts[i] = g
	}
	return parts, nil
}

// planar converts the numbers in GeoJSON coordinates to float64 and
// drops any elevation or measure after the second value of a position.
func planar(c interface{}) (interface{}, error) {
	array, ok := c.([]interface{})
	if !ok || len(array) == 0 {
		return c, nil
	}
	if _, ok := array[0].([]interface{}); ok {
		out := make([]interface{}, len(array))
		for i, e := range array {
			var err error
			if out[i], err = planar(e); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if len(array) < 2 {
		return nil, geojson.InvalidGeometryError{}
	}
	pos := make([]interface{}, 2)
	for i := range pos {
		switch v := array[i].(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, err
			}
			pos[i] = f
		case float64:
			pos[i] = v
		default:
			return nil, geojson.InvalidGeometryError{}
		}
	}
	return pos, nil
}

// propertyString formats a feature property. Numbers keep the text they
// had in the file.
func propertyString(v interface{}) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func decodeObject(r io.Reader) (*object, error) {
	o := new(object)
	d := json.NewDecoder(r)
	d.UseNumber()
	if err := d.Decode(o); err != nil {
		return nil, fmt.Errorf("vectorfile: decoding GeoJSON: %v", err)
	}
	return o, nil
}

// ReadGeoJSON reads a GeoJSON geometry, feature or feature collection.
// The geometries of a feature collection are returned as a
// geom.GeometryCollection.
func ReadGeoJSON(r io.Reader) (geom.Geom, error) {
	o, err := decodeObject(r)
	if err != nil {
		return nil, err
	}
	var g geom.Geom
	switch o.Type {
	case "FeatureCollection":
		gc := make(geom.GeometryCollection, len(o.Features))
		for i := range o.Features {
			if gc[i], err = o.Features[i].Geometry.geometry(); err != nil {
				return nil, fmt.Errorf("vectorfile: feature %d: %v", i, err)
			}
		}
		g = gc
	case "Feature":
		g, err = o.Geometry.geometry()
	default:
		g, err = o.geometry()
	}
	if err != nil {
		return nil, fmt.Errorf("vectorfile: %v", err)
	}
	return g, nil
}

// ReadGeoJSONSegments reads the features of a GeoJSON feature collection
// as segments. The ID of each feature is read from the idField property,
// or is the index of the feature if idField is empty. A bare feature or
// geometry is read as a collection of one.
func ReadGeoJSONSegments(r io.Reader, idField string) ([]rivergeom.Segment, error) {
	o, err := decodeObject(r)
	if err != nil {
		return nil, err
	}
	var features []object
	switch o.Type {
	case "FeatureCollection":
		features = o.Features
	case "Feature":
		features = []object{*o}
	default:
		features = []object{{Type: "Feature", Geometry: o}}
	}
	var segs []rivergeom.Segment
	for i, f := range features {
		id := strconv.Itoa(i)
		if idField != "" {
			v, ok := f.Properties[idField]
			if !ok {
				return nil, fmt.Errorf("vectorfile: feature %d has no property %q", i, idField)
			}
			id = propertyString(v)
		}
		g, err := f.Geometry.geometry()
		if err != nil {
			return nil, fmt.Errorf("vectorfile: feature %s: %v", id, err)
		}
		parts, err := Explode(id, g)
		if err != nil {
			return nil, err
		}
		segs = append(segs, parts...)
	}
	return segs, nil
}
