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
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/rivergeom"
	"github.com/spatialmodel/rivergeom/internal/hash"
	"github.com/spatialmodel/rivergeom/vectorfile"
)

// LineSet is a set of line features and their IDs.
type LineSet struct {
	IDs   []string
	Lines []geom.LineString

	// Local is the local copy of the file the lines were read from.
	// Its .prj file, if there is one, is copied to outputs.
	Local string
}

// ReadLineSet reads the line features in the shapefile or GeoJSON file
// at path, which may be a URL or blob storage location. IDs are read from
// idField, or are feature indices if idField is empty.
func ReadLineSet(ctx context.Context, path, idField string) (*LineSet, error) {
	f, err := readSegments(ctx, path, idField)
	if err != nil {
		return nil, err
	}
	ls := &LineSet{
		IDs:   make([]string, len(f.Segments)),
		Lines: make([]geom.LineString, len(f.Segments)),
		Local: f.Local,
	}
	for i, s := range f.Segments {
		l, ok := s.Shape.(rivergeom.Line)
		if !ok {
			return nil, fmt.Errorf("rivergeomutil: feature %s of %s is a %T, not a line", s.ID, path, s.Shape)
		}
		ls.IDs[i] = s.ID
		ls.Lines[i] = l.LineString
	}
	return ls, nil
}

// segmentFile holds the segments read from a file and the path of the
// local copy they were read from.
type segmentFile struct {
	Segments []rivergeom.Segment
	Local    string
}

func loadSegments(ctx context.Context, path, idField string) (*segmentFile, error) {
	if path == "" {
		return nil, fmt.Errorf("rivergeomutil: no input file specified; please set Lines.File")
	}
	local, err := maybeDownload(ctx, path)
	if err != nil {
		return nil, err
	}
	segs, _, err := vectorfile.ReadSegments(local, idField)
	if err != nil {
		return nil, err
	}
	return &segmentFile{Segments: segs, Local: local}, nil
}

func loadBoundary(ctx context.Context, path string) (rivergeom.Boundary, error) {
	if path == "" {
		return nil, fmt.Errorf("rivergeomutil: no bank file specified; please set Transect.Bank")
	}
	local, err := maybeDownload(ctx, path)
	if err != nil {
		return nil, err
	}
	return vectorfile.ReadBoundary(local)
}

// output writes line results to outputFile if it is set, or prints them
// to w as a table otherwise. The .prj file of the local file template is
// copied to the output.
type output struct {
	w          io.Writer
	outputFile string
	template   string
}

func (o output) lines(ctx context.Context, lines []geom.LineString, fields ...vectorfile.Field) error {
	if o.outputFile == "" {
		return o.table(fields)
	}
	var u uploader
	path, err := u.local(o.outputFile)
	if err != nil {
		return err
	}
	if err := vectorfile.WriteLines(path, lines, fields...); err != nil {
		return err
	}
	if err := o.copyPrj(path); err != nil {
		return err
	}
	return u.upload(ctx)
}

func (o output) points(ctx context.Context, pts []geom.Point, fields ...vectorfile.Field) error {
	if o.outputFile == "" {
		return o.table(append([]vectorfile.Field{
			vectorfile.FloatField("x", pointX(pts)),
			vectorfile.FloatField("y", pointY(pts)),
		}, fields...))
	}
	var u uploader
	path, err := u.local(o.outputFile)
	if err != nil {
		return err
	}
	if err := vectorfile.WritePoints(path, pts, fields...); err != nil {
		return err
	}
	if err := o.copyPrj(path); err != nil {
		return err
	}
	return u.upload(ctx)
}

func (o output) copyPrj(path string) error {
	if o.template == "" {
		return nil
	}
	return vectorfile.CopyPrj(o.template, path)
}

// table prints the field values as tab-separated columns with a header
// row.
func (o output) table(fields []vectorfile.Field) error {
	tw := tabwriter.NewWriter(o.w, 0, 8, 1, ' ', 0)
	n := 0
	for i, f := range fields {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, strings.TrimRight(string(f.Name[:]), "\x00"))
		n = len(f.Values)
	}
	fmt.Fprintln(tw)
	for j := 0; j < n; j++ {
		for i, f := range fields {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, f.Values[j])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func pointX(pts []geom.Point) []float64 {
	o := make([]float64, len(pts))
	for i, p := range pts {
		o[i] = p.X
	}
	return o
}

func pointY(pts []geom.Point) []float64 {
	o := make([]float64, len(pts))
	for i, p := range pts {
		o[i] = p.Y
	}
	return o
}

// RowCol prints the pixel containing each coordinate pair.
func RowCol(w io.Writer, t *rivergeom.Transform, xs, ys []float64) error {
	rows, cols, err := t.CoordsToPixels(xs, ys)
	if err != nil {
		return err
	}
	return output{w: w}.table([]vectorfile.Field{
		vectorfile.FloatField("x", xs),
		vectorfile.FloatField("y", ys),
		vectorfile.IntField("row", rows),
		vectorfile.IntField("col", cols),
	})
}

// XY prints the coordinates of the top-left corner of each pixel.
func XY(w io.Writer, t *rivergeom.Transform, rows, cols []float64) error {
	xs, ys, err := t.PixelsToCoords(rows, cols)
	if err != nil {
		return err
	}
	return output{w: w}.table([]vectorfile.Field{
		vectorfile.FloatField("row", rows),
		vectorfile.FloatField("col", cols),
		vectorfile.FloatField("x", xs),
		vectorfile.FloatField("y", ys),
	})
}

// Sample prints the raster value under each coordinate pair.
func Sample(w io.Writer, r *rivergeom.Raster, xs, ys []float64) error {
	if len(xs) != len(ys) {
		return rivergeom.ErrLengthMismatch
	}
	pts := make([]geom.Point, len(xs))
	for i := range xs {
		pts[i] = geom.Point{X: xs[i], Y: ys[i]}
	}
	vals, err := r.SampleMany(pts)
	if err != nil {
		return err
	}
	return output{w: w}.table([]vectorfile.Field{
		vectorfile.FloatField("x", xs),
		vectorfile.FloatField("y", ys),
		vectorfile.FloatField("value", vals),
	})
}

// Slope calculates the average slope of each line over the given
// elevation raster and writes it to outputFile, or prints it to w if
// outputFile is empty.
func Slope(ctx context.Context, w io.Writer, ls *LineSet, dem *rivergeom.Raster, absolute, asPercent bool, outputFile string) error {
	slopes, err := rivergeom.AverageSlopes(ls.Lines, dem, absolute, asPercent)
	if err != nil {
		return err
	}
	return output{w: w, outputFile: outputFile, template: ls.Local}.lines(ctx, ls.Lines,
		vectorfile.StringField("id", ls.IDs),
		vectorfile.FloatField("slope", slopes),
	)
}

// Sinuosity calculates the sinuosity of each line and writes it to
// outputFile, or prints it to w if outputFile is empty.
func Sinuosity(ctx context.Context, w io.Writer, ls *LineSet, outputFile string) error {
	return output{w: w, outputFile: outputFile, template: ls.Local}.lines(ctx, ls.Lines,
		vectorfile.StringField("id", ls.IDs),
		vectorfile.FloatField("length", lengths(ls.Lines)),
		vectorfile.FloatField("sinuosity", rivergeom.Sinuosities(ls.Lines)),
	)
}

func lengths(lines []geom.LineString) []float64 {
	o := make([]float64, len(lines))
	for i, l := range lines {
		o[i] = rivergeom.Length(l)
	}
	return o
}

// Bearing calculates the bearing from north at each vertex of each line,
// relative to the vertex shift places earlier, and writes the vertices to
// outputFile, or prints them to w if outputFile is empty.
func Bearing(ctx context.Context, w io.Writer, ls *LineSet, shift int, outputFile string) error {
	var ids []string
	var index []int
	var pts []geom.Point
	var bearings []float64
	for i, l := range ls.Lines {
		pp := []geom.Point(l)
		b, err := rivergeom.BearingFromNorth(pp, shift)
		if err != nil {
			return err
		}
		for j := range pp {
			ids = append(ids, ls.IDs[i])
			index = append(index, j)
		}
		pts = append(pts, pp...)
		bearings = append(bearings, b...)
	}
	return output{w: w, outputFile: outputFile, template: ls.Local}.points(ctx, pts,
		vectorfile.StringField("id", ids),
		vectorfile.IntField("vertex", index),
		vectorfile.FloatField("bearing", bearings),
	)
}

// StitchJob specifies a stitching run.
type StitchJob struct {
	// Input is the shapefile or GeoJSON file holding the segments.
	Input string

	// IDField is the attribute holding segment IDs. If empty, feature
	// indices are used.
	IDField string

	// Seed is the ID of the segment to start from.
	Seed string

	// MaxAttempts bounds the number of attachment attempts. Values < 1
	// mean twice the number of segments.
	MaxAttempts int

	// OutputFile is where the stitched line is written.
	OutputFile string
}

// Run stitches the segments in j.Input into one line. Segments that could
// not be attached are logged.
func (j StitchJob) Run(ctx context.Context, w io.Writer) (*rivergeom.StitchResult, error) {
	f, err := readSegments(ctx, j.Input, j.IDField)
	if err != nil {
		return nil, err
	}
	r, err := rivergeom.Stitch(f.Segments, j.Seed, j.MaxAttempts)
	if err != nil {
		return nil, err
	}
	log := Log.WithFields(logrus.Fields{
		"input":    j.Input,
		"seed":     j.Seed,
		"attempts": r.Attempts,
		"vertices": len(r.Line),
		"line":     hash.Fingerprint(r.Line),
	})
	if len(r.Residual) > 0 {
		ids := make([]string, len(r.Residual))
		for i, s := range r.Residual {
			ids[i] = s.ID
		}
		log.WithField("residual", ids).Warn("some segments could not be attached")
	} else {
		log.Info("stitched all segments")
	}
	o := output{w: w, outputFile: j.OutputFile, template: f.Local}
	if j.OutputFile == "" {
		return r, o.points(ctx, r.Line)
	}
	return r, o.lines(ctx, []geom.LineString{r.Line}, vectorfile.StringField("seed", []string{j.Seed}))
}

// Points places points every interval along each line and writes them,
// with their distances along the line, to outputFile, or prints them to
// w if outputFile is empty.
func Points(ctx context.Context, w io.Writer, ls *LineSet, interval float64, outputFile string) error {
	var ids []string
	var dist []float64
	var pts []geom.Point
	for i, l := range ls.Lines {
		pp, err := rivergeom.PointsAlongLine(l, interval)
		if err != nil {
			return err
		}
		for k := range pp {
			ids = append(ids, ls.IDs[i])
			dist = append(dist, float64(k)*interval)
		}
		pts = append(pts, pp...)
	}
	return output{w: w, outputFile: outputFile, template: ls.Local}.points(ctx, pts,
		vectorfile.StringField("id", ids),
		vectorfile.FloatField("dist", dist),
	)
}

// TransectJob specifies a transect run.
type TransectJob struct {
	// Center is the shapefile or GeoJSON file holding the center lines.
	Center string

	// Bank is the shapefile or GeoJSON file holding the bank lines or
	// polygons.
	Bank string

	rivergeom.TransectConfig

	// OutputFile is where the transects are written.
	OutputFile string
}

// Run builds transects across each center line in j.Center.
func (j TransectJob) Run(ctx context.Context, w io.Writer) ([]geom.LineString, error) {
	ls, err := ReadLineSet(ctx, j.Center, "")
	if err != nil {
		return nil, err
	}
	bank, err := readBoundary(ctx, j.Bank)
	if err != nil {
		return nil, err
	}
	var ids []string
	var index []int
	var transects []geom.LineString
	for i, l := range ls.Lines {
		t, err := rivergeom.BuildTransects(l, bank, j.TransectConfig)
		if err != nil {
			return nil, fmt.Errorf("rivergeomutil: center line %s: %w", ls.IDs[i], err)
		}
		for k := range t {
			ids = append(ids, ls.IDs[i])
			index = append(index, k)
		}
		transects = append(transects, t...)
	}
	Log.WithFields(logrus.Fields{
		"center":    j.Center,
		"bank":      j.Bank,
		"transects": len(transects),
	}).Info("built transects")
	o := output{w: w, outputFile: j.OutputFile, template: ls.Local}
	if j.OutputFile == "" {
		return transects, o.table([]vectorfile.Field{
			vectorfile.StringField("id", ids),
			vectorfile.IntField("k", index),
			vectorfile.StringField("transect", wkt(transects)),
		})
	}
	return transects, o.lines(ctx, transects,
		vectorfile.StringField("id", ids),
		vectorfile.IntField("k", index),
	)
}

func wkt(lines []geom.LineString) []string {
	o := make([]string, len(lines))
	for i, l := range lines {
		var b strings.Builder
		b.WriteString("LINESTRING (")
		for j, p := range l {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g %g", p.X, p.Y)
		}
		b.WriteString(")")
		o[i] = b.String()
	}
	return o
}
