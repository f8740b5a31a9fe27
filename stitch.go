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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Segment is a member of a collection of shapes to be stitched into a
// single line.
type Segment struct {
	ID string
	Shape
}

// StitchResult holds the outcome of Stitch.
type StitchResult struct {
	// Line is the concatenated coordinate sequence.
	Line geom.LineString

	// Residual holds the segments that were not attached, sorted by ID.
	Residual []Segment

	// Attempts is the number of attachment attempts that were made.
	Attempts int
}

// segmentIndex holds the segments of a collection in a spatial index.
type segmentIndex struct {
	tree *rtree.Rtree
	byID map[string]*Segment
}

func newSegmentIndex(segments []Segment) (*segmentIndex, error) {
	idx := &segmentIndex{
		tree: rtree.NewTree(25, 50),
		byID: make(map[string]*Segment, len(segments)),
	}
	for i := range segments {
		s := &segments[i]
		if _, ok := idx.byID[s.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, s.ID)
		}
		idx.byID[s.ID] = s
		idx.tree.Insert(s)
	}
	return idx, nil
}

// touching returns the IDs, sorted, of the segments that touch s and
// satisfy keep.
func (idx *segmentIndex) touching(s Shape, keep func(*Segment) bool) []string {
	var ids []string
	for _, g := range idx.tree.SearchIntersect(s.Bounds()) {
		c := g.(*Segment)
		if keep(c) && c.Shape.Touches(s) {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// isolated returns the IDs, sorted, of segments that touch no other
// segment.
func (idx *segmentIndex) isolated(segments []Segment) []string {
	var ids []string
	for i := range segments {
		s := &segments[i]
		others := idx.touching(s.Shape, func(c *Segment) bool { return c != s })
		if len(others) == 0 {
			ids = append(ids, s.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Stitch joins segments into a single line, starting from the segment
// with ID seedID. At each attempt the remaining segments that touch the
// line built so far are found. When there is exactly one, its vertices
// are appended to the line as they are, so the shared vertex appears
// twice. When there are none, stitching stops. Segments that are never
// attached, because of a gap or because maxAttempts attempts have been
// made, are returned as the residual. A value of maxAttempts ≤ 0 allows
// twice as many attempts as there are segments.
//
// Stitch fails with a *DisconnectedError if a segment touches no other
// segment in the collection, and with an *AmbiguousTouchError if more
// than one segment could extend the line.
func Stitch(segments []Segment, seedID string, maxAttempts int) (*StitchResult, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyCollection
	}
	idx, err := newSegmentIndex(segments)
	if err != nil {
		return nil, err
	}
	seed, ok := idx.byID[seedID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSeedNotFound, seedID)
	}
	if len(segments) > 1 {
		if ids := idx.isolated(segments); len(ids) > 0 {
			return nil, &DisconnectedError{IDs: ids}
		}
	}
	if maxAttempts <= 0 {
		maxAttempts = 2 * len(segments)
	}

	remaining := make(map[string]bool, len(segments))
	for _, s := range segments {
		remaining[s.ID] = true
	}
	delete(remaining, seed.ID)

	r := &StitchResult{
		Line: append(geom.LineString{}, seed.Vertices()...),
	}
	stillRemaining := func(c *Segment) bool { return remaining[c.ID] }
	for len(remaining) > 0 && r.Attempts < maxAttempts {
		r.Attempts++
		ids := idx.touching(Line{LineString: r.Line}, stillRemaining)
		if len(ids) == 0 {
			break
		}
		if len(ids) > 1 {
			return nil, &AmbiguousTouchError{Count: len(ids), IDs: ids}
		}
		next := idx.byID[ids[0]]
		r.Line = append(r.Line, next.Vertices()...)
		delete(remaining, next.ID)
	}

	for _, s := range segments {
		if remaining[s.ID] {
			r.Residual = append(r.Residual, s)
		}
	}
	sort.SliceStable(r.Residual, func(i, j int) bool {
		return r.Residual[i].ID < r.Residual[j].ID
	})
	return r, nil
}
