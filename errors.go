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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. The typed errors below unwrap to one of these so that
// callers can classify failures with errors.Is.
var (
	// ErrSingular is returned when an affine map cannot be inverted.
	ErrSingular = errors.New("rivergeom: affine transform is not invertible")

	// ErrOutOfBounds is returned when a coordinate resolves to a pixel
	// outside of a raster.
	ErrOutOfBounds = errors.New("rivergeom: location is outside of the raster")

	// ErrLengthMismatch is returned when paired coordinate slices differ
	// in length.
	ErrLengthMismatch = errors.New("rivergeom: coordinate slices have different lengths")

	// ErrEmptyCollection is returned when stitching is asked to work on
	// no segments at all.
	ErrEmptyCollection = errors.New("rivergeom: segment collection is empty")

	// ErrDuplicateID is returned when two segments share an ID.
	ErrDuplicateID = errors.New("rivergeom: duplicate segment ID")

	// ErrSeedNotFound is returned when the seed ID is not in the collection.
	ErrSeedNotFound = errors.New("rivergeom: seed segment not found")

	// ErrAmbiguousTouch is returned when more than one segment could
	// extend the line being stitched.
	ErrAmbiguousTouch = errors.New("rivergeom: ambiguous segment topology")

	// ErrDisconnected is returned when a segment touches no other segment.
	ErrDisconnected = errors.New("rivergeom: disconnected segment")

	// ErrInvalidShift is returned for a bearing shift smaller than one.
	ErrInvalidShift = errors.New("rivergeom: bearing shift must be at least 1")

	// ErrInvalidInterval is returned for a non-positive sampling interval.
	ErrInvalidInterval = errors.New("rivergeom: sampling interval must be > 0")

	// ErrInvalidConfig is returned for an unusable transect configuration.
	ErrInvalidConfig = errors.New("rivergeom: invalid transect configuration")
)

// OutOfBoundsError reports a sample location that falls outside of a
// raster.
type OutOfBoundsError struct {
	X, Y       float64
	Row, Col   int
	Rows, Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("rivergeom: location (%g, %g) resolves to row %d, column %d, "+
		"which is outside of the %d×%d raster", e.X, e.Y, e.Row, e.Col, e.Rows, e.Cols)
}

// Unwrap returns ErrOutOfBounds.
func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// AmbiguousTouchError reports that several segments touch the line being
// stitched, so the direction of extension cannot be determined.
type AmbiguousTouchError struct {
	Count int
	IDs   []string
}

func (e *AmbiguousTouchError) Error() string {
	return fmt.Sprintf("rivergeom: found %d touching segments (%s); expected exactly 1",
		e.Count, strings.Join(e.IDs, ", "))
}

// Unwrap returns ErrAmbiguousTouch.
func (e *AmbiguousTouchError) Unwrap() error { return ErrAmbiguousTouch }

// DisconnectedError lists segments that touch no other segment in
// their collection.
type DisconnectedError struct {
	IDs []string
}

func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("rivergeom: segments [%s] do not touch any other segment",
		strings.Join(e.IDs, ", "))
}

// Unwrap returns ErrDisconnected.
func (e *DisconnectedError) Unwrap() error { return ErrDisconnected }
