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

// Package rivergeom provides planar geometry utilities for river
// analysis: mapping between raster pixels and coordinates, sampling
// elevation rasters, computing line slope, sinuosity and bearing,
// stitching line segments into a single line, and building transects
// across a channel between its banks.
//
// All inputs are assumed to share one planar coordinate system.
package rivergeom

// Version gives the version of rivergeom.
const Version = "0.1.0"
