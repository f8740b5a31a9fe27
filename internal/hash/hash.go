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
along with rivergeom.  If not, see <http://www.gnu.org/licenses/>.*/

// Package hash computes fingerprints of results so that the output of
// repeated runs can be compared and logged.
package hash

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Fingerprint returns a key that identifies the contents of object.
// Objects gob cannot encode, such as those holding interface values of
// unregistered types, are dumped with spew instead.
func Fingerprint(object interface{}) string {
	h := fnv.New128a()
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(object); err == nil {
		h.Write(b.Bytes())
	} else {
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Same reports whether a and b have the same fingerprint.
func Same(a, b interface{}) bool {
	return Fingerprint(a) == Fingerprint(b)
}
