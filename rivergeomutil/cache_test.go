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
	"os"
	"path/filepath"
	"testing"
)

func TestInputCache(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)
	ctx := withInputCache(context.Background(), 2, 10)
	path := filepath.Join(dir, "segs.shp")

	a, err := readSegments(ctx, path, "id")
	if err != nil {
		t.Fatal(err)
	}
	b, err := readSegments(ctx, path, "id")
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Segments) != 3 || a != b || a.Local != path {
		t.Errorf("the second read should come from the cache")
	}
	// The processor, the last entry, only ran once.
	if r := inputCache(ctx).Requests(); r[len(r)-1] != 1 {
		t.Errorf("want 1 processed request but have %v", r)
	}

	if _, err := readBoundary(ctx, filepath.Join(dir, "bank.geojson")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := readSegments(ctx, filepath.Join(dir, "missing.shp"), "id"); err == nil {
			t.Error("want an error for a missing file")
		}
	}
	if inputCache(context.Background()) != nil {
		t.Error("a plain context should not carry a cache")
	}
}
