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

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/rivergeom"
)

type inputCacheKey struct{}

type segmentsRequest struct{ path, idField string }

type boundaryRequest struct{ path string }

// withInputCache returns a context carrying a cache of decoded input
// files, so that jobs run with it that share an input read and decode it
// only once. Cached results are shared and must not be modified.
func withInputCache(ctx context.Context, workers, entries int) context.Context {
	c := requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		switch r := request.(type) {
		case segmentsRequest:
			return loadSegments(ctx, r.path, r.idField)
		case boundaryRequest:
			return loadBoundary(ctx, r.path)
		default:
			panic(fmt.Errorf("rivergeomutil: invalid input request type %T", request))
		}
	}, workers, requestcache.Deduplicate(), requestcache.Memory(entries))
	return context.WithValue(ctx, inputCacheKey{}, c)
}

func inputCache(ctx context.Context) *requestcache.Cache {
	c, _ := ctx.Value(inputCacheKey{}).(*requestcache.Cache)
	return c
}

func readSegments(ctx context.Context, path, idField string) (*segmentFile, error) {
	c := inputCache(ctx)
	if c == nil {
		return loadSegments(ctx, path, idField)
	}
	req := c.NewRequest(ctx, segmentsRequest{path: path, idField: idField}, "segments:"+idField+":"+path)
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*segmentFile), nil
}

func readBoundary(ctx context.Context, path string) (rivergeom.Boundary, error) {
	c := inputCache(ctx)
	if c == nil {
		return loadBoundary(ctx, path)
	}
	result, err := c.NewRequest(ctx, boundaryRequest{path: path}, "boundary:"+path).Result()
	if err != nil {
		return nil, err
	}
	return result.(rivergeom.Boundary), nil
}
