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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Batch holds a set of independent jobs, as read from a TOML file with
// [[Stitch]] and [[Transect]] tables.
type Batch struct {
	Stitch   []StitchJob
	Transect []TransectJob
}

// ReadBatch reads a batch job file. Environment variables in file paths
// are expanded.
func ReadBatch(r io.Reader) (*Batch, error) {
	b := new(Batch)
	if _, err := toml.DecodeReader(r, b); err != nil {
		return nil, fmt.Errorf("rivergeomutil: reading batch file: %v", err)
	}
	for i := range b.Stitch {
		j := &b.Stitch[i]
		j.Input = os.ExpandEnv(j.Input)
		j.OutputFile = os.ExpandEnv(j.OutputFile)
	}
	for i := range b.Transect {
		j := &b.Transect[i]
		j.Center = os.ExpandEnv(j.Center)
		j.Bank = os.ExpandEnv(j.Bank)
		j.OutputFile = os.ExpandEnv(j.OutputFile)
	}
	return b, nil
}

// Run runs the jobs in b concurrently, with at most runtime.GOMAXPROCS
// jobs at a time. Input files shared by several jobs are read once.
// Output of jobs without an OutputFile is written to w in job order. If
// any jobs fail, the error of the first failing job in order is returned.
func (b *Batch) Run(ctx context.Context, w io.Writer) error {
	nprocs := runtime.GOMAXPROCS(-1)
	ctx = withInputCache(ctx, nprocs, 2*(len(b.Stitch)+len(b.Transect)))
	type job struct {
		name string
		run  func(io.Writer) error
	}
	var jobs []job
	for i, j := range b.Stitch {
		j := j
		jobs = append(jobs, job{
			name: fmt.Sprintf("Stitch[%d]", i),
			run: func(w io.Writer) error {
				_, err := j.Run(ctx, w)
				return err
			},
		})
	}
	for i, j := range b.Transect {
		j := j
		jobs = append(jobs, job{
			name: fmt.Sprintf("Transect[%d]", i),
			run: func(w io.Writer) error {
				_, err := j.Run(ctx, w)
				return err
			},
		})
	}

	bufs := make([]bytes.Buffer, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, nprocs)
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, j := range jobs {
		go func(i int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			Log.WithField("job", j.name).Debug("starting batch job")
			if err := j.run(&bufs[i]); err != nil {
				errs[i] = fmt.Errorf("rivergeomutil: batch job %s: %w", j.name, err)
				Log.WithFields(logrus.Fields{"job": j.name}).WithError(err).Error("batch job failed")
			}
		}(i, j)
	}
	wg.Wait()

	for i := range jobs {
		if errs[i] != nil {
			return errs[i]
		}
		if _, err := bufs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
