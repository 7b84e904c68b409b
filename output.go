/*
Copyright © 2026 the streamtrack authors.
This file is part of streamtrack.

streamtrack is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

streamtrack is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with streamtrack.  If not, see <http://www.gnu.org/licenses/>.
*/

package streamtrack

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParticleFileName returns the name of the output file for the particle
// with the given release index.
func ParticleFileName(index int) string {
	return fmt.Sprintf("particle_%06d", index)
}

// recordWriter writes the concentration time series of one particle.
// Records are buffered in memory and reach the underlying file when the
// buffer fills or the writer is closed, so disk I/O does not hold up the
// iteration that produced them.
type recordWriter struct {
	name string
	w    *bufio.Writer
	c    io.Closer
}

// createRecordWriter creates the output file for particle index in dir and
// writes its header.
func createRecordWriter(dir string, index int, resources []string) (*recordWriter, error) {
	name := filepath.Join(dir, ParticleFileName(index))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("streamtrack: creating particle output: %w", err)
	}
	rw, err := newRecordWriter(name, f, resources)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rw, nil
}

// newRecordWriter writes the header line to w and returns a writer for
// subsequent records.
func newRecordWriter(name string, w io.WriteCloser, resources []string) (*recordWriter, error) {
	rw := &recordWriter{name: name, w: bufio.NewWriter(w), c: w}
	header := "iteration time " + strings.Join(resources, " ") + "\n"
	if _, err := rw.w.WriteString(header); err != nil {
		return nil, fmt.Errorf("streamtrack: writing header to %s: %w", name, err)
	}
	return rw, nil
}

// writeRecord writes one line holding the iteration, the time, and one
// value per resource.
func (rw *recordWriter) writeRecord(iteration int, time float64, values []float64) error {
	if _, err := fmt.Fprintf(rw.w, "%d %f", iteration, time); err != nil {
		return fmt.Errorf("streamtrack: writing to %s: %w", rw.name, err)
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(rw.w, " %f", v); err != nil {
			return fmt.Errorf("streamtrack: writing to %s: %w", rw.name, err)
		}
	}
	if err := rw.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("streamtrack: writing to %s: %w", rw.name, err)
	}
	return nil
}

// close flushes any buffered records and closes the underlying file.
func (rw *recordWriter) close() error {
	ferr := rw.w.Flush()
	cerr := rw.c.Close()
	if ferr != nil {
		return fmt.Errorf("streamtrack: flushing %s: %w", rw.name, ferr)
	}
	if cerr != nil {
		return fmt.Errorf("streamtrack: closing %s: %w", rw.name, cerr)
	}
	return nil
}
