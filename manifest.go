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
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// ReadVelocityManifest reads one velocity per line from r, so the index of
// each velocity is its 0-based line number. Any line, blank or not, that is
// not a finite number is an error wrapping ErrManifest, and no velocities
// are returned. A newline at the end of the last line is optional.
func ReadVelocityManifest(r io.Reader) ([]float64, error) {
	var velocities []float64
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return nil, fmt.Errorf("%w: line %d is blank", ErrManifest, line)
		}
		v, err := cast.ToFloat64E(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrManifest, line, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: line %d: velocity %q is not finite", ErrManifest, line, text)
		}
		velocities = append(velocities, v)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	return velocities, nil
}

// ReadVelocityManifestFile reads the velocity manifest at path.
func ReadVelocityManifestFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	defer f.Close()
	v, err := ReadVelocityManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
