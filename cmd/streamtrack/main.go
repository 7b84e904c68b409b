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

// Command streamtrack is a command-line interface for the streamtrack
// particle tracker.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/streamtrack/streamtrackutil"
)

func main() {
	if err := streamtrackutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
