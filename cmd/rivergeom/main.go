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

// Command rivergeom is a command-line interface for the rivergeom
// river channel geometry tools.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/rivergeom/rivergeomutil"
)

func main() {
	if err := rivergeomutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
