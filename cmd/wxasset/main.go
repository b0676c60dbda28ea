/*
Copyright © 2026 the wxasset authors.
This file is part of wxasset.

wxasset is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

wxasset is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with wxasset.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command wxasset generates raster and wind vector assets from global
// forecast datasets.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/wxasset/wxassetutil"
)

func main() {
	if err := wxassetutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
