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

package wxasset

import "errors"

// Validation failures returned by the grid pipeline. Callers should test for
// them with errors.Is; returned errors wrap one of these with context.
var (
	// ErrInvalidGrid indicates malformed or too-short coordinate or field input.
	ErrInvalidGrid = errors.New("invalid grid")

	// ErrDegenerateGrid indicates a coordinate axis with zero or non-monotonic
	// spacing, from which cell edges cannot be derived.
	ErrDegenerateGrid = errors.New("degenerate grid")

	// ErrRender indicates a mismatch between a field and the grid it is
	// rendered on.
	ErrRender = errors.New("render failure")

	// ErrInvalidStride indicates a non-positive sampling stride.
	ErrInvalidStride = errors.New("invalid stride")
)
