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

// Package wxasset converts gridded global forecast fields into map assets:
// a geo-registered raster of a scalar field covering the whole globe, and
// a regularly thinned list of vector samples for particle animation.
//
// Longitudes are normalized to [-180, 180) once per grid with
// NormalizeLongitude, and the resulting Permutation is applied to every
// field on that grid so that values stay aligned with their coordinates.
package wxasset

// Version gives the version number.
const Version = "0.1.0"
