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

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// PointFormat is an encoding for sampled vector points.
type PointFormat string

const (
	// PointsJSON is a JSON array of {"lat","lon","u","v"} objects.
	PointsJSON PointFormat = "json"

	// PointsMsgpackZstd is a msgpack array of the same objects compressed
	// with zstd.
	PointsMsgpackZstd PointFormat = "msgpack.zst"
)

// ParsePointFormat returns the format with the given name.
func ParsePointFormat(s string) (PointFormat, error) {
	switch f := PointFormat(s); f {
	case PointsJSON, PointsMsgpackZstd:
		return f, nil
	case "":
		return PointsJSON, nil
	}
	return "", fmt.Errorf("wxasset: invalid point format %q; valid formats are %q and %q", s, PointsJSON, PointsMsgpackZstd)
}

// Ext returns the file name extension for f, including the leading dot.
func (f PointFormat) Ext() string { return "." + string(f) }

// WritePoints encodes pts to w in format f.
func WritePoints(w io.Writer, pts []Point, f PointFormat) error {
	if pts == nil {
		pts = []Point{}
	}
	switch f {
	case PointsJSON:
		if err := json.NewEncoder(w).Encode(pts); err != nil {
			return fmt.Errorf("wxasset: encoding points: %v", err)
		}
		return nil
	case PointsMsgpackZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return err
		}
		if err := msgpack.NewEncoder(zw).Encode(pts); err != nil {
			zw.Close()
			return fmt.Errorf("wxasset: encoding points: %v", err)
		}
		return zw.Close()
	}
	return fmt.Errorf("wxasset: invalid point format %q", f)
}

// ReadPoints decodes points written by WritePoints.
func ReadPoints(r io.Reader, f PointFormat) ([]Point, error) {
	var pts []Point
	switch f {
	case PointsJSON:
		if err := json.NewDecoder(r).Decode(&pts); err != nil {
			return nil, fmt.Errorf("wxasset: decoding points: %v", err)
		}
	case PointsMsgpackZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if err := msgpack.NewDecoder(zr).Decode(&pts); err != nil {
			return nil, fmt.Errorf("wxasset: decoding points: %v", err)
		}
	default:
		return nil, fmt.Errorf("wxasset: invalid point format %q", f)
	}
	return pts, nil
}
