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

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"gocloud.dev/blob"
)

// readBlob reads the given blob from the given bucket.
func readBlob(ctx context.Context, bucket *blob.Bucket, key string, w io.Writer) error {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("reading blob key %s: %w", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("reading blob key %s: %v", key, err)
	}
	return nil
}

// writeBlob writes the given data to the given bucket.
func writeBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	b := bytes.NewBuffer(data)
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType(key)})
	if err != nil {
		return fmt.Errorf("wxasset/cloud: creating writer for blob %s: %v", key, err)
	}
	_, err = io.Copy(w, b)
	if err != nil {
		w.Close()
		return fmt.Errorf("wxasset/cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("wxasset/cloud: writing blob %s: %v", key, err)
	}
	return nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Download copies the file at location loc, which may be a blob URL or
// a local path, to w.
func Download(ctx context.Context, loc string, w io.Writer) error {
	bucketName, key, err := SplitLocation(loc, false)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	defer bucket.Close()
	return readBlob(ctx, bucket, key, w)
}

// Sink writes named files under a common prefix in a bucket.
// It is safe for concurrent use.
type Sink struct {
	Bucket *blob.Bucket
	Prefix string
}

// OpenSink opens the output location dest, which may be a local
// directory or a blob URL such as gs://bucket/prefix.
func OpenSink(ctx context.Context, dest string) (*Sink, error) {
	bucketName, prefix, err := SplitLocation(dest, true)
	if err != nil {
		return nil, err
	}
	b, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	return &Sink{Bucket: b, Prefix: prefix}, nil
}

// Key returns the bucket key for the file called name.
func (s *Sink) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

// Write stores data as the file called name.
func (s *Sink) Write(ctx context.Context, name string, data []byte) error {
	return writeBlob(ctx, s.Bucket, s.Key(name), data)
}

// Read copies the file called name to w.
func (s *Sink) Read(ctx context.Context, name string, w io.Writer) error {
	return readBlob(ctx, s.Bucket, s.Key(name), w)
}

// Close closes the underlying bucket.
func (s *Sink) Close() error { return s.Bucket.Close() }
