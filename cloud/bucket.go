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

// Package cloud stores and retrieves files in local directories and cloud
// blob storage buckets.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob returns whether the given location represents a blob
// (i.e., if it starts with 'gs://', 's3://', 'file://', or 'mem://').
func IsBlob(path string) bool {
	for _, p := range []string{"gs://", "s3://", "file://", "mem://"} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// For cloud providers, any path after the bucket name is ignored; use
// SplitLocation to get it.
// The currently accepted storage providers are "file" for the local
// filesystem, where name is a directory that will be created if necessary,
// "gs" for Google Cloud Storage, "s3" for AWS S3, and "mem" for a new
// in-memory bucket (e.g., for testing).
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		dir := filepath.FromSlash(u.Host + u.Path)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("cloud.OpenBucket: %v", err)
		}
		return fileblob.OpenBucket(dir, nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	case "mem":
		return memblob.OpenBucket(nil), nil
	default:
		return nil, fmt.Errorf("cloud.OpenBucket: invalid provider %s", u.Scheme)
	}
}

// SplitLocation splits a location into the name of the bucket that holds
// it and the key or key prefix within the bucket. Locations without a
// provider are local paths. For local paths and the "file" provider, the
// bucket is the directory itself when dir is true and the parent directory
// otherwise.
func SplitLocation(loc string, dir bool) (bucketName, key string, err error) {
	if !IsBlob(loc) {
		abs, err := filepath.Abs(loc)
		if err != nil {
			return "", "", fmt.Errorf("cloud: %v", err)
		}
		loc = "file://" + filepath.ToSlash(abs)
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", "", fmt.Errorf("cloud: parsing location %s: %v", loc, err)
	}
	if u.Scheme == "file" {
		p := u.Host + u.Path
		if dir {
			return "file://" + p, "", nil
		}
		i := strings.LastIndex(p, "/")
		return "file://" + p[:i+1], p[i+1:], nil
	}
	return u.Scheme + "://" + u.Host, strings.Trim(u.Path, "/"), nil
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
