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

package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wxasset/cloud"
	"gocloud.dev/gcerrors"
)

// ExpandPath replaces the wildcards [DATE] (as YYYYMMDD) and [CYCLE] (as a
// two-digit hour) in template and expands any environment variables.
func ExpandPath(template string, date time.Time, cycle int) string {
	s := strings.Replace(template, "[DATE]", date.Format("20060102"), -1)
	s = strings.Replace(s, "[CYCLE]", fmt.Sprintf("%02d", cycle), -1)
	return os.ExpandEnv(s)
}

// Fetcher makes dataset files available on the local file system.
type Fetcher struct {
	// Client is used for http and https downloads. If nil,
	// http.DefaultClient is used.
	Client *http.Client

	// MaxElapsed is the longest time to keep retrying a failed download.
	// Zero means to use the default of 15 minutes.
	MaxElapsed time.Duration

	// Dir is the directory downloads are saved in. If empty, a new
	// temporary directory is created for each download.
	Dir string

	Log logrus.FieldLogger
}

// Fetch returns the path to a local copy of the file at loc, which may be
// a local path, an http or https URL, or a blob URL. Remote files are
// downloaded, retrying with exponential backoff. The returned cleanup
// function removes any downloaded copy.
func (f *Fetcher) Fetch(ctx context.Context, loc string) (local string, cleanup func(), err error) {
	nop := func() {}
	if _, err := os.Stat(loc); err == nil {
		return loc, nop, nil
	}
	isHTTP := strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
	if !isHTTP && !cloud.IsBlob(loc) {
		return "", nop, fmt.Errorf("dataset: %s does not exist", loc)
	}

	dir := f.Dir
	if dir == "" {
		if dir, err = os.MkdirTemp("", "wxasset"); err != nil {
			return "", nop, fmt.Errorf("dataset: creating temporary download directory: %v", err)
		}
		cleanup = func() { os.RemoveAll(dir) }
	} else {
		cleanup = nop
	}
	local = filepath.Join(dir, path.Base(strings.SplitN(loc, "?", 2)[0]))

	download := func() error { return f.downloadBlob(ctx, loc, local) }
	if isHTTP {
		download = func() error { return f.downloadHTTP(ctx, loc, local) }
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = f.MaxElapsed
	if b.MaxElapsedTime == 0 {
		b.MaxElapsedTime = 15 * time.Minute
	}
	log := f.log()
	err = backoff.RetryNotify(download, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		log.WithFields(logrus.Fields{"location": loc}).Warnf("%v: retrying in %v", err, d)
	})
	if err != nil {
		cleanup()
		return "", nop, fmt.Errorf("dataset: downloading %s: %v", loc, err)
	}
	log.WithFields(logrus.Fields{"location": loc, "file": local}).Debug("downloaded dataset")
	return local, cleanup, nil
}

func (f *Fetcher) log() logrus.FieldLogger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}

func (f *Fetcher) downloadHTTP(ctx context.Context, url, local string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	c := f.Client
	if c == nil {
		c = http.DefaultClient
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("server returned %s", resp.Status)
	default:
		// Not found and other client errors will not resolve by retrying.
		return backoff.Permanent(fmt.Errorf("server returned %s", resp.Status))
	}
	return writeFile(local, resp.Body)
}

func (f *Fetcher) downloadBlob(ctx context.Context, loc, local string) error {
	w, err := os.Create(local)
	if err != nil {
		return backoff.Permanent(err)
	}
	if err := cloud.Download(ctx, loc, w); err != nil {
		w.Close()
		if gcerrors.Code(err) == gcerrors.NotFound {
			return backoff.Permanent(err)
		}
		return err
	}
	return w.Close()
}

func writeFile(local string, r io.Reader) error {
	w, err := os.Create(local)
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
