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

package rivergeomutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing local file.
// If not, and the path is a URL or a blob storage location, it downloads
// the file and its sidecar files to a temporary directory and returns the
// path to the downloaded file. Other paths are returned unchanged.
func maybeDownload(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	var get func(ctx context.Context, name string) (io.ReadCloser, error)
	var base string
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		get, base = getHTTP, path
	case IsBlob(path):
		u, err := url.Parse(path)
		if err != nil {
			return path, fmt.Errorf("rivergeomutil: parsing %s: %v", path, err)
		}
		bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
		if err != nil {
			return path, err
		}
		get = func(ctx context.Context, name string) (io.ReadCloser, error) {
			return bucket.NewReader(ctx, name)
		}
		base = strings.TrimPrefix(u.Path, "/")
	default:
		return path, nil
	}

	dir, err := ioutil.TempDir("", "rivergeom")
	if err != nil {
		return path, fmt.Errorf("rivergeomutil: creating temporary download directory: %v", err)
	}
	files, optional := sidecars(base)
	for i, f := range files {
		r, err := get(ctx, f)
		if err != nil {
			if i >= optional {
				continue
			}
			return path, fmt.Errorf("rivergeomutil: downloading %s: %v", f, err)
		}
		err = saveAs(filepath.Join(dir, filepath.Base(f)), r)
		r.Close()
		if err != nil {
			return path, err
		}
	}
	local := filepath.Join(dir, filepath.Base(files[0]))
	Log.WithFields(logrus.Fields{"from": path, "to": local}).Debug("downloaded input")
	return local, nil
}

func saveAs(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rivergeomutil: creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("rivergeomutil: downloading %s: %v", path, err)
	}
	return w.Close()
}

// httpRetries is the number of times a failed HTTP request is retried.
var httpRetries uint64 = 4

// getHTTP fetches name, retrying with exponential backoff when the
// request fails or the server reports a 5xx status. A 4xx status is
// returned without retrying.
func getHTTP(ctx context.Context, name string) (io.ReadCloser, error) {
	var body io.ReadCloser
	var clientErr error
	err := backoff.RetryNotify(
		func() error {
			resp, err := http.Get(name)
			if err != nil {
				return err
			}
			if resp.StatusCode == http.StatusOK {
				body = resp.Body
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode < 500 {
				clientErr = fmt.Errorf("%s", resp.Status)
				return nil
			}
			return fmt.Errorf("%s", resp.Status)
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), httpRetries), ctx),
		func(err error, d time.Duration) {
			Log.WithFields(logrus.Fields{"url": name, "wait": d}).WithError(err).Warn("retrying download")
		},
	)
	if err != nil {
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return body, nil
}

// sidecars returns the given file followed by the files that accompany
// it. The files from index optional on may be missing.
func sidecars(filename string) (files []string, optional int) {
	files = []string{filename}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	var required, extra []string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".shp":
		required = []string{".dbf", ".shx"}
		extra = []string{".prj"}
	case ".asc":
		extra = []string{".prj", ".wld", ".asw", ".tfw"}
	}
	for _, ext := range required {
		files = append(files, base+ext)
	}
	optional = len(files)
	for _, ext := range extra {
		files = append(files, base+ext)
	}
	return files, optional
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local
// filesystem, "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("rivergeomutil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("rivergeomutil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// uploader stages output files that are destined for blob storage in a
// temporary directory and copies them to the bucket when upload is
// called.
type uploader struct {
	// files holds pairs of a local file path and the blob storage path
	// it should be uploaded to.
	files [][2]string
	dir   string
}

// local returns the path that an output destined for path should be
// written to. Local paths are returned unchanged.
func (u *uploader) local(path string) (string, error) {
	if !IsBlob(path) {
		return path, nil
	}
	if u.dir == "" {
		var err error
		if u.dir, err = ioutil.TempDir("", "rivergeom"); err != nil {
			return "", fmt.Errorf("rivergeomutil: creating temporary output directory: %v", err)
		}
	}
	files, _ := sidecars(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{filepath.Join(u.dir, filepath.Base(f)), f})
	}
	return filepath.Join(u.dir, filepath.Base(files[0])), nil
}

// upload copies the staged files to blob storage. Staged sidecar files
// that were never written are skipped.
func (u *uploader) upload(ctx context.Context) error {
	for _, files := range u.files {
		r, err := os.Open(files[0])
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return fmt.Errorf("rivergeomutil: opening file '%s' for upload: %v", files[0], err)
		}
		err = uploadFile(ctx, r, files[1])
		r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, r io.Reader, dst string) error {
	u, err := url.Parse(dst)
	if err != nil {
		return fmt.Errorf("rivergeomutil: parsing url '%s' for upload: %v", dst, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return fmt.Errorf("rivergeomutil: opening bucket to upload file '%s': %v", dst, err)
	}
	w, err := bucket.NewWriter(ctx, strings.TrimPrefix(u.Path, "/"), &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("rivergeomutil: opening writer to upload file '%s': %v", dst, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("rivergeomutil: uploading '%s': %v", dst, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("rivergeomutil: uploading '%s': %v", dst, err)
	}
	return nil
}
