/*
Copyright © 2025 the Seamap authors.
This file is part of Seamap.

Seamap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Seamap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Seamap.  If not, see <http://www.gnu.org/licenses/>.
*/

package seamap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob" // gs:// output locations
	_ "gocloud.dev/blob/memblob" // mem:// output locations
	_ "gocloud.dev/blob/s3blob"  // s3:// output locations
)

// RasterWriter receives finished rasters and metadata records.
type RasterWriter interface {
	// Exists reports whether an object is already stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// WriteRaster encodes r and stores it under key.
	WriteRaster(ctx context.Context, key string, r *Raster) error

	// WriteMetadata stores m under key.
	WriteMetadata(ctx context.Context, key string, m *Metadata) error
}

// Store is a RasterWriter that encodes rasters as PNG images in a
// blob bucket. Failed writes are retried with exponential backoff.
type Store struct {
	Bucket *blob.Bucket

	// MaxRetries limits the retries of a failed write.
	MaxRetries uint64

	Log logrus.FieldLogger
}

// OpenStore opens the output location, which is either a bucket URL
// such as "s3://name", "gs://name", "mem://" or "file:///path", or a
// local directory, which is created if needed.
func OpenStore(ctx context.Context, location string) (*Store, error) {
	var b *blob.Bucket
	var err error
	if strings.Contains(location, "://") {
		b, err = blob.OpenBucket(ctx, location)
	} else {
		if err = os.MkdirAll(location, 0755); err != nil {
			return nil, fmt.Errorf("seamap: creating output directory: %w", err)
		}
		b, err = fileblob.OpenBucket(location, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("seamap: opening output location '%s': %w", location, err)
	}
	return &Store{Bucket: b, MaxRetries: 5, Log: logrus.StandardLogger()}, nil
}

// Exists implements RasterWriter.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.Bucket.Exists(ctx, key)
}

// WriteRaster implements RasterWriter.
func (s *Store) WriteRaster(ctx context.Context, key string, r *Raster) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return fmt.Errorf("seamap: encoding %s: %w", key, err)
	}
	return s.write(ctx, key, "image/png", buf.Bytes())
}

// WriteMetadata implements RasterWriter.
func (s *Store) WriteMetadata(ctx context.Context, key string, m *Metadata) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("seamap: encoding %s: %w", key, err)
	}
	return s.write(ctx, key, "application/json", b)
}

func (s *Store) write(ctx context.Context, key, contentType string, data []byte) error {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return backoff.RetryNotify(
		func() error {
			w, err := s.Bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
			if err != nil {
				return err
			}
			if _, err = w.Write(data); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.MaxRetries), ctx),
		func(err error, d time.Duration) {
			log.WithField("key", key).WithError(err).Warnf("write failed: retrying in %v", d)
		},
	)
}

// Clean deletes the PNG images stored under prefix and returns the
// number deleted.
func (s *Store) Clean(ctx context.Context, prefix string) (int, error) {
	it := s.Bucket.List(&blob.ListOptions{Prefix: prefix})
	n := 0
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("seamap: listing %s: %w", prefix, err)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, ".png") {
			continue
		}
		if err := s.Bucket.Delete(ctx, obj.Key); err != nil {
			return n, fmt.Errorf("seamap: deleting %s: %w", obj.Key, err)
		}
		n++
	}
	return n, nil
}

// Close closes the bucket.
func (s *Store) Close() error { return s.Bucket.Close() }
