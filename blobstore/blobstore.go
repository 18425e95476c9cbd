// Package blobstore opens and creates the files tabcheck reads tables from
// and writes reports to, whether they live on local disk, S3 or GCS.
package blobstore

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/retry"
)

type Store interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Create(ctx context.Context, key string) (Writer, error)
	Close() error
}

// Writer is an object being written. Close persists what was written; Abort
// discards it, leaving nothing at the location.
type Writer interface {
	io.WriteCloser
	Abort(cause error) error
}

type Scheme string

const (
	SchemeLocal Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
)

// Location is a parsed file location.
type Location struct {
	Scheme Scheme
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == SchemeLocal {
		return l.Key
	}
	return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
}

// ParseLocation parses s3://bucket/key, gs://bucket/key, file:///path or a
// plain local path.
func ParseLocation(loc string) (Location, error) {
	if loc == "" {
		return Location{}, errors.Newf("empty location")
	}
	if !strings.Contains(loc, "://") {
		return Location{Scheme: SchemeLocal, Key: loc}, nil
	}
	u, err := url.Parse(loc)
	if err != nil {
		return Location{}, errors.Wrapf(err, "unable to parse location %q", loc)
	}
	switch Scheme(u.Scheme) {
	case SchemeLocal:
		return Location{Scheme: SchemeLocal, Key: u.Path}, nil
	case SchemeS3, SchemeGCS:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, errors.Newf("location %q must have a bucket and a key", loc)
		}
		return Location{Scheme: Scheme(u.Scheme), Bucket: u.Host, Key: key}, nil
	}
	return Location{}, errors.Newf("unrecognised scheme %s from %s", u.Scheme, loc)
}

// NewStore returns a store able to serve the given location.
func NewStore(ctx context.Context, logger zerolog.Logger, loc Location) (Store, error) {
	switch loc.Scheme {
	case SchemeLocal:
		return NewLocalStore(logger), nil
	case SchemeS3:
		return NewS3StoreFromEnv(logger, loc.Bucket)
	case SchemeGCS:
		return NewGCPStoreFromEnv(ctx, logger, loc.Bucket)
	}
	return nil, errors.AssertionFailedf("unhandled scheme %s", loc.Scheme)
}

// Open reads the whole of a location into memory, retrying transient
// failures.
func Open(
	ctx context.Context, logger zerolog.Logger, location string, settings retry.Settings,
) (io.ReadCloser, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(ctx, logger, loc)
	if err != nil {
		return nil, err
	}
	var rc io.ReadCloser
	if err := retry.Do(ctx, settings, func(attempt int, err error) {
		logger.Warn().Err(err).Int("attempt", attempt).Str("location", location).Msgf("error opening file, retrying")
	}, func(ctx context.Context) error {
		var err error
		rc, err = store.Open(ctx, loc.Key)
		return err
	}); err != nil {
		return nil, errors.CombineErrors(errors.Wrapf(err, "error opening %s", location), store.Close())
	}
	return &storeReadCloser{ReadCloser: rc, store: store}, nil
}

// Create opens a location for writing. The returned writer must be closed
// for the content to be persisted, or aborted to discard it.
func Create(ctx context.Context, logger zerolog.Logger, location string) (Writer, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(ctx, logger, loc)
	if err != nil {
		return nil, err
	}
	wc, err := store.Create(ctx, loc.Key)
	if err != nil {
		return nil, errors.CombineErrors(errors.Wrapf(err, "error creating %s", location), store.Close())
	}
	return &storeWriter{Writer: wc, store: store}, nil
}

type storeReadCloser struct {
	io.ReadCloser
	store Store
}

func (s *storeReadCloser) Close() error {
	return errors.CombineErrors(s.ReadCloser.Close(), s.store.Close())
}

type storeWriter struct {
	Writer
	store Store
}

func (s *storeWriter) Close() error {
	return errors.CombineErrors(s.Writer.Close(), s.store.Close())
}

func (s *storeWriter) Abort(cause error) error {
	return errors.CombineErrors(s.Writer.Abort(cause), s.store.Close())
}
