package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/retry"
)

type localStore struct {
	logger zerolog.Logger
}

func NewLocalStore(logger zerolog.Logger) *localStore {
	return &localStore{logger: logger}
}

func (l *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	l.logger.Debug().Str("path", key).Msgf("opening file")
	f, err := os.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, retry.Permanent(errors.Newf("file %q not found", key))
		}
		return nil, err
	}
	return f, nil
}

func (l *localStore) Create(ctx context.Context, key string) (Writer, error) {
	if dir := filepath.Dir(key); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}
	l.logger.Debug().Str("path", key).Msgf("creating file")
	f, err := os.Create(key)
	if err != nil {
		return nil, err
	}
	return &localWriter{File: f, logger: l.logger}, nil
}

type localWriter struct {
	*os.File
	logger zerolog.Logger
}

func (w *localWriter) Abort(cause error) error {
	w.logger.Debug().Err(cause).Str("path", w.Name()).Msgf("removing partially written file")
	return errors.CombineErrors(w.File.Close(), os.Remove(w.Name()))
}

func (l *localStore) Close() error {
	return nil
}
