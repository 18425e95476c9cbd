package blobstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/retry"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type gcpStore struct {
	logger zerolog.Logger
	bucket string
	client *storage.Client
}

func NewGCPStore(logger zerolog.Logger, client *storage.Client, bucket string) *gcpStore {
	return &gcpStore{
		bucket: bucket,
		client: client,
		logger: logger,
	}
}

// NewGCPStoreFromEnv uses application default credentials.
func NewGCPStoreFromEnv(ctx context.Context, logger zerolog.Logger, bucket string) (*gcpStore, error) {
	creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, errors.Wrap(err, "error finding GCP credentials")
	}
	client, err := storage.NewClient(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, errors.Wrap(err, "error creating GCS client")
	}
	return NewGCPStore(logger, client, bucket), nil
}

func (s *gcpStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.logger.Debug().Str("bucket", s.bucket).Str("file", key).Msgf("opening gcs object")
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	return r, nil
}

func (s *gcpStore) Create(ctx context.Context, key string) (Writer, error) {
	s.logger.Debug().Str("bucket", s.bucket).Str("file", key).Msgf("creating gcs object")
	ctx, cancel := context.WithCancel(ctx)
	return &gcpWriter{Writer: s.client.Bucket(s.bucket).Object(key).NewWriter(ctx), cancel: cancel}, nil
}

// gcpWriter aborts by cancelling the writer's context, which stops the
// upload before the object is finalized.
type gcpWriter struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *gcpWriter) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

func (w *gcpWriter) Abort(error) error {
	w.cancel()
	// Close reports the cancellation.
	_ = w.Writer.Close()
	return nil
}

func (s *gcpStore) Close() error {
	return s.client.Close()
}
