package blobstore

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/retry"
)

var errAborted = errors.New("upload aborted")

type s3Store struct {
	logger  zerolog.Logger
	bucket  string
	session *session.Session
}

func NewS3Store(logger zerolog.Logger, session *session.Session, bucket string) *s3Store {
	return &s3Store{
		bucket:  bucket,
		session: session,
		logger:  logger,
	}
}

// NewS3StoreFromEnv uses the default AWS credential chain and shared config.
func NewS3StoreFromEnv(logger zerolog.Logger, bucket string) (*s3Store, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating AWS session")
	}
	return NewS3Store(logger, sess, bucket), nil
}

func (s *s3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.logger.Debug().Str("bucket", s.bucket).Str("file", key).Msgf("downloading file")
	buf := aws.NewWriteAtBuffer(nil)
	if _, err := s3manager.NewDownloader(s.session).DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	s.logger.Debug().Str("file", key).Int("bytes", len(buf.Bytes())).Msgf("s3 download complete")
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func (s *s3Store) Create(ctx context.Context, key string) (Writer, error) {
	pr, pw := io.Pipe()
	w := &s3Writer{pw: pw, done: make(chan error, 1)}
	go func() {
		s.logger.Debug().Str("bucket", s.bucket).Str("file", key).Msgf("uploading file")
		_, err := s3manager.NewUploader(s.session).UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

func (s *s3Store) Close() error {
	return nil
}

// s3Writer streams writes into an S3 upload; Close waits for the upload.
// Abort fails the upload's body so no object is stored.
type s3Writer struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3Writer) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

func (w *s3Writer) Abort(cause error) error {
	if cause == nil {
		cause = errAborted
	}
	if err := w.pw.CloseWithError(cause); err != nil {
		return err
	}
	// The upload fails with cause; that failure is the point.
	<-w.done
	return nil
}
