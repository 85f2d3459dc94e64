package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
)

var ErrForeignURL = errors.New("url does not point into the staging bucket")

// ObjectPrefix is where staged images live inside the bucket; only this
// prefix is publicly readable.
const ObjectPrefix = "wishes/"

// objectStore is the part of *minio.Client the stager uses.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Stager parks uploaded images in a public bucket until the record store
// has copied them.
type Stager struct {
	client  objectStore
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewStager returns a stager for bucket. Objects are served under
// baseURL/bucket/object.
func NewStager(client *minio.Client, bucket, baseURL string) *Stager {
	return newStager(client, bucket, baseURL)
}

func newStager(client objectStore, bucket, baseURL string) *Stager {
	return &Stager{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *Stager) objectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%s%d-%s-%s", ObjectPrefix, s.now().UnixMilli(), uuid.NewString()[:8], base)
}

func (s *Stager) urlFor(objectName string) string {
	return s.baseURL + "/" + s.bucket + "/" + objectName
}

// ObjectName returns the object a public URL points to.
func (s *Stager) ObjectName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	prefix := s.baseURL + "/" + s.bucket + "/"
	full := u.Scheme + "://" + u.Host + u.Path
	if !strings.HasPrefix(full, prefix) || len(full) == len(prefix) {
		return "", ErrForeignURL
	}
	return strings.TrimPrefix(full, prefix), nil
}

// Stage uploads one file and returns its public URL.
func (s *Stager) Stage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	name := s.objectName(filename)
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", filename, err)
	}
	return s.urlFor(name), nil
}

func (s *Stager) Delete(ctx context.Context, rawURL string) error {
	name, err := s.ObjectName(rawURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// DeleteAll removes every URL it can and logs the ones it cannot.
// It returns how many were removed.
func (s *Stager) DeleteAll(ctx context.Context, urls []string) int {
	removed := 0
	for _, u := range urls {
		if err := s.Delete(ctx, u); err != nil {
			logrus.WithError(err).WithField("url", u).Warn("Failed to delete staged image")
			continue
		}
		removed++
	}
	return removed
}

// ScheduleCleanup deletes urls once delay has passed, giving the record
// store time to fetch them. A non-positive delay disables cleanup.
func (s *Stager) ScheduleCleanup(urls []string, delay time.Duration) {
	if delay <= 0 || len(urls) == 0 {
		return
	}
	pending := append([]string(nil), urls...)
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n := s.DeleteAll(ctx, pending)
		logrus.WithFields(logrus.Fields{"removed": n, "staged": len(pending)}).Info("Staged images cleaned up")
	})
}
