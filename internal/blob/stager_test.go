package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	failRm  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]string{}, types: map[string]string{}, failRm: map[string]bool{}}
}

func (m *memStore) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+name] = string(b)
	m.types[bucket+"/"+name] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: size}, nil
}

func (m *memStore) RemoveObject(ctx context.Context, bucket, name string, opts minio.RemoveObjectOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRm[name] {
		return errors.New("access denied")
	}
	delete(m.objects, bucket+"/"+name)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func fixedNow() time.Time { return time.UnixMilli(1704067200000) }

func TestStager_StageAndDelete(t *testing.T) {
	store := newMemStore()
	s := newStager(store, "wishes", "https://blob.example.com/")
	s.now = fixedNow

	url, err := s.Stage(context.Background(), "../../ferien.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://blob.example.com/wishes/wishes/1704067200000-"), url)
	assert.True(t, strings.HasSuffix(url, "-ferien.jpg"), url)
	assert.Equal(t, 1, store.count())

	name, err := s.ObjectName(url)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", store.types["wishes/"+name])

	require.NoError(t, s.Delete(context.Background(), url))
	assert.Equal(t, 0, store.count())
}

func TestStager_ObjectNameRejectsForeignURLs(t *testing.T) {
	s := newStager(newMemStore(), "wishes", "https://blob.example.com")

	_, err := s.ObjectName("https://evil.example.com/wishes/wishes/a.jpg")
	assert.ErrorIs(t, err, ErrForeignURL)
	_, err = s.ObjectName("https://blob.example.com/other/a.jpg")
	assert.ErrorIs(t, err, ErrForeignURL)
	_, err = s.ObjectName("https://blob.example.com/wishes/")
	assert.ErrorIs(t, err, ErrForeignURL)

	name, err := s.ObjectName("https://blob.example.com/wishes/wishes/a.jpg?x=1")
	require.NoError(t, err)
	assert.Equal(t, "wishes/a.jpg", name)
}

func TestStager_DeleteAllSkipsFailures(t *testing.T) {
	store := newMemStore()
	s := newStager(store, "wishes", "https://blob.example.com")

	a, err := s.Stage(context.Background(), "a.png", strings.NewReader("a"), 1, "image/png")
	require.NoError(t, err)
	b, err := s.Stage(context.Background(), "b.png", strings.NewReader("b"), 1, "image/png")
	require.NoError(t, err)
	nameB, _ := s.ObjectName(b)
	store.failRm[nameB] = true

	n := s.DeleteAll(context.Background(), []string{a, b, "https://elsewhere.example/x.png"})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.count())
}

func TestStager_ScheduleCleanup(t *testing.T) {
	store := newMemStore()
	s := newStager(store, "wishes", "https://blob.example.com")

	url, err := s.Stage(context.Background(), "a.png", strings.NewReader("a"), 1, "image/png")
	require.NoError(t, err)

	s.ScheduleCleanup([]string{url}, 0)
	assert.Equal(t, 1, store.count())

	s.ScheduleCleanup([]string{url}, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return store.count() == 0 }, time.Second, 5*time.Millisecond)
}
