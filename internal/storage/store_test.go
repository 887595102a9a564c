package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "news_summary_latest.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "news_summary_latest.json", "application/json", []byte(`[1]`)))
	got, err := store.Get(ctx, "news_summary_latest.json")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	// overwrite, not merge
	require.NoError(t, store.Put(ctx, "news_summary_latest.json", "application/json", []byte(`[2]`)))
	got, err = store.Get(ctx, "news_summary_latest.json")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	require.NoError(t, store.Put(ctx, "news_summary_2026-10-19.json", "application/json", []byte(`[3]`)))
	got, err = store.Get(ctx, "news_summary_latest.json")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	exercise(t, m)
	assert.Equal(t, 2, m.Keys())
	assert.Equal(t, "application/json", m.ContentType("news_summary_latest.json"))
}

func TestSQLiteStore(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "digest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	assert.Equal(t, "sqlite", db.Backend())
	exercise(t, db)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.db")
	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(context.Background(), "k", "application/json", []byte("v")))
	require.NoError(t, db.Close())

	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, _ := io.ReadAll(in.Body)
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := NewS3WithClient(api, "digests", "reddit")
	exercise(t, store)

	assert.Contains(t, api.objects, "digests/reddit/news_summary_latest.json")
	assert.Equal(t, "application/json", api.types["digests/reddit/news_summary_latest.json"])
}

func TestS3PutError(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, failPut: errors.New("access denied")}
	store := NewS3WithClient(api, "digests", "")
	err := store.Put(context.Background(), "k", "application/json", []byte("v"))
	assert.ErrorContains(t, err, "access denied")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, "memory://")
	require.NoError(t, err)
	assert.Equal(t, "memory", store.Backend())

	store, err = Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "d.db"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Backend())
	store.Close()

	_, err = Open(ctx, "ftp://somewhere")
	assert.Error(t, err)

	_, err = Open(ctx, "")
	assert.Error(t, err)

	_, err = Open(ctx, "redis://%%bad")
	assert.Error(t, err)
}
