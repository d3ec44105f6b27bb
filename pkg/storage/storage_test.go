package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "products/a.txt", strings.NewReader("hello"), "text/plain"))
	assert.True(t, d.Exists(ctx, "products/a.txt"))

	b, err := d.Get(ctx, "products/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, "/storage/products/a.txt", d.URL("products/a.txt"))

	require.NoError(t, d.Delete(ctx, "products/a.txt"))
	require.NoError(t, d.Delete(ctx, "products/a.txt"))
	_, err = d.Get(ctx, "products/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewLocal(root, "/storage")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	assert.True(t, d.Exists(ctx, "escape.txt"))
}

func TestLocalHandlerServesFilesNotDirectories(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)
	require.NoError(t, d.Put(ctx, "products/a.txt", strings.NewReader("hello"), ""))

	h := d.Handler("/storage")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/products/a.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/products/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImagesUpload(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)

	images := NewImages(d, "/profiles/")
	images.newKey = func() string { return "fixed" }

	url, err := images.Upload(ctx, "me.png", bytes.NewReader(append(pngHeader, make([]byte, 600)...)))
	require.NoError(t, err)
	assert.Equal(t, "/storage/profiles/fixed.png", url)

	stored, err := d.Get(ctx, "profiles/fixed.png")
	require.NoError(t, err)
	assert.Len(t, stored, len(pngHeader)+600)

	_, err = images.Upload(ctx, "evil.png", strings.NewReader("<html>not an image</html>"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Disk(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	d := &S3{client: fake, bucket: "heartscript", baseURL: "https://cdn.example.com"}

	images := NewImages(d, "products")
	images.newKey = func() string { return "k1" }

	url, err := images.Upload(ctx, "card.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/k1.png", url)
	assert.Equal(t, "image/png", fake.types["products/k1.png"])
	assert.True(t, d.Exists(ctx, "products/k1.png"))

	require.NoError(t, d.Delete(ctx, "products/k1.png"))
	_, err = d.Get(ctx, "products/k1.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
