package dictionary

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	gotKey  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotKey = *in.Bucket + "/" + *in.Key

	body, ok := f.objects[f.gotKey]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dictionary/schema.json" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte(nodeListSchema))
	}))
	defer srv.Close()

	l := &Loader{HTTPClient: srv.Client()}

	g, err := l.Load(context.Background(), srv.URL+"/dictionary/schema.json")
	require.NoError(t, err)
	assert.True(t, g.HasBackRef("subjects"))

	_, err = l.Load(context.Background(), srv.URL+"/missing.json")
	require.ErrorIs(t, err, ErrLoad)
	assert.Contains(t, err.Error(), "404")
}

func TestLoader_S3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"my-bucket/dict/schema.json": nodeListSchema}}
	l := &Loader{S3: fake}

	g, err := l.Load(context.Background(), "s3://my-bucket/dict/schema.json")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket/dict/schema.json", fake.gotKey)
	assert.True(t, g.HasNode("sample"))

	_, err = l.Load(context.Background(), "s3://my-bucket/nope.json")
	require.ErrorIs(t, err, ErrLoad)

	_, err = l.Load(context.Background(), "s3://my-bucket")
	require.ErrorIs(t, err, ErrLoad)
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(nodeListSchema), 0o600))

	g, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, g.Labels(), 4)

	g, err = Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Len(t, g.Labels(), 4)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ErrLoad)
}

func TestLoader_UnsupportedScheme(t *testing.T) {
	_, err := Load(context.Background(), "ftp://example.org/schema.json")
	require.ErrorIs(t, err, ErrLoad)
}
