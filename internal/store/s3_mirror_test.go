package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3Client struct {
	objects map[string][]byte
	getErr  error
	putErr  error
}

func newFakeS3Client() *fakeS3Client {
	return &fakeS3Client{objects: make(map[string][]byte)}
}

func (c *fakeS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.objects[*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (c *fakeS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if c.putErr != nil {
		return nil, c.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Mirror_RoundTrip(t *testing.T) {
	client := newFakeS3Client()
	mirror := NewS3Mirror(client, "pegeldict-snapshots")
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, []byte(`[{"uuid":"a"}]`)))

	data, err := mirror.Fetch(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"uuid":"a"}]`, string(data))
}

func TestS3Mirror_SaveError(t *testing.T) {
	client := newFakeS3Client()
	client.putErr = errors.New("access denied")
	mirror := NewS3Mirror(client, "pegeldict-snapshots")

	err := mirror.Save(context.Background(), []byte("[]"))
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Mirror_FetchMissing(t *testing.T) {
	mirror := NewS3Mirror(newFakeS3Client(), "pegeldict-snapshots")

	_, err := mirror.Fetch(context.Background())
	assert.Error(t, err)
}
