package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const snapshotKey = "stations.json"

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror keeps a copy of the station snapshot in a bucket, so a fresh
// instance without a local file can start from the last persisted state.
type S3Mirror struct {
	client S3Client
	bucket string
}

func NewS3Mirror(client S3Client, bucket string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket}
}

// NewS3MirrorFromEnv builds a mirror with the default AWS configuration
// chain (region, credentials).
func NewS3MirrorFromEnv(ctx context.Context, bucket string) (*S3Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3Mirror(s3.NewFromConfig(cfg), bucket), nil
}

var _ Mirror = (*S3Mirror)(nil)

// Save uploads the snapshot blob.
func (m *S3Mirror) Save(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(snapshotKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting snapshot to s3://%s/%s: %w", m.bucket, snapshotKey, err)
	}
	return nil
}

// Fetch downloads the snapshot blob.
func (m *S3Mirror) Fetch(ctx context.Context) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(snapshotKey),
	})
	if err != nil {
		return nil, fmt.Errorf("getting snapshot from s3://%s/%s: %w", m.bucket, snapshotKey, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot body: %w", err)
	}
	return data, nil
}
