package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectPutter is the slice of *s3.Client the sink needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3-compatible (MinIO, AWS) endpoint.
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Sink writes each event as a JSON object.
type S3Sink struct {
	client objectPutter
	bucket string
	newKey func(Event) string
}

// NewS3Sink builds an S3 client with static credentials. Path-style
// addressing is forced so MinIO endpoints work without DNS buckets.
func NewS3Sink(ctx context.Context, o S3Options) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		opts.UsePathStyle = true
	})

	return newS3Sink(client, o.Bucket), nil
}

func newS3Sink(client objectPutter, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, newKey: objectKey}
}

func (s *S3Sink) Record(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.newKey(e)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put audit event: %w", err)
	}
	return nil
}

// objectKey groups events by day: lockouts/2026/10/14/<uuid>.json
func objectKey(e Event) string {
	d := e.OccurredAt.UTC()
	return fmt.Sprintf("lockouts/%d/%d/%d/%v.json", d.Year(), d.Month(), d.Day(), uuid.New())
}
