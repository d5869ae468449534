package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service stores blobs in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	// publicDomain, when set, overrides the URL reported for uploaded
	// objects (CDN or custom domain in front of the bucket).
	publicDomain string
}

func NewS3Service(client *s3.Client, publicDomain string) *S3Service {
	return &S3Service{
		client:       client,
		uploader:     manager.NewUploader(client),
		publicDomain: strings.TrimSpace(publicDomain),
	}
}

func (s *S3Service) Upload(ctx context.Context, data []byte, opts UploadOptions) (ObjectInfo, error) {
	if opts.Bucket == "" {
		return ObjectInfo{}, fmt.Errorf("storage bucket is required")
	}
	if opts.Key == "" {
		return ObjectInfo{}, fmt.Errorf("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(opts.Bucket),
		Key:    aws.String(opts.Key),
		Body:   bytes.NewReader(data),
		ACL:    types.ObjectCannedACLPrivate,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s: %w", opts.Key, err)
	}

	info := ObjectInfo{
		Key:  opts.Key,
		ETag: strings.Trim(aws.ToString(out.ETag), `"`),
		Size: int64(len(data)),
		URL:  out.Location,
	}
	if s.publicDomain != "" {
		info.URL = fmt.Sprintf("https://%s/%s", s.publicDomain, opts.Key)
	}
	return info, nil
}

func (s *S3Service) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

var _ Service = (*S3Service)(nil)
