package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3 (or MinIO) bucket. Endpoint, keys and
// PublicURL are optional; without keys the default AWS credential chain
// is used.
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type S3 struct {
	client *s3.Client
	cfg    S3Config
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &S3{client: client, cfg: cfg}, nil
}

func (s *S3) objectKey(key string) string {
	if s.cfg.Prefix == "" {
		return key
	}
	return s.cfg.Prefix + "/" + key
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	}
	if opts != nil && opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	_, err := s.client.PutObject(ctx, in)
	return err
}

// URL returns PublicURL/<key> when configured, the path-style endpoint URL
// for custom endpoints, and the virtual-hosted AWS URL otherwise.
func (s *S3) URL(key string) string {
	k := s.objectKey(key)
	switch {
	case s.cfg.PublicURL != "":
		return s.cfg.PublicURL + "/" + k
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + k
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, k)
	}
}
