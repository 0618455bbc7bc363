package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/forepost/api/configs"
)

// S3Service mirrors uploaded images to an object bucket so their public URLs
// survive local disk rotation. Local disk stays the source of truth for the
// publisher.
type S3Service struct {
	cfg *config.Config
}

func NewS3Service(cfg *config.Config) *S3Service {
	return &S3Service{cfg: cfg}
}

func (s *S3Service) Enabled() bool {
	return s.cfg.S3.Bucket != "" && s.cfg.S3.AccessKey != ""
}

func (s *S3Service) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.S3.AccessKey, s.cfg.S3.SecretKey, "")),
		awsconfig.WithRegion(s.cfg.S3.Region),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

func (s *S3Service) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (s *S3Service) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.cfg.S3.PublicURL, key)
}
