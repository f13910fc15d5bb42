package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/platelens/backend/internal/domain"
)

const (
	defaultRegion       = "us-east-1"
	defaultSignedURLTTL = 7 * 24 * time.Hour
)

// Config holds S3 settings
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
	SignedURLTTL    time.Duration
	AccessKeyID     string
	SecretAccessKey string
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads meal photos to one bucket, namespaced by user id.
type S3Store struct {
	objects       objectAPI
	presigner     presignAPI
	bucket        string
	region        string
	publicBaseURL string
	signedURLTTL  time.Duration
	now           func() time.Time
}

// NewS3Store builds an S3 client from the default AWS chain, or from static
// keys when both are configured.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	cfg.Region = region
	return newS3Store(client, s3.NewPresignClient(client), cfg), nil
}

func newS3Store(objects objectAPI, presigner presignAPI, cfg Config) *S3Store {
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	return &S3Store{
		objects:       objects,
		presigner:     presigner,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		signedURLTTL:  ttl,
		now:           time.Now,
	}
}

// Upload stores the image under <userID>/ and returns a loadable URL. A
// missing bucket is created once and the upload retried.
func (s *S3Store) Upload(ctx context.Context, userID string, image *domain.ImagePayload) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", domain.ErrMissingImage
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id required for upload", domain.ErrInvalidRequest)
	}

	key := s.objectKey(userID, image.ContentType)

	err := s.put(ctx, key, image)
	if errors.Is(err, domain.ErrBucketNotFound) {
		log.Printf("[STORAGE] Bucket %s missing, creating it", s.bucket)
		if createErr := s.createBucket(ctx); createErr != nil {
			return "", createErr
		}
		err = s.put(ctx, key, image)
	}
	if err != nil {
		return "", err
	}

	url, err := s.objectURL(ctx, key)
	if err != nil {
		return "", err
	}
	log.Printf("[STORAGE] Uploaded %d bytes to %s/%s", len(image.Data), s.bucket, key)
	return url, nil
}

func (s *S3Store) put(ctx context.Context, key string, image *domain.ImagePayload) error {
	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.Data),
		ContentType: aws.String(image.ContentType),
	})
	if err == nil {
		return nil
	}
	if isNoSuchBucket(err) {
		return domain.ErrBucketNotFound
	}
	return fmt.Errorf("%w: put object: %v", domain.ErrStorageFailure, err)
}

func (s *S3Store) createBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}

	_, err := s.objects.CreateBucket(ctx, input)
	if err == nil {
		return nil
	}
	var owned *s3types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return nil
	}
	return fmt.Errorf("%w: create bucket: %v", domain.ErrStorageFailure, err)
}

// objectURL returns the public URL when a base is configured, otherwise a
// presigned GET.
func (s *S3Store) objectURL(ctx context.Context, key string) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.signedURLTTL))
	if err != nil {
		return "", fmt.Errorf("%w: presign: %v", domain.ErrStorageFailure, err)
	}
	return req.URL, nil
}

func (s *S3Store) objectKey(userID, contentType string) string {
	return fmt.Sprintf("%s/%d-%s%s", userID, s.now().UnixNano(), uuid.NewString(), extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "", "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		return "." + parts[1]
	}
	return ".bin"
}

func isNoSuchBucket(err error) bool {
	var nsb *s3types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket"
}
