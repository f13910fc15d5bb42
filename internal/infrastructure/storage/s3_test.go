package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/platelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	putErrs      []error
	createErr    error
	puts         []*s3.PutObjectInput
	bodies       [][]byte
	createInputs []*s3.CreateBucketInput
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)
	body, _ := io.ReadAll(params.Body)
	f.bodies = append(f.bodies, body)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createInputs = append(f.createInputs, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

type fakePresigner struct {
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *params.Bucket + "/" + *params.Key + "?X-Amz-Signature=abc"}, nil
}

func jpegPayload() *domain.ImagePayload {
	return &domain.ImagePayload{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, ContentType: "image/jpeg"}
}

func TestUpload_PublicURL(t *testing.T) {
	objects := &fakeObjects{}
	store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images", PublicBaseURL: "https://cdn.example.com/"})

	url, err := store.Upload(context.Background(), "user-1", jpegPayload())

	require.NoError(t, err)
	require.Len(t, objects.puts, 1)
	key := *objects.puts[0].Key
	assert.True(t, strings.HasPrefix(key, "user-1/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "meal-images", *objects.puts[0].Bucket)
	assert.Equal(t, "image/jpeg", *objects.puts[0].ContentType)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, objects.bodies[0])
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestUpload_SignedURL(t *testing.T) {
	presigner := &fakePresigner{}
	store := newS3Store(&fakeObjects{}, presigner, Config{Bucket: "meal-images", SignedURLTTL: time.Hour})

	url, err := store.Upload(context.Background(), "user-1", jpegPayload())

	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Signature")
	assert.Equal(t, time.Hour, presigner.expires)
}

func TestUpload_CreatesMissingBucketAndRetries(t *testing.T) {
	t.Run("typed error", func(t *testing.T) {
		objects := &fakeObjects{putErrs: []error{&s3types.NoSuchBucket{}}}
		store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images", Region: "eu-west-1", PublicBaseURL: "https://cdn"})

		_, err := store.Upload(context.Background(), "user-1", jpegPayload())

		require.NoError(t, err)
		assert.Len(t, objects.puts, 2)
		require.Len(t, objects.createInputs, 1)
		require.NotNil(t, objects.createInputs[0].CreateBucketConfiguration)
		assert.Equal(t, s3types.BucketLocationConstraint("eu-west-1"), objects.createInputs[0].CreateBucketConfiguration.LocationConstraint)
	})

	t.Run("generic api error code", func(t *testing.T) {
		objects := &fakeObjects{putErrs: []error{&smithy.GenericAPIError{Code: "NoSuchBucket", Message: "missing"}}}
		store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images", Region: "us-east-1", PublicBaseURL: "https://cdn"})

		_, err := store.Upload(context.Background(), "user-1", jpegPayload())

		require.NoError(t, err)
		require.Len(t, objects.createInputs, 1)
		assert.Nil(t, objects.createInputs[0].CreateBucketConfiguration)
	})
}

func TestUpload_RetryFailsOnlyOnce(t *testing.T) {
	objects := &fakeObjects{putErrs: []error{&s3types.NoSuchBucket{}, &s3types.NoSuchBucket{}}}
	store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images", PublicBaseURL: "https://cdn"})

	_, err := store.Upload(context.Background(), "user-1", jpegPayload())

	assert.ErrorIs(t, err, domain.ErrBucketNotFound)
	assert.Len(t, objects.puts, 2)
	assert.Len(t, objects.createInputs, 1)
}

func TestUpload_CreateBucketFails(t *testing.T) {
	objects := &fakeObjects{
		putErrs:   []error{&s3types.NoSuchBucket{}},
		createErr: errors.New("access denied"),
	}
	store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images"})

	_, err := store.Upload(context.Background(), "user-1", jpegPayload())

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Len(t, objects.puts, 1)
}

func TestUpload_OtherErrorNotRetried(t *testing.T) {
	objects := &fakeObjects{putErrs: []error{errors.New("connection reset")}}
	store := newS3Store(objects, &fakePresigner{}, Config{Bucket: "meal-images"})

	_, err := store.Upload(context.Background(), "user-1", jpegPayload())

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Len(t, objects.puts, 1)
	assert.Empty(t, objects.createInputs)
}

func TestUpload_InvalidInput(t *testing.T) {
	store := newS3Store(&fakeObjects{}, &fakePresigner{}, Config{Bucket: "b"})

	_, err := store.Upload(context.Background(), "user-1", &domain.ImagePayload{URL: "https://example.com/a.jpg"})
	assert.ErrorIs(t, err, domain.ErrMissingImage)

	_, err = store.Upload(context.Background(), " ", jpegPayload())
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", ".jpg"},
		{"", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/heic", ".heic"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, extensionFor(tt.contentType))
		})
	}
}
