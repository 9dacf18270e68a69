package store

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/model"
)

// S3API is the subset of the S3 client used by S3ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ImageStore keeps profile images as objects in an S3 compatible bucket. The object key is
// the prefix followed by the image id.
type S3ImageStore struct {
	client S3API
	bucket string
	prefix string
}

// NewS3ImageStore creates an image store on top of the given client.
func NewS3ImageStore(client S3API, bucket string, prefix string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client creates an S3 client from the configuration. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain applies. A custom
// endpoint (e.g. MinIO) switches to path style addressing.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not load AWS configuration")
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3ImageStore) InsertImage(ctx context.Context, image model.Image) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(image.Id)),
		Body:          bytes.NewReader(image.Data),
		ContentLength: aws.Int64(int64(len(image.Data))),
		ContentType:   aws.String(mimetype.Detect(image.Data).String()),
	})
	if err != nil {
		return errors.Wrapf(err, "could not upload image %s", image.Id)
	}
	return nil
}

func (s *S3ImageStore) GetImage(ctx context.Context, id string) (*model.Image, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not download image %s", id)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read image %s", id)
	}
	return &model.Image{Id: id, Data: data}, nil
}

func (s *S3ImageStore) key(id string) string {
	return s.prefix + id
}
