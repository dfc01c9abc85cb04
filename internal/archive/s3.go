package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mealplan-go/internal/config"
	"mealplan-go/internal/planner"
)

const (
	versionMetadataKey = "snapshot-version"
	s3Timeout          = 5 * time.Minute
)

// s3API is the subset of *s3.Client used by S3Archive.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archive stores snapshots as objects under <prefix>/<profileID>/. The
// snapshot version travels as object metadata.
type S3Archive struct {
	name     string
	bucket   string
	prefix   string
	client   s3API
	uploader uploader
}

// NewS3Archive builds a client from the default AWS configuration chain,
// overridden by the region, endpoint and static credentials in cfg.
func NewS3Archive(cfg config.ArchiveConfig) (*S3Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Archive(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, client, manager.NewUploader(client)), nil
}

func newS3Archive(name, bucket, prefix string, client s3API, up uploader) *S3Archive {
	return &S3Archive{
		name:     name,
		bucket:   bucket,
		prefix:   prefix,
		client:   client,
		uploader: up,
	}
}

func (a *S3Archive) key(profileID, name string) string {
	return path.Join(a.prefix, profileID, name+".snapshot")
}

func (a *S3Archive) PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	key := a.key(profileID, name)
	body := &countingReader{r: r}
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(key),
		Body:     body,
		Metadata: map[string]string{versionMetadataKey: strconv.FormatInt(version, 10)},
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", a.bucket, key, err)
	}
	if body.n != size {
		// The object no longer matches what the caller meant to store.
		_, _ = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, body.n)
	}
	return nil
}

func (a *S3Archive) GetSnapshot(profileID string, name string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	key := a.key(profileID, name)
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return notFound(profileID, name)
		}
		return fmt.Errorf("downloading s3://%s/%s: %w", a.bucket, key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// GetSnapshotVersion returns 0 if the object does not exist.
func (a *S3Archive) GetSnapshotVersion(profileID string, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := a.key(profileID, name)
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("inspecting s3://%s/%s: %w", a.bucket, key, err)
	}
	raw, ok := out.Metadata[versionMetadataKey]
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version of s3://%s/%s: %w", a.bucket, key, err)
	}
	return version, nil
}

// ValidateSetup checks that the bucket exists and the credentials can reach it.
func (a *S3Archive) ValidateSetup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", a.bucket, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (a *S3Archive) Name() string { return a.name }

var _ planner.Archive = (*S3Archive)(nil)
