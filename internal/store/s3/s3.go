package s3store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dev-tams/b2prune/internal/store/version"
)

// Store talks to a version-enabled S3-compatible bucket directly. Backblaze
// exposes one per region (s3.<region>.backblazeb2.com), so this backend
// works without the b2 CLI installed at all.
type Store struct {
	name   string
	bucket string
	client *s3.Client
}

type Options struct {
	Name      string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func New(ctx context.Context, opt Options) (*Store, error) {
	if opt.Bucket == "" || opt.Region == "" {
		return nil, fmt.Errorf("s3: bucket and region are required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opt.Region),
	}
	if opt.AccessKey != "" || opt.SecretKey != "" {
		if opt.AccessKey == "" || opt.SecretKey == "" {
			return nil, fmt.Errorf("s3: access_key and secret_key must be set together")
		}
		creds := credentials.NewStaticCredentialsProvider(opt.AccessKey, opt.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opt.Endpoint != "" {
			o.BaseEndpoint = aws.String(opt.Endpoint)
		}
	})

	return &Store{name: opt.Name, bucket: opt.Bucket, client: client}, nil
}

func (s *Store) Name() string { return s.name }

// ListVersions walks every page of ListObjectVersions. Delete markers are
// not surfaced: pruning keeps the newest real version, and a tombstone must
// never count as that version.
func (s *Store) ListVersions(ctx context.Context) ([]version.Record, error) {
	var records []version.Record

	p := s3.NewListObjectVersionsPaginator(s.client, &s3.ListObjectVersionsInput{
		Bucket: aws.String(s.bucket),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, apiError("s3 list object versions", err)
		}
		for _, v := range page.Versions {
			var ts int64
			if v.LastModified != nil {
				ts = v.LastModified.UnixMilli()
			}
			records = append(records, version.Record{
				FileName:        aws.ToString(v.Key),
				FileID:          aws.ToString(v.VersionId),
				UploadTimestamp: ts,
			})
		}
	}
	return records, nil
}

func (s *Store) DeleteVersion(ctx context.Context, fileName, fileID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket:    aws.String(s.bucket),
		Key:       aws.String(fileName),
		VersionId: aws.String(fileID),
	})
	if err != nil {
		return apiError(fmt.Sprintf("s3 delete %s (version %s)", fileName, fileID), err)
	}
	return nil
}

func (s *Store) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return apiError("s3 head bucket", err)
	}
	return nil
}

func apiError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%s: %w", op, err)
}
