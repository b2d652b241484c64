package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Provider is the S3-compatible storage vendor
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
	ProviderR2     Provider = "r2"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

// Config holds configuration for S3-compatible storage
type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // required for r2, optional override for wasabi
	MaxObjectBytes  int64
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
}

// ResolveEndpoint returns the base endpoint URL, or "" for plain AWS
func (c Config) ResolveEndpoint() (string, error) {
	endpoint := c.Endpoint
	switch c.Provider {
	case ProviderWasabi:
		if endpoint == "" {
			host, ok := WasabiEndpoints[c.Region]
			if !ok {
				host = "s3.ap-southeast-1.wasabisys.com"
			}
			endpoint = host
		}
	case ProviderR2:
		if endpoint == "" {
			return "", errors.New("storage: r2 requires S3_ENDPOINT")
		}
	case ProviderAWS, "":
	default:
		return "", fmt.Errorf("storage: unknown provider %q", c.Provider)
	}

	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return endpoint, nil
}

// S3Store reads resumes from a single bucket
type S3Store struct {
	client   *s3.Client
	bucket   string
	maxBytes int64
}

// NewS3Store creates an S3 client. Custom endpoints use path-style addressing.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	endpoint, err := cfg.ResolveEndpoint()
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, maxBytes: cfg.MaxObjectBytes}, nil
}

// Fetch downloads an object and returns its bytes and content type
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	if s.maxBytes > 0 && out.ContentLength != nil && *out.ContentLength > s.maxBytes {
		return nil, "", ErrObjectTooLarge
	}

	data, err := readLimited(out.Body, s.maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, aws.ToString(out.ContentType), nil
}

// Ping checks that the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.bucket, err)
	}
	return nil
}

// readLimited reads r fully, failing with ErrObjectTooLarge past max bytes (0 = unlimited)
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read object body: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if int64(len(data)) > max {
		return nil, ErrObjectTooLarge
	}
	return data, nil
}
