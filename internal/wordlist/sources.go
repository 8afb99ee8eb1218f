package wordlist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"spellbee/internal/models"
)

// Source fetches and parses the word list stored at location
type Source interface {
	Fetch(ctx context.Context, location string) ([]models.WordEntry, error)
}

// HTTPSource downloads word lists with a single GET. It never retries.
type HTTPSource struct {
	Client *http.Client
}

func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{Client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context, location string) ([]models.WordEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, location)
	}
	return decode(location, resp.Body)
}

// S3GetObjectAPI is the part of the S3 client used by S3Source
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads word lists from s3://bucket/key locations
type S3Source struct {
	Client S3GetObjectAPI
}

// NewS3Source builds a client from the default AWS credential chain
func NewS3Source(ctx context.Context, region string) (*S3Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Source{Client: s3.NewFromConfig(cfg)}, nil
}

func (s *S3Source) Fetch(ctx context.Context, location string) ([]models.WordEntry, error) {
	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer out.Body.Close()
	return decode(key, out.Body)
}

func parseS3Location(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: invalid S3 location %q", ErrUnavailable, location)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%w: S3 location %q has no key", ErrUnavailable, location)
	}
	return u.Host, key, nil
}

// FileSource reads word lists from the local filesystem
type FileSource struct{}

func (FileSource) Fetch(ctx context.Context, location string) ([]models.WordEntry, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()
	return decode(location, f)
}
