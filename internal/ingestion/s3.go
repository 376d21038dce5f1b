package ingestion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client the source needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads scenario and resource CSV exports from a bucket.
// An object is re-ingested only when its ETag changes.
type S3Source struct {
	client       ObjectGetter
	bucket       string
	scenariosKey string
	resourcesKey string

	mu    sync.Mutex
	etags map[string]string
}

// NewS3Source builds a source from the default AWS credential chain
func NewS3Source(ctx context.Context, bucket, scenariosKey, resourcesKey string) (*S3Source, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(cfg), bucket, scenariosKey, resourcesKey), nil
}

// NewS3SourceWithClient uses a caller supplied client
func NewS3SourceWithClient(client ObjectGetter, bucket, scenariosKey, resourcesKey string) *S3Source {
	return &S3Source{
		client:       client,
		bucket:       bucket,
		scenariosKey: scenariosKey,
		resourcesKey: resourcesKey,
		etags:        make(map[string]string),
	}
}

// Name implements Source
func (s *S3Source) Name() string { return "s3" }

// Fetch implements Source
func (s *S3Source) Fetch(ctx context.Context) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch Batch

	if s.scenariosKey != "" {
		out, etag, err := s.open(ctx, s.scenariosKey)
		if err != nil {
			return Batch{}, err
		}
		if out != nil {
			scenarios, err := ParseScenariosCSV(out.Body)
			out.Body.Close()
			if err != nil {
				return Batch{}, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.scenariosKey, err)
			}
			batch.Scenarios = scenarios
			s.etags[s.scenariosKey] = etag
		}
	}

	if s.resourcesKey != "" {
		out, etag, err := s.open(ctx, s.resourcesKey)
		if err != nil {
			return Batch{}, err
		}
		if out != nil {
			resources, err := ParseResourcesCSV(out.Body)
			out.Body.Close()
			if err != nil {
				return Batch{}, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.resourcesKey, err)
			}
			batch.Resources = resources
			s.etags[s.resourcesKey] = etag
		}
	}

	return batch, nil
}

// open returns nil output when the object is unchanged since the last fetch
func (s *S3Source) open(ctx context.Context, key string) (*s3.GetObjectOutput, string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if prev, ok := s.etags[key]; ok && prev != "" {
		input.IfNoneMatch = aws.String(prev)
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		if isNotModified(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}

	etag := aws.ToString(out.ETag)
	if prev, ok := s.etags[key]; ok && prev == etag && etag != "" {
		out.Body.Close()
		return nil, "", nil
	}
	return out, etag, nil
}

func isNotModified(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == http.StatusNotModified
	}
	return false
}
