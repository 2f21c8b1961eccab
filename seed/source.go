package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DachengChen/askSQL/config"
)

// ErrObjectNotFound is returned when an s3:// source does not exist.
var ErrObjectNotFound = errors.New("object not found")

// objectGetter is the part of an S3 client the seeder uses.
type objectGetter interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Fetcher opens dataset sources by URL: http(s)://, s3://bucket/key or
// a local path.
type Fetcher struct {
	HTTP *http.Client
	S3   config.S3Config

	objects objectGetter
}

// Open returns the raw bytes of the source at rawURL.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.openHTTP(ctx, u.String())
	case "s3":
		return f.openS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "", "file":
		return os.Open(u.Path)
	default:
		return nil, fmt.Errorf("unsupported seed url scheme %q", u.Scheme)
	}
}

func (f *Fetcher) openHTTP(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", target, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

func (f *Fetcher) openS3(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 url must look like s3://bucket/key")
	}
	if f.objects == nil {
		mc, err := newMinioClient(f.S3)
		if err != nil {
			return nil, err
		}
		f.objects = mc
	}
	body, err := f.objects.Get(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
		}
		return nil, fmt.Errorf("get object s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

func newMinioClient(cfg config.S3Config) (*minioClient, error) {
	endpoint, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &minioClient{client: client}, nil
}

func parseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("ASKSQL_S3_ENDPOINT is required for s3:// sources")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("parse endpoint URL: %w", err)
		}
		if parsed.Host == "" {
			return "", false, fmt.Errorf("endpoint host is required")
		}
		return parsed.Host, parsed.Scheme == "https", nil
	}
	return raw, useSSL, nil
}

type minioClient struct {
	client *minio.Client
}

func (m *minioClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, mapMinioErr(err)
	}
	return obj, nil
}

func mapMinioErr(err error) error {
	var response minio.ErrorResponse
	if errors.As(err, &response) {
		switch response.Code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return ErrObjectNotFound
		}
	}
	return err
}
