package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// Presigner issues pre-signed PUT/GET URLs against the object store.
// Callers never touch the bucket directly; everything flows through
// signed URLs so the store credentials stay server-side.
type Presigner struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
	lifetime time.Duration
}

// NewPresigner connects to the object store.
func NewPresigner(endpoint, accessKey, secretKey, bucket string, useSSL bool, lifetime time.Duration) (*Presigner, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	log.WithFields(log.Fields{
		"endpoint": endpoint,
		"bucket":   bucket,
	}).Info("Object storage presigner ready")

	return &Presigner{
		client:   client,
		endpoint: endpoint,
		bucket:   bucket,
		useSSL:   useSSL,
		lifetime: lifetime,
	}, nil
}

// PresignPut issues a write-capable URL for one bucket key.
func (p *Presigner) PresignPut(ctx context.Context, chainID int64, filename string, fileType FileType) (string, error) {
	key, err := ObjectPath(chainID, filename, fileType)
	if err != nil {
		return "", err
	}

	signed, err := p.client.PresignedPutObject(ctx, p.bucket, key, p.lifetime)
	if err != nil {
		return "", fmt.Errorf("failed to presign PUT for %s: %w", key, err)
	}

	return signed.String(), nil
}

// PresignGet issues a read-capable URL for one bucket key.
func (p *Presigner) PresignGet(ctx context.Context, chainID int64, filename string, fileType FileType) (string, error) {
	key, err := ObjectPath(chainID, filename, fileType)
	if err != nil {
		return "", err
	}

	signed, err := p.client.PresignedGetObject(ctx, p.bucket, key, p.lifetime, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign GET for %s: %w", key, err)
	}

	return signed.String(), nil
}

// FetchObject reads one bucket key into memory. Missing keys return
// (nil, false, nil).
func (p *Presigner) FetchObject(ctx context.Context, chainID int64, filename string, fileType FileType) ([]byte, bool, error) {
	key, err := ObjectPath(chainID, filename, fileType)
	if err != nil {
		return nil, false, err
	}

	obj, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, true, nil
}

// PublicURL returns the unsigned URL of a bucket key, for objects the
// bucket policy exposes read-only.
func (p *Presigner) PublicURL(chainID int64, filename string, fileType FileType) (string, error) {
	key, err := ObjectPath(chainID, filename, fileType)
	if err != nil {
		return "", err
	}

	scheme := "http"
	if p.useSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.endpoint, p.bucket, key), nil
}
