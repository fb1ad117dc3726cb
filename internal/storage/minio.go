// Package storage keeps database backups in a MinIO bucket, one JSON Lines
// object per backup.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/angelodel80/cadmus-api/internal/config"
)

// ContentType of every backup object.
const ContentType = "application/x-ndjson"

// ErrBadKey is returned for keys that cannot name a backup object.
var ErrBadKey = errors.New("backup keys must end in .jsonl")

// Object describes a stored backup.
type Object struct {
	Key          string
	Database     string
	Size         int64
	LastModified time.Time
}

// BackupStore wraps the bucket holding backups.
type BackupStore struct {
	client *minio.Client
	bucket string
}

// NewBackupStore connects to MinIO and creates the bucket when missing.
func NewBackupStore(ctx context.Context, cfg *config.MinIOConfig) (*BackupStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &BackupStore{client: mc, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket %s: %w", s.bucket, err)
		}
	}
	return s, nil
}

func checkKey(key string) error {
	if strings.TrimSuffix(key, ".jsonl") == "" || !strings.HasSuffix(key, ".jsonl") {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}

// putOptions tags the object with the database it was taken from and its
// item count, so a bucket listing is readable without the journal.
func putOptions(database string, items int) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType: ContentType,
		UserMetadata: map[string]string{
			"Database": database,
			"Items":    strconv.Itoa(items),
		},
	}
}

// databaseOf reads the database tag from listed metadata, which may or may
// not keep the amz prefix.
func databaseOf(meta map[string]string) string {
	for _, k := range []string{"X-Amz-Meta-Database", "Database"} {
		if v, ok := meta[k]; ok {
			return v
		}
	}
	return ""
}

// Put stores the backup of database under key. size -1 streams with
// multipart upload.
func (s *BackupStore) Put(ctx context.Context, key, database string, items int, body io.Reader, size int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, putOptions(database, items))
	return err
}

// Open returns the backup stored under key.
func (s *BackupStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// stat to fail early on a missing object
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("backup %s: %w", key, err)
	}
	return obj, nil
}

// Link returns a presigned download URL for key valid for ttl.
func (s *BackupStore) Link(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// List returns the backups whose key starts with prefix.
func (s *BackupStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true, WithMetadata: true}
	for info := range s.client.ListObjects(ctx, s.bucket, opts) {
		if info.Err != nil {
			return nil, info.Err
		}
		if checkKey(info.Key) != nil {
			continue
		}
		out = append(out, Object{
			Key:          info.Key,
			Database:     databaseOf(info.UserMetadata),
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	return out, nil
}
