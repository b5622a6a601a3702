package draft

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectConfig locates the bucket used by ObjectStore.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// ObjectStore keeps drafts as JSON objects in an S3 compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewObjectStore(cfg ObjectConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object client: %w", err)
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket, prefix: normalizePrefix(cfg.Prefix)}, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *ObjectStore) objectName(name string) string {
	return s.prefix + name + ".json"
}

// draftName reverses objectName. ok is false for keys that are not drafts.
func (s *ObjectStore) draftName(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) || path.Ext(key) != ".json" {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), ".json")
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

func (s *ObjectStore) Save(ctx context.Context, name, data string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(name), strings.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("save draft %s: %w", name, err)
	}
	return nil
}

func (s *ObjectStore) Load(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(name), minio.GetObjectOptions{})
	if err != nil {
		return "", s.wrap("load", name, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return "", s.wrap("load", name, err)
	}
	return buf.String(), nil
}

func (s *ObjectStore) List(ctx context.Context) ([]Info, error) {
	var infos []Info
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list drafts: %w", obj.Err)
		}
		name, ok := s.draftName(obj.Key)
		if !ok {
			continue
		}
		infos = append(infos, Info{Name: name, UpdatedAt: obj.LastModified.UTC(), Size: obj.Size})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (s *ObjectStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, s.objectName(name), minio.StatObjectOptions{}); err != nil {
		return s.wrap("delete", name, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(name), minio.RemoveObjectOptions{}); err != nil {
		return s.wrap("delete", name, err)
	}
	return nil
}

func (s *ObjectStore) wrap(op, name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("%s draft %s: %w", op, name, err)
}
