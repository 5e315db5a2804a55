package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/neuromediai/site/internal/domain/detection"
)

const previewPrefix = "previews/"

// MinioStore keeps previews as objects in a bucket. Objects are removed on
// release, nothing outlives the dialog session.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewMinio buat koneksi MinIO dan pastikan bucket ada
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region}, nil
}

func (s *MinioStore) Put(ctx context.Context, filename, mediaType string, data []byte) (domain.PreviewHandle, error) {
	id := uuid.NewString()
	opts := minio.PutObjectOptions{
		ContentType:  mediaType,
		UserMetadata: map[string]string{"filename": path.Base(filename)},
	}
	if _, err := s.client.PutObject(ctx, s.bucketName, objectKey(id), bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return domain.PreviewHandle{}, fmt.Errorf("put preview: %w", err)
	}
	return domain.PreviewHandle{ID: id, MediaType: mediaType, Size: int64(len(data))}, nil
}

func (s *MinioStore) Open(ctx context.Context, id string) (domain.Preview, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return domain.Preview{}, mapMinioErr(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return domain.Preview{}, mapMinioErr(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return domain.Preview{}, mapMinioErr(err)
	}
	return domain.Preview{MediaType: info.ContentType, Data: data}, nil
}

func (s *MinioStore) Release(ctx context.Context, id string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, objectKey(id), minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

// Check is used by the health endpoint.
func (s *MinioStore) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func objectKey(id string) string { return previewPrefix + id }

func mapMinioErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return domain.ErrPreviewNotFound
	}
	return err
}

var _ domain.PreviewStore = (*MinioStore)(nil)
