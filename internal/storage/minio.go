package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore 对象存储接口
// 导出引擎只依赖该接口,测试中用内存实现替换
type BlobStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
	PresignedGet(ctx context.Context, objectName string, ttl time.Duration, filename string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// minioStore 基于 MinIO 的对象存储实现
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 创建 MinIO 对象存储客户端
// 桶不存在时自动创建
func NewMinioStore(cfg config.StorageConfig) (BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put 上传对象
func (s *minioStore) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", objectName, err)
	}
	return nil
}

// PresignedGet 生成预签名下载链接
func (s *minioStore) PresignedGet(ctx context.Context, objectName string, ttl time.Duration, filename string) (string, error) {
	reqParams := url.Values{}
	if filename != "" {
		reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, ttl, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", objectName, err)
	}
	return u.String(), nil
}

// Delete 删除对象
func (s *minioStore) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", objectName, err)
	}
	return nil
}
