package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yourusername/eduplay-api/internal/config"
)

// Provider - общий интерфейс хранилища медиавложений
type Provider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// New выбирает реализацию хранилища по конфигурации
func New(cfg *config.StorageConfig) (Provider, error) {
	switch cfg.Type {
	case "minio":
		return NewMinioProvider(cfg)
	case "local", "":
		return NewLocalProvider(cfg.LocalPath), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// LocalProvider хранит файлы на локальном диске
type LocalProvider struct {
	root string
}

// NewLocalProvider создает локальное хранилище с корнем root
func NewLocalProvider(root string) *LocalProvider {
	return &LocalProvider{root: root}
}

func (p *LocalProvider) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(p.root, filepath.Clean("/"+key)), nil
}

// Upload сохраняет файл на диск
func (p *LocalProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return p.GetURL(key), nil
}

// Delete удаляет файл. Отсутствующий файл ошибкой не считается.
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	dst, err := p.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetURL возвращает публичный путь файла
func (p *LocalProvider) GetURL(key string) string {
	return "/uploads/" + key
}

// MinioProvider хранит файлы в MinIO (S3-совместимое хранилище)
type MinioProvider struct {
	bucket string
	client *minio.Client
}

// NewMinioProvider создает клиента MinIO
func NewMinioProvider(cfg *config.StorageConfig) (*MinioProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioProvider{bucket: cfg.MinioBucket, client: client}, nil
}

// EnsureBucket создает бакет, если его ещё нет
func (p *MinioProvider) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}
	return p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
}

// Upload загружает объект в бакет
func (p *MinioProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

// Delete удаляет объект из бакета
func (p *MinioProvider) Delete(ctx context.Context, key string) error {
	return p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{})
}

// GetURL возвращает путь объекта
func (p *MinioProvider) GetURL(key string) string {
	return "/" + p.bucket + "/" + key
}
