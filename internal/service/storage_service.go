package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"school_lms_backend/internal/config"
	"school_lms_backend/internal/util"
	"school_lms_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts where uploaded files live (local disk in dev,
// MinIO in deployment).
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(objectName string) string
}

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, objectName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectName string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, objectName))
}

func (p *LocalStorageProvider) GetURL(objectName string) string {
	return "/uploads/" + objectName
}

// LocalPathFor maps an object name back to its on-disk location, used for
// probing freshly uploaded media.
func (p *LocalStorageProvider) LocalPathFor(objectName string) string {
	return filepath.Join(p.Config.LocalPath, objectName)
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, objectName, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectName string) string {
	return "/" + p.Config.MinioBucket + "/" + objectName
}

func NewStorageProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case "minio":
		return NewMinioStorageProvider(cfg)
	case "local", "":
		return &LocalStorageProvider{Config: cfg}, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

// objectNameFromURL reverses GetURL: strips the leading /uploads/ or
// /<bucket>/ prefix so stored URLs can be deleted again.
func objectNameFromURL(url string) string {
	trimmed := strings.TrimPrefix(url, "/")
	if _, rest, ok := strings.Cut(trimmed, "/"); ok {
		return rest
	}
	return trimmed
}

// StorageService handles uploads of attempt media (speaking recordings,
// writing photos) and resource files.
type StorageService struct {
	Provider StorageProvider
	Cfg      *config.StorageConfig
}

func NewStorageService(provider StorageProvider, cfg *config.StorageConfig) *StorageService {
	return &StorageService{Provider: provider, Cfg: cfg}
}

type UploadResult struct {
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	// Duration in whole seconds for audio uploads; nil otherwise.
	Duration *int `json:"duration,omitempty"`
}

// UploadAttemptMedia stores a student's speaking/writing upload and, for
// audio, probes its duration so teachers see recording length next to the
// attempt.
func (s *StorageService) UploadAttemptMedia(ctx context.Context, studentID uint, file *multipart.FileHeader) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	objectName := fmt.Sprintf("attempts/%d/%d%s", studentID, time.Now().UnixNano(), filepath.Ext(file.Filename))

	url, err := s.Provider.Upload(ctx, objectName, src, file.Size, contentType)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{URL: url, Size: file.Size, MimeType: contentType}
	if strings.HasPrefix(contentType, "audio/") {
		if local, ok := s.Provider.(*LocalStorageProvider); ok {
			if info, err := util.GetAudioInfo(local.LocalPathFor(objectName)); err == nil {
				seconds := int(info.Duration)
				result.Duration = &seconds
			} else {
				logger.Log.Warn("audio probe failed", zap.String("object", objectName), zap.Error(err))
			}
		}
	}
	return result, nil
}

// UploadResourceFile stores a teacher-authored resource file.
func (s *StorageService) UploadResourceFile(ctx context.Context, creatorID uint, file *multipart.FileHeader) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	objectName := fmt.Sprintf("resources/%d/%d%s", creatorID, time.Now().UnixNano(), filepath.Ext(file.Filename))

	url, err := s.Provider.Upload(ctx, objectName, src, file.Size, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadResult{URL: url, Size: file.Size, MimeType: contentType}, nil
}

func (s *StorageService) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return s.Provider.Delete(ctx, objectNameFromURL(url))
}
