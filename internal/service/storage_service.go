package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 课件文件存储后端
type StorageProvider interface {
	PutFile(ctx context.Context, objectName, localPath, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	URL(objectName string) string
}

type LocalStorageProvider struct {
	Root string
}

func (p *LocalStorageProvider) PutFile(ctx context.Context, objectName, localPath, contentType string) (string, error) {
	dst := filepath.Join(p.Root, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return p.URL(objectName), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectName string) error {
	return os.Remove(filepath.Join(p.Root, filepath.FromSlash(objectName)))
}

func (p *LocalStorageProvider) URL(objectName string) string {
	return "/uploads/" + objectName
}

type MinioStorageProvider struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (p *MinioStorageProvider) PutFile(ctx context.Context, objectName, localPath, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.URL(objectName), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) URL(objectName string) string {
	return "/" + p.Bucket + "/" + objectName
}

type OSSStorageProvider struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (p *OSSStorageProvider) PutFile(ctx context.Context, objectName, localPath, contentType string) (string, error) {
	if err := p.Bucket.PutObjectFromFile(objectName, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.URL(objectName), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Bucket.DeleteObject(objectName)
}

func (p *OSSStorageProvider) URL(objectName string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Bucket.BucketName, p.Endpoint, objectName)
}

// StoredFile 上传结果，视频附带时长
type StoredFile struct {
	URL             string
	ObjectName      string
	MimeType        string
	DurationSeconds float64
}

type StorageService struct {
	Provider StorageProvider
	// Probe 读取视频时长，测试中可替换
	Probe func(localPath string) (float64, error)
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init minio storage, falling back to local", zap.Error(err))
			break
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init oss storage, falling back to local", zap.Error(err))
			break
		}
		provider = p
	}
	if provider == nil {
		provider = &LocalStorageProvider{Root: cfg.Storage.LocalPath}
	}
	return &StorageService{Provider: provider, Probe: util.ProbeVideoDuration}
}

const objectPrefix = "lms_content/"

// objectName lms_content/2006/01/<uuid>.<ext>
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(objectPrefix, time.Now().Format("2006/01"), uuid.NewString()+ext)
}

// ObjectNameFromURL 从各后端生成的访问地址中还原对象名，非本服务上传的地址返回空串
func ObjectNameFromURL(fileURL string) string {
	i := strings.Index(fileURL, objectPrefix)
	if i < 0 {
		return ""
	}
	return fileURL[i:]
}

// Remove 删除已上传对象，失败只记日志，不影响已提交的数据库变更
func (s *StorageService) Remove(ctx context.Context, objectName string) {
	if objectName == "" {
		return
	}
	if err := s.Provider.Delete(ctx, objectName); err != nil {
		logger.Log.Warn("Failed to delete stored object", zap.String("object", objectName), zap.Error(err))
	}
}

// StoreContentFile 先落临时文件校验类型，视频探测时长后再交给存储后端
func (s *StorageService) StoreContentFile(ctx context.Context, fh *multipart.FileHeader) (*StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, util.AllowedContentMimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidContent, err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp("", "lms-upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	stored := &StoredFile{MimeType: mimeType}
	if util.IsVideo(mimeType) && s.Probe != nil {
		duration, err := s.Probe(tmp.Name())
		if err != nil {
			// 时长只是展示信息，探测失败不影响上传
			logger.Log.Warn("Failed to probe video duration", zap.String("file", fh.Filename), zap.Error(err))
		} else {
			stored.DurationSeconds = duration
		}
	}

	name := objectName(fh.Filename)
	url, err := s.Provider.PutFile(ctx, name, tmp.Name(), mimeType)
	if err != nil {
		return nil, err
	}
	stored.URL = url
	stored.ObjectName = name
	return stored, nil
}
