// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/config"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
)

// FileStorage is the image store used by the catalog and user services.
// Upload returns a public URL; delete takes that URL back.
type FileStorage interface {
	UploadFile(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error)
	DeleteFileByURL(ctx context.Context, url string) error
}

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	ImagesOnly   bool
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Files go to the local upload directory
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// UsesS3 reports whether uploads go to the bucket rather than local disk.
func (s *StorageService) UsesS3() bool {
	return s.s3Client != nil
}

func (s *StorageService) UploadFile(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, apperrors.Invalid(i18n.KeyFileTooLarge, options.MaxSize/(1024*1024))
	}

	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperrors.Invalid(i18n.KeyFileInvalidType)
		}
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.Internal(err, i18n.KeyFileUploadFailed)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Internal(err, i18n.KeyFileUploadFailed)
	}

	return s.Put(ctx, fileBytes, header.Filename, options)
}

// Put stores already-read bytes under a generated key.
func (s *StorageService) Put(ctx context.Context, fileBytes []byte, originalName string, options UploadOptions) (*UploadResult, error) {
	if options.ImagesOnly && !isValidImageType(fileBytes) {
		return nil, apperrors.Invalid(i18n.KeyFileInvalidType)
	}

	key := s.generateFileName(originalName, options.Folder)
	contentType := http.DetectContentType(fileBytes)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, contentType)
	}
	return s.uploadToLocal(fileBytes, key, contentType)
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "s3 put"), i18n.KeyFileUploadFailed)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.config.Server.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.Internal(err, i18n.KeyFileUploadFailed)
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return nil, apperrors.Internal(err, i18n.KeyFileUploadFailed)
	}

	return &UploadResult{
		URL:      s.localURLPrefix() + key,
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// DeleteFileByURL removes a file previously returned by UploadFile. URLs that
// this store did not issue are ignored.
func (s *StorageService) DeleteFileByURL(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		logrus.WithField("url", url).Debug("Skipping delete of foreign file URL")
		return nil
	}

	if s.s3Client == nil {
		path := filepath.Join(s.config.Server.UploadDir, filepath.FromSlash(key))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "delete local file %s", key)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "delete s3 object %s", key)
	}

	return nil
}

func (s *StorageService) keyFromURL(url string) (string, bool) {
	var prefixes []string
	if s.s3Client != nil {
		if s.config.AWS.CloudFrontURL != "" {
			prefixes = append(prefixes, strings.TrimSuffix(s.config.AWS.CloudFrontURL, "/")+"/")
		}
		prefixes = append(prefixes, s.getS3URL(""))
	} else {
		prefixes = append(prefixes, s.localURLPrefix())
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			key := strings.TrimPrefix(url, prefix)
			// keys never climb out of the upload root
			if key == "" || strings.Contains(key, "..") {
				return "", false
			}
			return key, true
		}
	}
	return "", false
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "products":
		return UploadOptions{
			Folder:       "products",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: imageExtensions,
			ImagesOnly:   true,
		}
	case "categories":
		return UploadOptions{
			Folder:       "categories",
			MaxSize:      2 * 1024 * 1024, // 2MB
			AllowedTypes: imageExtensions,
			ImagesOnly:   true,
		}
	case "avatars":
		return UploadOptions{
			Folder:       "avatars",
			MaxSize:      2 * 1024 * 1024, // 2MB
			AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp"},
			ImagesOnly:   true,
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: imageExtensions,
			ImagesOnly:   true,
		}
	}
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.New().String(), ext)

	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" && key != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func (s *StorageService) localURLPrefix() string {
	return strings.TrimSuffix(s.config.Server.PublicURL, "/") + "/uploads/"
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}

	// PNG
	if len(buffer) >= 8 && bytes.Equal(buffer[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		return true
	}

	// GIF
	if len(buffer) >= 6 && (string(buffer[:6]) == "GIF87a" || string(buffer[:6]) == "GIF89a") {
		return true
	}

	// WebP
	if len(buffer) >= 12 && string(buffer[:4]) == "RIFF" && string(buffer[8:12]) == "WEBP" {
		return true
	}

	return false
}
