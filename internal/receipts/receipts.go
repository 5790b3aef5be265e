// Package receipts hands out presigned S3 URLs for receipt images, so clients
// upload and download files directly from the bucket.
package receipts

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	apperrors "loipen-tracker/internal/errors"
)

// DefaultExpiry is how long a presigned URL stays valid.
const DefaultExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// Config addresses the receipt bucket. Endpoint is optional and points at an
// S3-compatible server such as MinIO.
type Config struct {
	Region       string
	Endpoint     string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Expiry       time.Duration
}

// Upload is a presigned PUT for a new receipt.
type Upload struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Presigner signs receipt URLs.
type Presigner struct {
	cfg Config
	now func() time.Time
}

// NewPresigner validates cfg and returns a presigner.
func NewPresigner(cfg Config) (*Presigner, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, apperrors.NewInvalidInputError("storage bucket", cfg.Bucket, "must not be empty")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	return &Presigner{cfg: cfg, now: time.Now}, nil
}

// Bucket returns the configured bucket name.
func (p *Presigner) Bucket() string {
	return p.cfg.Bucket
}

func (p *Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(p.cfg.Region)}
	if p.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.cfg.AccessKey, p.cfg.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
		}
		o.UsePathStyle = p.cfg.UsePathStyle
	})
	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for a new receipt of userID. The file name only
// contributes its extension.
func (p *Presigner) UploadURL(ctx context.Context, userID, fileName string) (*Upload, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewInvalidInputError("user id", userID, "is required")
	}
	ext := strings.ToLower(path.Ext(fileName))
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, apperrors.NewInvalidInputError("file name", fileName, "receipts must be JPEG, PNG, HEIC, WebP or PDF")
	}

	pc, err := p.client(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("load storage config", err)
	}

	now := p.now()
	key := StorageKey(userID, ext, now)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.cfg.Expiry))
	if err != nil {
		return nil, apperrors.NewStoreError("presign receipt upload", err)
	}

	return &Upload{
		Key:         key,
		URL:         req.URL,
		ContentType: contentType,
		ExpiresAt:   now.Add(p.cfg.Expiry),
	}, nil
}

// DownloadURL presigns a GET for key. Users may only read their own receipts.
func (p *Presigner) DownloadURL(ctx context.Context, userID, key string) (string, error) {
	if key == "" {
		return "", apperrors.NewInvalidInputError("key", key, "is required")
	}
	if !OwnedBy(key, userID) {
		return "", apperrors.NewPermissionError("download", "receipt "+key)
	}

	pc, err := p.client(ctx)
	if err != nil {
		return "", apperrors.NewStoreError("load storage config", err)
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.cfg.Expiry))
	if err != nil {
		return "", apperrors.NewStoreError("presign receipt download", err)
	}
	return req.URL, nil
}

// StorageKey builds "<user>/<unix millis>-<uuid><ext>".
func StorageKey(userID, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s%s", userID, now.UnixMilli(), uuid.NewString(), ext)
}

// OwnedBy reports whether key lies in userID's folder.
func OwnedBy(key, userID string) bool {
	if userID == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, userID+"/")
}
