package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/localmarkets/marketplace/internal/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type, allowed: jpg, jpeg, png, webp")
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
	ErrInvalidURL      = errors.New("url does not reference a stored object")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// File is one uploaded image as received from a multipart form.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

type Store struct {
	client        objectAPI
	bucket        string
	prefix        string
	publicBaseURL string
	maxBytes      int64
}

func NewStore(ctx context.Context, conf *appconfig.MediaConfig) (*Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
	}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig -> %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(client, conf), nil
}

func newStore(client objectAPI, conf *appconfig.MediaConfig) *Store {
	return &Store{
		client:        client,
		bucket:        conf.Bucket,
		prefix:        strings.Trim(conf.Prefix, "/"),
		publicBaseURL: strings.TrimRight(conf.PublicBaseURL, "/"),
		maxBytes:      conf.MaxUploadBytes,
	}
}

// Check rejects files the store would refuse before any upload starts.
func (s *Store) Check(f File) error {
	if _, err := contentType(f.Name); err != nil {
		return err
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return fmt.Errorf("%s: %w", f.Name, ErrTooLarge)
	}

	return nil
}

// Upload stores f under a fresh object id and returns its public URL.
func (s *Store) Upload(ctx context.Context, f File) (string, error) {
	if err := s.Check(f); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(f.Name))
	ct := allowedExtensions[ext]
	key := s.key(uuid.NewString() + ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentLength: aws.Int64(f.Size),
		ContentType:   aws.String(ct),
	})
	if err != nil {
		return "", fmt.Errorf("s.client.PutObject -> %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// Delete removes the object referenced by rawURL.
func (s *Store) Delete(ctx context.Context, rawURL string) error {
	id, err := ObjectIDFromURL(rawURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("s.client.DeleteObject -> %w", err)
	}

	return nil
}

func (s *Store) key(id string) string {
	if s.prefix == "" {
		return id
	}

	return s.prefix + "/" + id
}

// ObjectIDFromURL returns the last path segment of a media URL, which is the
// object id the store assigned at upload time.
func ObjectIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%q: %w", rawURL, ErrInvalidURL)
	}

	id := path.Base(strings.TrimRight(u.Path, "/"))
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("%q: %w", rawURL, ErrInvalidURL)
	}

	return id, nil
}

func contentType(name string) (string, error) {
	ct, ok := allowedExtensions[strings.ToLower(path.Ext(name))]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}

	return ct, nil
}
