// Package objstore stores media files (demo assets, logos, documents)
// in an S3-compatible bucket.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vigneshgurumohan/agents-store/internal/config"
)

// MaxUploadSize caps a single upload at 50 MiB.
const MaxUploadSize = 50 << 20

// PresignExpiry is the lifetime of presigned download URLs.
const PresignExpiry = 3600 * time.Second

// Folder types accepted by the upload API, each mapped to its storage
// prefix.
var folderPrefixes = map[string]string{
	"mou":            "documents/mou",
	"profile_images": "images/profile",
	"agent_docs":     "documents/agents",
	"demo_assets":    "assets/demo",
	"deployments":    "assets/deployments",
}

// Extension allowlist, lowercased with the dot.
var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".md": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".mp4": true, ".avi": true, ".mov": true,
}

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("objstore: not configured")

// Store wraps an S3-compatible client for one bucket.
type Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// New builds a Store from settings. A nil Store (no bucket configured)
// is valid and fails every call with ErrDisabled.
func New(cfg config.S3Settings) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/")}, nil
}

// Enabled reports whether uploads are configured.
func (s *Store) Enabled() bool { return s != nil && s.client != nil }

// ValidateFolder checks the upload folder type against the allowlist.
func ValidateFolder(folder string) error {
	if _, ok := folderPrefixes[folder]; !ok {
		return fmt.Errorf("objstore: unknown folder %q", folder)
	}
	return nil
}

// ValidateFile checks extension and size limits before any bytes move.
func ValidateFile(filename string, size int64) error {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("objstore: file type %q not allowed", ext)
	}
	if size > MaxUploadSize {
		return fmt.Errorf("objstore: file exceeds %d byte limit", MaxUploadSize)
	}
	return nil
}

// ObjectKey builds the storage key: the folder's prefix, an optional
// user segment, then timestamp_shortid.ext.
func ObjectKey(folder, user, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102_150405"), short, ext)
	prefix, ok := folderPrefixes[folder]
	if !ok {
		prefix = "uploads"
	}
	return path.Join(prefix, user, name)
}

// Put uploads r under key and returns the object URL.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("objstore: put %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Presign returns a time-limited download URL for key.
func (s *Store) Presign(ctx context.Context, key string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("objstore: presign %s: %w", key, err)
	}
	return u.String(), nil
}

// URL returns the public URL for key.
func (s *Store) URL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return s.client.EndpointURL().String() + "/" + path.Join(s.bucket, key)
}

// KeyFromURL inverts URL: it extracts the object key from a public URL
// produced by this store, for delete-by-URL requests.
func (s *Store) KeyFromURL(rawurl string) (string, error) {
	if s.publicBaseURL != "" {
		if k, ok := strings.CutPrefix(rawurl, s.publicBaseURL+"/"); ok && k != "" {
			return k, nil
		}
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("objstore: bad url %q: %w", rawurl, err)
	}
	p := strings.TrimPrefix(u.Path, "/")
	// Path-style URLs carry the bucket as the first segment;
	// virtual-hosted URLs carry it in the host.
	if k, ok := strings.CutPrefix(p, s.bucket+"/"); ok {
		p = k
	}
	if p == "" {
		return "", fmt.Errorf("objstore: no key in url %q", rawurl)
	}
	return p, nil
}
