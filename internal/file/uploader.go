package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/abduss/docadmin/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const (
	defaultContentType = "application/octet-stream"
	maxSlugLength      = 64
	maxExtLength       = 16
)

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Uploader stores document bytes in the object store, names them and writes the
// resulting path and size into the record.
type Uploader struct {
	store       objectStore
	bucket      string
	prefix      string
	maxFileSize int64
	newID       func() uuid.UUID
}

// NewUploader constructs an upload collaborator writing into bucket.
func NewUploader(store objectStore, bucket string, cfg config.UploadConfig) *Uploader {
	return &Uploader{
		store:       store,
		bucket:      bucket,
		prefix:      strings.Trim(cfg.PathPrefix, "/"),
		maxFileSize: cfg.MaxFileSize,
		newID:       uuid.New,
	}
}

// Store saves upload under a freshly generated path, records path and size on rec
// and attaches the upload through rec.SetFile. The returned flag is SetFile's change signal.
func (u *Uploader) Store(ctx context.Context, rec *Record, upload *Upload) (bool, error) {
	if upload == nil {
		return rec.SetFile(nil), nil
	}
	if u.maxFileSize > 0 && upload.Size > u.maxFileSize {
		return false, ErrFileTooLarge
	}

	src, err := upload.Open()
	if err != nil {
		return false, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	objectName := u.objectName(upload.Filename)
	counter := &countingReader{r: src}
	var reader io.Reader = counter
	if u.maxFileSize > 0 {
		reader = io.LimitReader(counter, u.maxFileSize+1)
	}

	objectSize := upload.Size
	if objectSize <= 0 {
		objectSize = -1
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	info, err := u.store.PutObject(ctx, u.bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return false, fmt.Errorf("store object: %w", err)
	}

	size := info.Size
	if size <= 0 {
		size = counter.n
	}
	if u.maxFileSize > 0 && size > u.maxFileSize {
		_ = u.store.RemoveObject(ctx, u.bucket, objectName, minio.RemoveObjectOptions{})
		return false, ErrFileTooLarge
	}

	rec.SetFilePath(objectName)
	rec.SetFileSize(&size)
	return rec.SetFile(upload), nil
}

// Open streams the stored object at filePath.
func (u *Uploader) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	obj, err := u.store.GetObject(ctx, u.bucket, filePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	return obj, nil
}

// Remove deletes the stored object at filePath.
func (u *Uploader) Remove(ctx context.Context, filePath string) error {
	if filePath == "" {
		return nil
	}
	if err := u.store.RemoveObject(ctx, u.bucket, filePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// objectName builds "<prefix>/<slug>-<uuid><ext>" from the original filename.
func (u *Uploader) objectName(original string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if len(ext) > maxExtLength || !isSafeExt(ext) {
		ext = ""
		stem = base
	}
	slug := slugify(stem)

	name := fmt.Sprintf("%s-%s%s", slug, u.newID().String(), ext)
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "file"
	}
	return slug
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
