package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abduss/docadmin/internal/config"
	"github.com/abduss/docadmin/internal/metrics"
	"go.uber.org/zap"
)

type recordStore interface {
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Delete(ctx context.Context, id int64) (*Record, error)
}

type pathInvalidator interface {
	Invalidate(filePath string)
}

// Service implements the admin use cases for document records.
type Service struct {
	repo     recordStore
	uploader *Uploader
	cleanup  bool
	links    pathInvalidator
	observe  func(size int64, replaced bool)
	log      *zap.Logger
	nowFunc  func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log.Named("file") }
}

// WithLinkInvalidator registers a cache to notify when a stored path goes away.
func WithLinkInvalidator(links pathInvalidator) Option {
	return func(s *Service) { s.links = links }
}

// WithUploadObserver replaces the metrics hook called once a stored upload has been saved.
func WithUploadObserver(observe func(size int64, replaced bool)) Option {
	return func(s *Service) { s.observe = observe }
}

// NewService constructs a file service.
func NewService(repo recordStore, uploader *Uploader, cfg config.UploadConfig, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		uploader: uploader,
		cleanup:  cfg.Cleanup,
		observe:  metrics.ObserveUpload,
		log:      zap.NewNop(),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the fields of the "new" form.
type CreateInput struct {
	Label  string
	Upload *Upload
}

// UpdateInput carries the fields of the "edit" form. Nil fields are left untouched.
type UpdateInput struct {
	Label  *string
	Upload *Upload
}

// Create stores the upload and persists a new record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	rec := &Record{clock: s.nowFunc}
	if err := rec.SetLabel(in.Label); err != nil {
		return nil, err
	}
	if in.Upload == nil {
		return nil, ErrFileRequired
	}

	if _, err := s.uploader.Store(ctx, rec, in.Upload); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		s.discard(ctx, rec.FilePath())
		return nil, err
	}
	s.observeUpload(rec, false)

	s.log.Info("file record created",
		zap.Int64("id", rec.ID()),
		zap.String("file_path", rec.FilePath()),
		zap.Int64p("file_size", rec.FileSize()),
	)
	return rec, nil
}

// Update applies the edit form. The record is saved only when the label changed or a
// replacement file was stored; otherwise it is returned as loaded.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.clock = s.nowFunc

	dirty := false
	if in.Label != nil && *in.Label != rec.Label() {
		if err := rec.SetLabel(*in.Label); err != nil {
			return nil, err
		}
		dirty = true
	}

	previousPath := rec.FilePath()
	replaced := false
	if in.Upload != nil {
		changed, err := s.uploader.Store(ctx, rec, in.Upload)
		if err != nil {
			return nil, err
		}
		replaced = changed
		dirty = dirty || changed
	}

	if !dirty {
		return rec, nil
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		if replaced {
			s.discard(ctx, rec.FilePath())
		}
		return nil, err
	}

	if replaced {
		s.observeUpload(rec, true)
		s.log.Info("file replaced",
			zap.Int64("id", rec.ID()),
			zap.String("previous_path", previousPath),
			zap.String("file_path", rec.FilePath()),
		)
		if s.cleanup && previousPath != rec.FilePath() {
			s.release(ctx, previousPath)
		}
	}
	return rec, nil
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// List returns every record, newest first.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.repo.List(ctx)
}

// Delete removes the record. The stored object is kept unless cleanup is enabled.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.log.Info("file record deleted", zap.Int64("id", id), zap.String("file_path", rec.FilePath()))
	if s.cleanup {
		s.release(ctx, rec.FilePath())
	}
	return nil
}

// Open returns the record and a reader over its stored content.
func (s *Service) Open(ctx context.Context, id int64) (*Record, io.ReadCloser, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.FilePath() == "" {
		return nil, nil, ErrFileNotFound
	}

	reader, err := s.uploader.Open(ctx, rec.FilePath())
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("open document %d: %w", id, err)
	}
	return rec, reader, nil
}

func (s *Service) observeUpload(rec *Record, replaced bool) {
	var size int64
	if fs := rec.FileSize(); fs != nil {
		size = *fs
	}
	s.observe(size, replaced)
}

// discard removes an object stored during a failed operation.
func (s *Service) discard(ctx context.Context, filePath string) {
	if err := s.uploader.Remove(ctx, filePath); err != nil {
		s.log.Warn("discard stored object", zap.String("file_path", filePath), zap.Error(err))
	}
}

// release removes an object no longer referenced by any record.
func (s *Service) release(ctx context.Context, filePath string) {
	if s.links != nil {
		s.links.Invalidate(filePath)
	}
	if err := s.uploader.Remove(ctx, filePath); err != nil {
		s.log.Warn("remove released object", zap.String("file_path", filePath), zap.Error(err))
	}
}
