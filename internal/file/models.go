package file

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"time"
	"unicode/utf8"
)

// MaxLabelLength and MaxFilePathLength mirror the files table column sizes.
const (
	MaxLabelLength    = 255
	MaxFilePathLength = 255
)

// Record is one uploaded document as tracked by the admin panel.
//
// filePath and fileSize belong to the upload collaborator (Uploader); createdAt and
// updatedAt belong to the data-access boundary, except that SetFile refreshes
// updatedAt whenever a replacement file is attached.
type Record struct {
	id        int64
	filePath  string
	fileSize  *int64
	label     string
	createdAt time.Time
	updatedAt time.Time

	file  *Upload
	clock func() time.Time
}

// ID returns the store-assigned identifier, or 0 before the first save.
func (r *Record) ID() int64 { return r.id }

// FilePath returns the relative storage path of the current document.
func (r *Record) FilePath() string { return r.filePath }

// FileSize returns the byte length of the stored document, if known.
func (r *Record) FileSize() *int64 {
	if r.fileSize == nil {
		return nil
	}
	size := *r.fileSize
	return &size
}

// Label returns the human readable name.
func (r *Record) Label() string { return r.label }

// CreatedAt returns when the record was first persisted.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the record or its file last changed.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// File returns the upload attached during the current operation, if any. It is never persisted.
func (r *Record) File() *Upload { return r.file }

// SetLabel stores value verbatim, whitespace included. Only the empty string is rejected.
func (r *Record) SetLabel(value string) error {
	if value == "" {
		return ErrLabelRequired
	}
	if utf8.RuneCountInString(value) > MaxLabelLength {
		return ErrLabelTooLong
	}
	r.label = value
	return nil
}

// SetFile attaches newly uploaded content. A nil upload is a no-op. A non-nil upload
// always advances updatedAt, even when filePath and fileSize are unchanged, and the
// returned value reports whether the record changed.
func (r *Record) SetFile(upload *Upload) bool {
	r.file = upload
	if upload == nil {
		return false
	}
	r.updatedAt = nextTimestamp(r.updatedAt, r.now())
	return true
}

// SetFilePath is called by the upload collaborator once the content is stored.
func (r *Record) SetFilePath(path string) { r.filePath = path }

// SetFileSize is called by the upload collaborator alongside SetFilePath.
func (r *Record) SetFileSize(size *int64) {
	if size == nil {
		r.fileSize = nil
		return
	}
	v := *size
	r.fileSize = &v
}

// String returns the file path, which is how records are shown in textual contexts.
func (r *Record) String() string { return r.filePath }

func (r *Record) now() time.Time {
	if r.clock != nil {
		return r.clock()
	}
	return time.Now()
}

type recordJSON struct {
	ID        int64     `json:"id"`
	FilePath  string    `json:"file_path"`
	FileSize  *int64    `json:"file_size"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON exposes the persisted columns.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:        r.id,
		FilePath:  r.filePath,
		FileSize:  r.fileSize,
		Label:     r.label,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	})
}

// nextTimestamp returns now at database precision, moved past prev when the clock has not advanced.
func nextTimestamp(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !prev.IsZero() && !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

// Upload references newly uploaded content that has not been stored yet.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

// NewUpload describes content readable through open.
func NewUpload(filename, contentType string, size int64, open func() (io.ReadCloser, error)) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		open:        open,
	}
}

// UploadFromHeader adapts a multipart form file.
func UploadFromHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil {
		return nil
	}
	return NewUpload(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

// Open returns a reader over the uploaded content.
func (u *Upload) Open() (io.ReadCloser, error) {
	if u.open == nil {
		return nil, ErrFileRequired
	}
	return u.open()
}
