package file

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// fileRow maps the files table for gorm. Automatic timestamps are disabled; the
// repository assigns them.
type fileRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FilePath  string    `gorm:"column:file_path;size:255;not null;uniqueIndex:files_file_path_key"`
	FileSize  *int64    `gorm:"column:file_size"`
	Label     *string   `gorm:"column:label;size:255"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (fileRow) TableName() string {
	return "files"
}

func (row fileRow) record() *Record {
	rec := &Record{
		id:        row.ID,
		filePath:  row.FilePath,
		fileSize:  row.FileSize,
		createdAt: row.CreatedAt.UTC(),
		updatedAt: row.UpdatedAt.UTC(),
	}
	if row.Label != nil {
		rec.label = *row.Label
	}
	return rec
}

// GormRepository stores records through gorm, used with the embedded SQLite backend.
type GormRepository struct {
	db      *gorm.DB
	nowFunc func() time.Time
}

// NewGormRepository wraps an open gorm handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db, nowFunc: time.Now}
}

// AutoMigrate creates or updates the files table.
func (r *GormRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&fileRow{}); err != nil {
		return fmt.Errorf("migrate files table: %w", err)
	}
	return nil
}

// Insert persists a new record with identical createdAt and updatedAt.
func (r *GormRepository) Insert(ctx context.Context, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	stamp := nextTimestamp(time.Time{}, r.nowFunc())
	row := fileRow{
		FilePath:  rec.filePath,
		FileSize:  rec.fileSize,
		Label:     nullableLabel(rec.label),
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrFilePathConflict
		}
		return fmt.Errorf("insert file record: %w", err)
	}

	rec.id = row.ID
	rec.createdAt = stamp
	rec.updatedAt = stamp
	return nil
}

// Update saves label, path and size and advances updatedAt.
func (r *GormRepository) Update(ctx context.Context, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	stamp := nextTimestamp(rec.updatedAt, r.nowFunc())

	res := r.db.WithContext(ctx).
		Model(&fileRow{}).
		Where("id = ?", rec.id).
		Updates(map[string]any{
			"file_path":  rec.filePath,
			"file_size":  rec.fileSize,
			"label":      nullableLabel(rec.label),
			"updated_at": stamp,
		})
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return ErrFilePathConflict
		}
		return fmt.Errorf("update file record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFileNotFound
	}

	rec.updatedAt = stamp
	return nil
}

// Get fetches a single record.
func (r *GormRepository) Get(ctx context.Context, id int64) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var row fileRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("get file record: %w", err)
	}
	return row.record(), nil
}

// List returns every record, newest first.
func (r *GormRepository) List(ctx context.Context) ([]*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var rows []fileRow
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// Delete removes a record and returns it.
func (r *GormRepository) Delete(ctx context.Context, id int64) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var row fileRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		return tx.Delete(&fileRow{}, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("delete file record: %w", err)
	}
	return row.record(), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
