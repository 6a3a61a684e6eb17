package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const recordColumns = `id, file_path, file_size, label, created_at, updated_at`

// Repository stores records in PostgreSQL. Timestamps are assigned here rather than by
// database defaults or triggers.
type Repository struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, nowFunc: time.Now}
}

// Insert persists a new record, assigning its id and setting createdAt and updatedAt to the same instant.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	stamp := nextTimestamp(time.Time{}, r.nowFunc())

	query := `
INSERT INTO files (file_path, file_size, label, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
RETURNING id;`

	var id int64
	if err := r.pool.QueryRow(ctx, query, rec.filePath, rec.fileSize, nullableLabel(rec.label), stamp).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return ErrFilePathConflict
		}
		return fmt.Errorf("insert file record: %w", err)
	}

	rec.id = id
	rec.createdAt = stamp
	rec.updatedAt = stamp
	return nil
}

// Update saves label, path and size and advances updatedAt. createdAt is never written.
func (r *Repository) Update(ctx context.Context, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	stamp := nextTimestamp(rec.updatedAt, r.nowFunc())

	query := `
UPDATE files
SET file_path = $2, file_size = $3, label = $4, updated_at = $5
WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, rec.id, rec.filePath, rec.fileSize, nullableLabel(rec.label), stamp)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrFilePathConflict
		}
		return fmt.Errorf("update file record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}

	rec.updatedAt = stamp
	return nil
}

// Get fetches a single record.
func (r *Repository) Get(ctx context.Context, id int64) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM files WHERE id = $1;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("get file record: %w", err)
	}
	return rec, nil
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM files ORDER BY id DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return records, nil
}

// Delete removes a record and returns it.
func (r *Repository) Delete(ctx context.Context, id int64) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM files WHERE id = $1 RETURNING ` + recordColumns + `;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("delete file record: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec   Record
		label *string
	)
	if err := row.Scan(&rec.id, &rec.filePath, &rec.fileSize, &label, &rec.createdAt, &rec.updatedAt); err != nil {
		return nil, err
	}
	if label != nil {
		rec.label = *label
	}
	rec.createdAt = rec.createdAt.UTC()
	rec.updatedAt = rec.updatedAt.UTC()
	return &rec, nil
}

func nullableLabel(label string) *string {
	if label == "" {
		return nil
	}
	return &label
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
