package file

import "errors"

var (
	// ErrFileNotFound signals that the record could not be located.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
	// ErrFileRequired is returned when a record is created without content.
	ErrFileRequired = errors.New("file is required")
	// ErrLabelRequired is returned for an empty or blank label.
	ErrLabelRequired = errors.New("label is required")
	// ErrLabelTooLong is returned when the label exceeds the column size.
	ErrLabelTooLong = errors.New("label too long")
	// ErrFilePathConflict signals that another record already points at the same stored path.
	ErrFilePathConflict = errors.New("file path already in use")
)
