package file

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func textUpload(name, body string) *Upload {
	return NewUpload(name, "text/plain", int64(len(body)), func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	})
}

func TestSetLabelStoresValueVerbatim(t *testing.T) {
	for _, label := range []string{"Invoice", "  padded  ", "Facture n°42", strings.Repeat("é", MaxLabelLength)} {
		var rec Record
		require.NoError(t, rec.SetLabel(label))
		assert.Equal(t, label, rec.Label())
	}
}

func TestSetLabelRejectsEmptyAndOversized(t *testing.T) {
	var rec Record
	require.NoError(t, rec.SetLabel("kept"))

	assert.ErrorIs(t, rec.SetLabel(""), ErrLabelRequired)
	assert.ErrorIs(t, rec.SetLabel(strings.Repeat("x", MaxLabelLength+1)), ErrLabelTooLong)
	assert.Equal(t, "kept", rec.Label())
}

func TestSetLabelStoresWhitespaceVerbatim(t *testing.T) {
	for _, value := range []string{" ", "\t", " \t\n", "  Invoice  "} {
		var rec Record
		require.NoError(t, rec.SetLabel(value))
		assert.Equal(t, value, rec.Label())
	}
}

func TestSetFileSetsUpdatedAtWhenUnset(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{clock: fixedClock(now)}

	changed := rec.SetFile(textUpload("a.txt", "hello"))

	assert.True(t, changed)
	assert.Equal(t, now, rec.UpdatedAt())
	assert.NotNil(t, rec.File())
}

func TestSetFileAdvancesUpdatedAtEvenWithSamePathAndSize(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	size := int64(5)
	rec := Record{filePath: "files/a.txt", fileSize: &size, updatedAt: now, clock: fixedClock(now)}

	prev := rec.UpdatedAt()
	for i := 0; i < 3; i++ {
		require.True(t, rec.SetFile(textUpload("a.txt", "hello")))
		assert.True(t, rec.UpdatedAt().After(prev), "updatedAt must strictly advance")
		prev = rec.UpdatedAt()
	}
	assert.Equal(t, "files/a.txt", rec.FilePath())
	assert.Equal(t, int64(5), *rec.FileSize())
}

func TestSetFileNilLeavesUpdatedAt(t *testing.T) {
	then := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := Record{updatedAt: then, clock: fixedClock(then.Add(time.Hour))}

	assert.False(t, rec.SetFile(nil))
	assert.Equal(t, then, rec.UpdatedAt())
	assert.Nil(t, rec.File())

	var empty Record
	assert.False(t, empty.SetFile(nil))
	assert.True(t, empty.UpdatedAt().IsZero())
}

func TestStringReturnsFilePath(t *testing.T) {
	var rec Record
	assert.Equal(t, "", rec.String())

	rec.SetFilePath("files/invoice-1.pdf")
	assert.Equal(t, "files/invoice-1.pdf", rec.String())
	assert.Equal(t, rec.FilePath(), rec.String())
}

func TestFileSizeReturnsCopy(t *testing.T) {
	var rec Record
	assert.Nil(t, rec.FileSize())

	size := int64(1024)
	rec.SetFileSize(&size)
	size = 1

	got := rec.FileSize()
	require.NotNil(t, got)
	assert.Equal(t, int64(1024), *got)

	*got = 7
	assert.Equal(t, int64(1024), *rec.FileSize())
}

func TestNextTimestamp(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base, nextTimestamp(time.Time{}, base.Add(300*time.Nanosecond)))
	assert.Equal(t, base.Add(time.Second), nextTimestamp(base, base.Add(time.Second)))
	assert.Equal(t, base.Add(time.Microsecond), nextTimestamp(base, base))
	assert.Equal(t, base.Add(time.Microsecond), nextTimestamp(base, base.Add(-time.Minute)))
}

func TestRecordMarshalJSON(t *testing.T) {
	size := int64(3)
	rec := Record{id: 7, filePath: "files/a.txt", fileSize: &size, label: "A"}

	raw, err := json.Marshal(&rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(raw)).Decode(&decoded))
	assert.Equal(t, float64(7), decoded["id"])
	assert.Equal(t, "files/a.txt", decoded["file_path"])
	assert.Equal(t, float64(3), decoded["file_size"])
	assert.Equal(t, "A", decoded["label"])
}

func TestUploadFromNilHeader(t *testing.T) {
	assert.Nil(t, UploadFromHeader(nil))
}
