// Package storage persists uploaded resumes and extracts their text.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/ysam020/task-management-assessment/internal/domain"
)

// DefaultMaxFileSize is the upload limit used when none is configured (5 MiB).
const DefaultMaxFileSize int64 = 5 << 20

// allowedTypes maps accepted MIME types to the extension stored files get
// when the original name has none.
var allowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain": ".txt",
}

// FileStore saves a file and returns the URL it can be retrieved from.
type FileStore interface {
	Store(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Remove deletes a file saved under name. Missing files are not an error.
	Remove(ctx context.Context, name string) error
}

// NormalizeContentType strips parameters such as charset from a MIME type.
func NormalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Validate checks the MIME allow-list and the size limit.
func Validate(contentType string, size, maxSize int64) error {
	if _, ok := allowedTypes[NormalizeContentType(contentType)]; !ok {
		return fmt.Errorf("%w: got %q", domain.ErrUnsupportedFile, contentType)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", domain.ErrFileTooLarge, size, maxSize)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectName derives a unique, filesystem-safe name of the form
// <base>-<uuid><ext> from the uploaded file name.
func ObjectName(original, contentType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "resume"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	if ext == "" || unsafeChars.MatchString(ext) {
		ext = allowedTypes[NormalizeContentType(contentType)]
	}
	return base + "-" + uuid.NewString() + ext
}
