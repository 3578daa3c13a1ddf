// Package upload implements the file upload boundary: it accepts one
// binary blob, enforces a size ceiling and a MIME allow-list, infers the
// message kind from the detected type and stores the blob on disk under a
// unique name.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when the blob exceeds the size ceiling.
	ErrTooLarge = errors.New("file is too large")
	// ErrDisallowedType is returned for MIME types outside the allow-list.
	ErrDisallowedType = errors.New("file type is not allowed")
)

// allowedTypes is the MIME allow-list. Types are matched against the
// sniffed content type, never the client-declared one.
var allowedTypes = []string{
	// images
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	// audio
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/x-wav",
	"audio/ogg",
	"audio/webm",
	"video/webm",
	// documents
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"application/zip",
	"application/x-zip-compressed",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// File describes a stored upload.
type File struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Kind     string `json:"kind"`
}

// Service stores uploaded blobs under root/{images,files,audio}.
type Service struct {
	root     string
	maxBytes int64
}

// New creates the upload service and its directory tree.
func New(root string, maxBytes int64) (*Service, error) {
	for _, dir := range []string{"images", "files", "audio"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Service{root: root, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured size ceiling.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Save reads the blob, validates it and writes it to disk. originalName is
// the client-provided file name, kept for display and sanitized for the
// on-disk name.
func (s *Service) Save(originalName string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !allowed(mtype) {
		return nil, fmt.Errorf("%w: %s", ErrDisallowedType, mtype.String())
	}

	kind := inferKind(mtype.String())
	dir := kindDir(kind)
	name := uniqueName(originalName)

	dest := filepath.Join(s.root, dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &File{
		URL:      path.Join("/uploads", dir, name),
		Name:     originalName,
		Size:     int64(len(data)),
		MimeType: mtype.String(),
		Kind:     kind,
	}, nil
}

func allowed(mtype *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// inferKind maps the top-level MIME class to a message kind.
func inferKind(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	default:
		return "file"
	}
}

func kindDir(kind string) string {
	switch kind {
	case "image":
		return "images"
	case "audio":
		return "audio"
	default:
		return "files"
	}
}

// uniqueName builds a collision-free on-disk name from the sanitized
// original base name, a uuid and the original extension.
func uniqueName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	base = unsafeChars.ReplaceAllString(base, "_")
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "upload"
	}
	return base + "-" + uuid.NewString() + ext
}
