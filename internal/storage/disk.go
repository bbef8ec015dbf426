package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrInvalidFilename = errors.New("invalid filename")

// Disk stores uploaded blobs under baseDir/<room id>/<uuid>-<name>.
// Callers keep the returned relative path in the metadata row.
type Disk struct {
	baseDir string
}

func NewDisk(baseDir string) (*Disk, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Disk{baseDir: baseDir}, nil
}

type SavedBlob struct {
	StoredName  string // <uuid>-<sanitized original name>
	Path        string // relative to the store's base dir
	ContentType string // sniffed from content, not the client header
	SHA256      string
	SizeBytes   int64
}

func (d *Disk) Save(roomID, originalName string, src io.Reader) (*SavedBlob, error) {
	name := filepath.Base(originalName)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, ErrInvalidFilename
	}

	storedName := fmt.Sprintf("%s-%s", uuid.NewString(), sanitizePathComponent(name))
	roomDir := filepath.Join(d.baseDir, sanitizePathComponent(roomID))
	if err := os.MkdirAll(roomDir, 0o755); err != nil {
		return nil, fmt.Errorf("create room dir: %w", err)
	}

	absPath := filepath.Join(roomDir, storedName)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("write blob: %w", err)
	}

	mt, err := mimetype.DetectFile(absPath)
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("detect content type: %w", err)
	}

	return &SavedBlob{
		StoredName:  storedName,
		Path:        filepath.Join(sanitizePathComponent(roomID), storedName),
		ContentType: mt.String(),
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes:   written,
	}, nil
}

// Open returns the blob for reading; the caller closes it.
func (d *Disk) Open(relPath string) (io.ReadSeekCloser, error) {
	return os.Open(filepath.Join(d.baseDir, filepath.Clean(relPath)))
}

func (d *Disk) Remove(relPath string) error {
	return os.Remove(filepath.Join(d.baseDir, filepath.Clean(relPath)))
}

func sanitizePathComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "..", "_")
	return s
}
