// Package upload stores submitted files (applicant photo and supporting
// document) on local disk. Serving the raw files back out is handled
// elsewhere; this package only produces stable references for the
// application record.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes uploads under a single directory. Filenames carry the upload
// kind, the owning subject, and a random component so resubmissions never
// clobber files an older record may still reference.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save persists one upload and returns its reference.
func (s *Store) Save(ctx context.Context, prefix, uid, filename string, r io.Reader) (string, error) {
	if uid == "" || uid != filepath.Base(uid) {
		return "", fmt.Errorf("unsafe upload key %q", uid)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := sanitizeExt(filepath.Ext(filename))
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	name := fmt.Sprintf("%s_%s_%s%s", prefix, uid, random, ext)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return filepath.ToSlash(path), nil
}

// sanitizeExt keeps only simple extensions; anything suspicious is dropped
// rather than trusted.
func sanitizeExt(ext string) string {
	if ext == "" || strings.ContainsAny(ext, `/\`) || len(ext) > 10 {
		return ""
	}
	return strings.ToLower(ext)
}
