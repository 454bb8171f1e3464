// Package verification owns the verification artifact: a QR code image whose
// payload is the canonical verification URL for an application, persisted at
// a location keyed solely by the subject identifier.
package verification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/singleflight"
)

// VerifyURL is the canonical payload encoded into every artifact. The
// convention {baseURL}/verify/{uid} is fixed: previously issued artifacts
// stay valid only as long as this never changes.
func VerifyURL(baseURL, uid string) string {
	return strings.TrimRight(baseURL, "/") + "/verify/" + uid
}

const qrSize = 256

// Generator encodes verification URLs into QR PNGs on disk.
type Generator struct {
	baseURL string
	dir     string
	group   singleflight.Group
}

func NewGenerator(baseURL, dir string) *Generator {
	return &Generator{baseURL: baseURL, dir: dir}
}

// Generate writes the artifact for uid and returns its reference. The target
// path is a pure function of uid, so regeneration overwrites in place and
// concurrent calls for the same uid are collapsed into one write; content is
// deterministic, so last-writer-wins is harmless.
func (g *Generator) Generate(ctx context.Context, uid string) (string, error) {
	if uid == "" || uid != filepath.Base(uid) {
		return "", fmt.Errorf("unsafe artifact key %q", uid)
	}

	ref, err, _ := g.group.Do(uid, func() (any, error) {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
		path := filepath.Join(g.dir, uid+".png")
		if err := qrcode.WriteFile(VerifyURL(g.baseURL, uid), qrcode.Medium, qrSize, path); err != nil {
			return nil, fmt.Errorf("write artifact: %w", err)
		}
		return filepath.ToSlash(path), nil
	})
	if err != nil {
		return "", err
	}
	return ref.(string), nil
}
