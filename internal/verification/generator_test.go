package verification

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyURL(t *testing.T) {
	assert.Equal(t, "https://civreg.example/verify/u1", VerifyURL("https://civreg.example", "u1"))
	assert.Equal(t, "https://civreg.example/verify/u1", VerifyURL("https://civreg.example/", "u1"),
		"trailing slash must not double up")
}

func TestGenerate(t *testing.T) {
	t.Run("writes a PNG keyed by uid", func(t *testing.T) {
		dir := t.TempDir()
		gen := NewGenerator("https://civreg.example", dir)

		ref, err := gen.Generate(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "u1.png")), ref)

		data, err := os.ReadFile(filepath.Join(dir, "u1.png"))
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
	})

	t.Run("regeneration overwrites in place", func(t *testing.T) {
		dir := t.TempDir()
		gen := NewGenerator("https://civreg.example", dir)

		first, err := gen.Generate(context.Background(), "u1")
		require.NoError(t, err)
		second, err := gen.Generate(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("creates the artifact directory on demand", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "qr_codes")
		gen := NewGenerator("https://civreg.example", dir)

		_, err := gen.Generate(context.Background(), "u1")
		require.NoError(t, err)
	})

	t.Run("rejects path-traversing uids", func(t *testing.T) {
		gen := NewGenerator("https://civreg.example", t.TempDir())

		for _, uid := range []string{"", "../escape", "a/b"} {
			_, err := gen.Generate(context.Background(), uid)
			require.Error(t, err, "uid %q must be rejected", uid)
		}
	})

	t.Run("concurrent generation for one uid is safe", func(t *testing.T) {
		dir := t.TempDir()
		gen := NewGenerator("https://civreg.example", dir)

		var wg sync.WaitGroup
		refs := make([]string, 8)
		for i := range refs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ref, err := gen.Generate(context.Background(), "u1")
				assert.NoError(t, err)
				refs[i] = ref
			}(i)
		}
		wg.Wait()

		for _, ref := range refs {
			assert.Equal(t, refs[0], ref)
		}
	})
}
