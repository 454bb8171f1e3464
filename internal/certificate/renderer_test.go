package certificate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civreg/internal/application/models"
	"civreg/internal/verification"
)

func approvedApplication(artifactRef string) *models.Application {
	return &models.Application{
		UID:         "u1",
		FullName:    "Ada Lovelace",
		DOB:         "1815-12-10",
		Address:     "12 St James's Square, London",
		Status:      models.StatusApproved,
		ArtifactRef: artifactRef,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestRender(t *testing.T) {
	t.Run("produces a PDF with the artifact embedded", func(t *testing.T) {
		dir := t.TempDir()
		gen := verification.NewGenerator("https://civreg.example", dir)
		ref, err := gen.Generate(context.Background(), "u1")
		require.NoError(t, err)

		doc, err := NewRenderer().Render(approvedApplication(ref))
		require.NoError(t, err)
		require.Greater(t, len(doc), 4)
		assert.Equal(t, "%PDF", string(doc[:4]))
	})

	t.Run("missing artifact file degrades instead of failing", func(t *testing.T) {
		ref := filepath.Join(t.TempDir(), "gone.png")

		doc, err := NewRenderer().Render(approvedApplication(ref))
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(doc[:4]))
	})

	t.Run("renders without an artifact reference", func(t *testing.T) {
		doc, err := NewRenderer().Render(approvedApplication(""))
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(doc[:4]))
	})
}
