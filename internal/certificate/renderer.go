// Package certificate renders the downloadable certificate document for an
// approved application: a single A4 page with the applicant's fields and the
// embedded verification QR code. Rendering is synchronous and stateless;
// output is never cached so the document always reflects current state.
package certificate

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"

	"civreg/internal/application/models"
	dErrors "civreg/pkg/domain-errors"
)

// Layout constants in points on an A4 page.
const (
	textX       = 50.0
	textY       = 42.0
	lineHeight  = 14.0
	qrX         = 50.0
	qrY         = 128.0
	qrSide      = 150.0
	bodyFont    = "Helvetica"
	bodyFontPts = 12.0
)

// Renderer lays out certificate documents.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the complete PDF for an application. The verification
// artifact is embedded when its file exists; a missing file degrades to a
// document without the image rather than failing the render.
func (r *Renderer) Render(app *models.Application) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont(bodyFont, "", bodyFontPts)

	lines := []string{
		"Application ID: " + app.UID,
		"Full Name: " + app.FullName,
		"Date of Birth: " + app.DOB,
		"Address: " + app.Address,
		"Status: " + app.Status.Display(),
	}
	y := textY
	for _, line := range lines {
		pdf.Text(textX, y, line)
		y += lineHeight
	}

	if app.ArtifactRef != "" {
		if _, err := os.Stat(app.ArtifactRef); err == nil {
			pdf.ImageOptions(app.ArtifactRef, qrX, qrY, qrSide, qrSide,
				false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIO, "failed to render certificate")
	}
	return buf.Bytes(), nil
}
