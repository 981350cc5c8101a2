package certificate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/portalevent/portal-api/internal/domain"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws a landscape letter certificate. Output depends on fields only.
func (r *Renderer) Render(fields domain.CertificateFields) ([]byte, error) {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(fields.EventDate)
	pdf.SetModificationDate(fields.EventDate)
	pdf.SetTitle("Certificate "+fields.CertificateID, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, height := pdf.GetPageSize()

	pdf.SetLineWidth(4)
	pdf.Rect(24, 24, width-48, height-48, "D")

	pdf.SetY(110)
	pdf.SetFont("Helvetica", "B", 36)
	pdf.CellFormat(0, 44, "CERTIFICATE OF PARTICIPATION", "", 1, "C", false, 0, "")

	pdf.Ln(20)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 24, "This certificate is presented to", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 40, tr(strings.ToUpper(fields.FullName)), "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 24, "for participating in", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 30, tr(fields.EventTitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 22, fields.EventDate.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	pdf.SetY(520)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 16, tr("Certificate ID: "+fields.CertificateID), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.Output -> %w", err)
	}

	return buf.Bytes(), nil
}
