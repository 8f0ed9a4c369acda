// Package certpdf renders course completion certificates as PDF documents.
package certpdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Certificate holds the fields printed on a certificate.
type Certificate struct {
	StudentName   string
	CourseTitle   string
	CertificateNo string
	Issuer        string
	IssuedAt      time.Time
}

// Renderer lays out certificates on a landscape A4 page.
type Renderer struct {
	issuer string
}

// NewRenderer builds a renderer that signs certificates with the given issuer name.
func NewRenderer(issuer string) *Renderer {
	if strings.TrimSpace(issuer) == "" {
		issuer = "GEMA Academy"
	}
	return &Renderer{issuer: issuer}
}

// Render produces the PDF bytes. Identical input yields identical output.
func (r *Renderer) Render(cert Certificate) ([]byte, error) {
	issuer := cert.Issuer
	if issuer == "" {
		issuer = r.issuer
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(cert.IssuedAt)
	pdf.SetModificationDate(cert.IssuedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor(issuer, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, width-20, height-20, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(14, 14, width-28, height-28, "D")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	contentWidth := width - 40

	pdf.SetY(38)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(contentWidth, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(contentWidth, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(contentWidth, 14, tr(cert.StudentName), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(contentWidth, 8, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(contentWidth, 10, tr(cert.CourseTitle), "", "C", false)

	pdf.SetY(height - 52)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentWidth/2, 7, "Issued on "+cert.IssuedAt.UTC().Format("January 2, 2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWidth/2, 7, tr(issuer), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(contentWidth, 7, "Certificate No. "+cert.CertificateNo, "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out certificate: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	return buf.Bytes(), nil
}
