package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/legalvoice/api/internal/client"
)

const (
	pageMargin = 20.0
	lineHeight = 5.5
)

// PDFRenderer lays out document text on A4 pages.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Extension() string { return "pdf" }

// Render writes a case header followed by the document body. Lines written in
// capitals are treated as section headings.
func (r *PDFRenderer) Render(ctx context.Context, document string, meta client.CaseMeta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Legal Document "+meta.CaseID, true)
	pdf.SetAuthor(meta.UserName, true)
	pdf.SetCreator("Legal Voice AI", true)
	if !meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(meta.CreatedAt)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Case %s - page %d", meta.CaseID, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Legal Document", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, lineHeight, tr("Case ID: "+meta.CaseID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Name: "+meta.UserName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Email: "+meta.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, tr("Category: "+meta.Category), "", 1, "L", false, 0, "")
	if !meta.CreatedAt.IsZero() {
		pdf.CellFormat(0, lineHeight, "Created: "+meta.CreatedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, line := range strings.Split(document, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			pdf.Ln(lineHeight / 2)
			continue
		}
		if isHeading(trimmed) {
			pdf.SetFont("Helvetica", "B", 11)
		} else {
			pdf.SetFont("Times", "", 11)
		}
		pdf.MultiCell(0, lineHeight, tr(trimmed), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func isHeading(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
