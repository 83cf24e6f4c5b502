package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/parleyhq/parley/internal/core"
)

// PDFExporter exports sessions to PDF format.
type PDFExporter struct{}

// Export writes the session as PDF. The document keeps the classic layout:
// a title, the scenario metadata, the numbered conversation, then the
// feedback scores and improvement list.
func (e *PDFExporter) Export(session *core.Session, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Negotiation Session")
	pdf.Ln(10)

	// Metadata section
	pdf.SetFont("Arial", "", 12)
	e.addLine(pdf, fmt.Sprintf("Scenario: %s", e.sanitizeText(session.Scenario)))
	e.addLine(pdf, fmt.Sprintf("Style: %s", session.Style))
	e.addLine(pdf, fmt.Sprintf("Timestamp: %s", time.Time(session.Timestamp).Format(core.TimestampLayout)))
	pdf.Ln(10)

	// Conversation
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, "Conversation:")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	if len(session.Conversation) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No turns recorded.")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
	} else {
		for i, turn := range session.Conversation {
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}
			body := fmt.Sprintf("Turn %d:\nYou: %s\nAI: %s\n",
				i+1, e.sanitizeText(turn.User), e.sanitizeText(turn.AI))
			pdf.MultiCell(0, 5, body, "", "", false)
			pdf.Ln(5)
		}
	}
	pdf.Ln(10)

	// Feedback
	if session.Feedback != nil {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		fb := session.Feedback
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 10, "Feedback:")
		pdf.Ln(10)

		pdf.SetFont("Arial", "", 10)
		e.addLine(pdf, fmt.Sprintf("Clarity Score: %.2f/10", fb.Score.Clarity))
		e.addLine(pdf, fmt.Sprintf("Persuasiveness Score: %.2f/10", fb.Score.Persuasiveness))
		e.addLine(pdf, fmt.Sprintf("Total Score: %.2f/10", fb.Score.Total))
		pdf.Ln(5)

		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Performance Summary:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, e.sanitizeText(fb.Summary), "", "", false)
		pdf.Ln(5)

		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Areas for Improvement:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, improvement := range fb.Improvements {
			pdf.MultiCell(0, 5, fmt.Sprintf("- %s", e.sanitizeText(improvement)), "", "", false)
		}
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from parley", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

func (e *PDFExporter) addLine(pdf *gofpdf.Fpdf, text string) {
	pdf.Cell(0, 5, text)
	pdf.Ln(5)
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	// Replace common Unicode characters that might cause issues
	replacer := strings.NewReplacer(
		"\u2018", "'",  // Left single quote
		"\u2019", "'",  // Right single quote
		"\u201C", "\"", // Left double quote
		"\u201D", "\"", // Right double quote
		"\u2013", "-",  // En dash
		"\u2014", "--", // Em dash
		"\u2026", "...", // Ellipsis
		"\u2022", "*",  // Bullet
		"\u00A0", " ",  // Non-breaking space
	)
	return replacer.Replace(text)
}
