// Package export handles exporting negotiation sessions to various formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Exporter defines the interface for exporting sessions.
type Exporter interface {
	Export(session *core.Session, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(session *core.Session, ext string) string {
	// Sanitize scenario for filename
	scenario := session.Scenario
	if len(scenario) > 50 {
		scenario = scenario[:50]
	}

	// Replace unsafe characters
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	scenario = replacer.Replace(scenario)

	timestamp := time.Time(session.Timestamp).Format("20060102")
	return fmt.Sprintf("negotiation_%s_%s.%s", timestamp, scenario, ext)
}
