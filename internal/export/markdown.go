package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/core"
)

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct{}

// Export writes the session as Markdown.
func (e *MarkdownExporter) Export(session *core.Session, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString("# Negotiation Session\n\n")

	// Metadata
	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **Scenario:** %s\n", session.Scenario))
	sb.WriteString(fmt.Sprintf("- **Style:** %s\n", session.Style))
	sb.WriteString(fmt.Sprintf("- **Timestamp:** %s\n", time.Time(session.Timestamp).Format(core.TimestampLayout)))
	sb.WriteString("\n")

	// Conversation
	sb.WriteString("## Conversation\n\n")

	if len(session.Conversation) == 0 {
		sb.WriteString("*No turns recorded.*\n\n")
	} else {
		for i, turn := range session.Conversation {
			sb.WriteString(fmt.Sprintf("### Turn %d\n\n", i+1))
			sb.WriteString(fmt.Sprintf("**You:** %s\n\n", turn.User))
			sb.WriteString(fmt.Sprintf("**AI:** %s\n\n", turn.AI))
			sb.WriteString("---\n\n")
		}
	}

	// Feedback
	if session.Feedback != nil {
		fb := session.Feedback
		sb.WriteString("## Feedback\n\n")
		sb.WriteString(fmt.Sprintf("- **Clarity Score:** %.2f/10\n", fb.Score.Clarity))
		sb.WriteString(fmt.Sprintf("- **Persuasiveness Score:** %.2f/10\n", fb.Score.Persuasiveness))
		sb.WriteString(fmt.Sprintf("- **Total Score:** %.2f/10\n", fb.Score.Total))
		sb.WriteString("\n")

		sb.WriteString("### Performance Summary\n\n")
		sb.WriteString(fb.Summary)
		sb.WriteString("\n\n")

		sb.WriteString("### Areas for Improvement\n\n")
		for _, improvement := range fb.Improvements {
			sb.WriteString(fmt.Sprintf("- %s\n", improvement))
		}
		sb.WriteString("\n")
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from parley*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
