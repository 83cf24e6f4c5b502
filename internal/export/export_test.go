package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/feedback"
)

func sampleSession() *core.Session {
	conv := core.Conversation{
		{User: "I think we can find a middle ground on price.", AI: "What range did you have in mind?"},
		{User: "Somewhere around 10% below list.", AI: "I could meet you at 5% with free delivery."},
	}
	return &core.Session{
		Scenario:     "Negotiating a car purchase",
		Style:        core.StyleCollaborative,
		Conversation: conv,
		Feedback:     feedback.Generate(conv, "Negotiating a car purchase"),
		Timestamp:    core.Timestamp(time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)),
	}
}

func TestGetExporter(t *testing.T) {
	tests := []struct {
		format  Format
		wantExt string
		wantErr bool
	}{
		{FormatMarkdown, "md", false},
		{FormatPDF, "pdf", false},
		{FormatJSON, "json", false},
		{Format("xml"), "", true},
	}

	for _, tt := range tests {
		exporter, err := GetExporter(tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("GetExporter(%s): expected error", tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("GetExporter(%s): %v", tt.format, err)
			continue
		}
		if got := exporter.FileExtension(); got != tt.wantExt {
			t.Errorf("FileExtension for %s: got %s, want %s", tt.format, got, tt.wantExt)
		}
	}
}

func TestGenerateFilename(t *testing.T) {
	sess := sampleSession()
	got := GenerateFilename(sess, "pdf")
	want := "negotiation_20260314_Negotiating_a_car_purchase.pdf"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	sess.Scenario = "a/b\\c:d*e?f\"g<h>i|j"
	got = GenerateFilename(sess, "md")
	if strings.ContainsAny(got, "/\\:*?\"<>|") {
		t.Errorf("filename contains unsafe characters: %s", got)
	}

	sess.Scenario = strings.Repeat("x", 80)
	got = GenerateFilename(sess, "json")
	if len(got) > len("negotiation_20260314_")+50+len(".json") {
		t.Errorf("scenario not truncated: %s", got)
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleSession(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Negotiation Session",
		"**Scenario:** Negotiating a car purchase",
		"**Style:** Collaborative",
		"2026-03-14 15:09:26",
		"### Turn 1",
		"**You:** I think we can find a middle ground on price.",
		"**AI:** What range did you have in mind?",
		"### Turn 2",
		"Clarity Score:",
		"Areas for Improvement",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportEmptyConversation(t *testing.T) {
	sess := sampleSession()
	sess.Conversation = nil
	sess.Feedback = feedback.Generate(nil, sess.Scenario)

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sess, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), "No turns recorded.") {
		t.Error("expected empty-conversation marker")
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	sess := sampleSession()

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sess, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	var decoded core.Session
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Scenario != sess.Scenario {
		t.Errorf("scenario: got %s, want %s", decoded.Scenario, sess.Scenario)
	}
	if len(decoded.Conversation) != len(sess.Conversation) {
		t.Errorf("conversation length: got %d, want %d", len(decoded.Conversation), len(sess.Conversation))
	}
	if decoded.Feedback == nil || decoded.Feedback.Score.Total != sess.Feedback.Score.Total {
		t.Error("feedback not preserved")
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(sampleSession(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if buf.Len() < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestPDFExportSmartQuotes(t *testing.T) {
	sess := sampleSession()
	sess.Conversation[0].User = "It\\u2019s a \\u201Cfair\\u201D deal \\u2014 really"

	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(sess, &buf); err != nil {
		t.Fatalf("export with unicode punctuation: %v", err)
	}
}
