package estimate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal uncompressed PDF with one line of Helvetica text
// per page.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	n := len(pages)
	// Objects: 1 catalog, 2 pages, 3 font, then a page and a content stream per page.
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", 5+i*2))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestInspect_ExtractsText(t *testing.T) {
	data := buildPDF("Drywall replacement 120 SF", "Paint walls 2 coats")
	info, err := Inspect(context.Background(), data, "Estimate-$12,345.67.pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", info.Pages)
	}
	if !strings.Contains(info.Text, "Drywall replacement 120 SF") {
		t.Errorf("expected page 1 text, got %q", info.Text)
	}
	if !strings.Contains(info.Text, "\f") || !strings.Contains(info.Text, "Paint walls") {
		t.Errorf("expected form-feed separated page 2 text, got %q", info.Text)
	}
	if info.FilenameBudget == nil || *info.FilenameBudget != 12345.67 {
		t.Errorf("expected filename budget 12345.67, got %v", info.FilenameBudget)
	}
	if len(info.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", info.Warnings)
	}
}

func TestInspect_NotPDF(t *testing.T) {
	_, err := Inspect(context.Background(), []byte("PK\x03\x04 not a pdf"), "estimate.docx", Options{})
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestInspect_UnreadablePDFIsWarning(t *testing.T) {
	data := []byte("%PDF-1.4\ngarbage that is not a pdf body")
	info, err := Inspect(context.Background(), data, "broken.pdf", Options{})
	if err != nil {
		t.Fatalf("expected extraction failure to be non-fatal, got %v", err)
	}
	if len(info.Warnings) == 0 {
		t.Error("expected a warning for an unreadable pdf")
	}
	if info.Text != "" {
		t.Errorf("expected no text, got %q", info.Text)
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF([]byte("%PDF-1.7\n...")) {
		t.Error("expected header to be detected")
	}
	if !IsPDF(append([]byte("\xef\xbb\xbf junk "), []byte("%PDF-1.4")...)) {
		t.Error("expected header after leading junk to be detected")
	}
	if IsPDF([]byte("hello")) {
		t.Error("expected plain text to be rejected")
	}
}

func TestBudgetFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want float64
		ok   bool
	}{
		{"Estimate-$12,345.67.pdf", 12345.67, true},
		{"Smith $ 9800.pdf", 9800, true},
		{"claim-$1500.5-final.pdf", 1500.5, true},
		{"estimate.pdf", 0, false},
		{"price-$.pdf", 0, false},
	}
	for _, tt := range tests {
		got, ok := BudgetFromFilename(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("BudgetFromFilename(%q): expected (%v, %v), got (%v, %v)", tt.name, tt.want, tt.ok, got, ok)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := EstimateTokens("x"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("word ", 100)); got != 133 {
		t.Errorf("expected 133, got %d", got)
	}
}

func TestTruncateTokens(t *testing.T) {
	text := strings.Repeat("word ", 100)
	if got := TruncateTokens(text, 0); got != text {
		t.Error("expected no limit for maxTokens=0")
	}
	if got := TruncateTokens(text, 200); got != text {
		t.Error("expected text under the limit to be unchanged")
	}
	got := TruncateTokens(text, 40)
	if n := len(strings.Fields(got)); n != 30 {
		t.Errorf("expected 30 words kept, got %d", n)
	}
}
