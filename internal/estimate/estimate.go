// Package estimate inspects uploaded insurance estimate PDFs before they are
// sent to the model: it checks the file really is a PDF, counts pages, pulls
// out text for an optional prompt hint, and reads the budget from the name.
package estimate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for uploads without a PDF header.
var ErrNotPDF = errors.New("file is not a PDF")

// Options controls text extraction.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the Go reader fails.
	FallbackPdftotext bool
}

// Info describes an uploaded estimate.
type Info struct {
	Filename string
	Size     int
	Pages    int
	// Text is the extracted text with pages separated by form feeds.
	Text string
	// FilenameBudget is the dollar amount in the filename, if any.
	FilenameBudget *float64
	// Warnings lists non-fatal extraction problems.
	Warnings []string
}

// Inspect validates data as a PDF and gathers what can be read from it.
// Only a missing PDF header is an error: the model reads the PDF itself, so
// text extraction failures are reported as warnings.
func Inspect(ctx context.Context, data []byte, filename string, opts Options) (*Info, error) {
	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, filename)
	}

	info := &Info{Filename: filename, Size: len(data)}
	if v, ok := BudgetFromFilename(filename); ok {
		info.FilenameBudget = &v
	}

	pages, text, err := extractPDFText(data)
	if err != nil && opts.FallbackPdftotext {
		info.Warnings = append(info.Warnings, fmt.Sprintf("go pdf reader: %s", err))
		text, err = extractPdftotext(ctx, data)
		if err == nil {
			pages = strings.Count(strings.TrimRight(text, "\f"), "\f") + 1
		}
	}
	if err != nil {
		info.Warnings = append(info.Warnings, fmt.Sprintf("extract text: %s", err))
		return info, nil
	}

	info.Pages = pages
	info.Text = strings.TrimSpace(text)
	if info.Text == "" {
		info.Warnings = append(info.Warnings, "no extractable text (scanned estimate?)")
	}
	return info, nil
}

// IsPDF reports whether data starts with a PDF header. Some producers put
// junk before the header, so the first kilobyte is searched.
func IsPDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

func extractPDFText(data []byte) (pages int, text string, err error) {
	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", err
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(t)
	}
	return numPages, buf.String(), nil
}

func extractPdftotext(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docugen-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", tmpPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

var filenameBudgetRe = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// BudgetFromFilename returns the first dollar amount in name, as in
// "Estimate-$12,345.67.pdf".
func BudgetFromFilename(name string) (float64, bool) {
	m := filenameBudgetRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
