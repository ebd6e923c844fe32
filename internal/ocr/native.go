package ocr

import (
	"context"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Native reads the text layer in-process with a pure Go PDF reader, so small
// deployments can run without poppler installed. The library handles common
// encodings but trips over some font subsets, producing garbage rather than
// an error, so every extraction is scored for readability and handed to the
// pdftotext fallback when it fails the gate.
type Native struct {
	fallback *PdfToText
}

func NewNative(fallback *PdfToText) *Native {
	return &Native{fallback: fallback}
}

func (n *Native) ExtractText(ctx context.Context, pdfPath, password string) (*Result, error) {
	if err := checkEncryption(pdfPath, password); err != nil {
		return nil, err
	}
	// The reader has no decryption support; let poppler take encrypted files.
	if password != "" {
		return n.fallback.ExtractText(ctx, pdfPath, password)
	}

	text, ok := n.extract(pdfPath)
	if !ok || !looksReadable(text) {
		return n.fallback.ExtractText(ctx, pdfPath, password)
	}
	return assemble(text)
}

// extract pulls text page by page. The reader panics on some malformed
// documents, so the whole walk runs under a recover and reports failure
// instead.
func (n *Native) extract(pdfPath string) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return "", false
	}
	defer f.Close()

	var pages []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, renderPage(page))
	}
	return strings.Join(pages, "\f"), true
}

func renderPage(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var sb strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, word := range row.Content {
			if line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
				line.WriteByte(' ')
			}
			line.WriteString(strings.TrimSpace(word.S))
		}
		sb.WriteString(strings.TrimSpace(line.String()))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// looksReadable guards against silent mojibake from broken font tables. A
// genuine report page is long, mostly ASCII and mentions at least one term
// every report carries.
func looksReadable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 50 {
		return false
	}

	ascii := 0
	for _, r := range trimmed {
		if r < 128 {
			ascii++
		}
	}
	if float64(ascii)/float64(len([]rune(trimmed))) < 0.6 {
		return false
	}

	upper := strings.ToUpper(trimmed)
	for _, word := range []string{"CIBIL", "SCORE", "ACCOUNT", "REPORT", "MEMBER", "ENQUIRY", "PAYMENT"} {
		if strings.Contains(upper, word) {
			return true
		}
	}
	return false
}
