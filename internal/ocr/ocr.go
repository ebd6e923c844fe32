// Package ocr turns an uploaded PDF into page-delimited plain text. The
// name is historical: all providers here read the embedded text layer, and
// a PDF without one is rejected rather than rasterized.
package ocr

import (
	"context"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"

	"github.com/creditdesk/cibil-extract/internal/config"
)

// PageBreakMarker separates pages in Result.FullText. The normalizer and
// parser key on the exact string.
const PageBreakMarker = "--- PAGE BREAK ---"

var (
	// ErrPasswordProtected means the PDF is encrypted and either no password
	// or the wrong one was supplied.
	ErrPasswordProtected = eris.New("ocr: pdf is password-protected")
	// ErrScannedPDF means no text layer could be recovered; the document is
	// image-only and cannot be processed.
	ErrScannedPDF = eris.New("ocr: pdf appears to be scanned, no text layer found")
)

// Result is the extracted text of one document.
type Result struct {
	// FullText is every page's text joined with PageBreakMarker lines.
	FullText string
	// HeaderText is the first page only, used for header-anchored lookups.
	HeaderText string
}

// Extractor extracts the text layer from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath, password string) (*Result, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "pdftotext", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "native":
		return NewNative(NewPdfToText(cfg.PdfToTextPath)), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// checkEncryption opens the document with pdfcpu and reports whether its
// encryption dictionary is present. Used as a pre-check so encrypted files
// fail with a typed error instead of a provider-specific message.
func checkEncryption(pdfPath, password string) error {
	f, err := os.Open(pdfPath)
	if err != nil {
		return eris.Wrapf(err, "ocr: open %s", pdfPath)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
	}

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		// An unreadable file surfaces later with provider detail; only a
		// failed decrypt is conclusive here.
		if password == "" && strings.Contains(strings.ToLower(err.Error()), "password") {
			return ErrPasswordProtected
		}
		return nil
	}
	if ctx.Encrypt != nil && password == "" {
		return ErrPasswordProtected
	}
	return nil
}

// assemble splits the text into pages on form feeds, runs the token repair
// pass per page and produces the page-break-delimited result. Repair works
// page by page so its line merging never reaches across a page boundary.
func assemble(text string) (*Result, error) {
	var pages []string
	for _, page := range strings.Split(text, "\f") {
		page = strings.TrimSpace(Repair(page))
		if page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, ErrScannedPDF
	}

	var full strings.Builder
	for _, page := range pages {
		full.WriteString(page)
		full.WriteString("\n" + PageBreakMarker + "\n")
	}
	return &Result{FullText: full.String(), HeaderText: pages[0]}, nil
}
