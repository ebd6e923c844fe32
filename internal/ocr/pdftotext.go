package ocr

import (
	"bytes"
	"context"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfToText extracts text using the poppler pdftotext CLI. The primary mode
// is -bbox, whose per-word geometry lets us rebuild reading order for the
// report's two-column layout; plain -layout is the fallback for poppler
// builds without bbox support.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

func (p *PdfToText) ExtractText(ctx context.Context, pdfPath, password string) (*Result, error) {
	if err := checkEncryption(pdfPath, password); err != nil {
		return nil, err
	}

	text, err := p.extractBbox(ctx, pdfPath, password)
	if err != nil {
		return nil, err
	}
	return assemble(text)
}

func (p *PdfToText) extractBbox(ctx context.Context, pdfPath, password string) (string, error) {
	tempDir, err := os.MkdirTemp("", "cibil-extract-*")
	if err != nil {
		return "", eris.Wrap(err, "ocr: create temp dir")
	}
	defer os.RemoveAll(tempDir)

	bboxFile := filepath.Join(tempDir, "document.html")
	args := []string{"-bbox", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, pdfPath, bboxFile)

	cmd := exec.CommandContext(ctx, p.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.ToLower(stderr.String() + stdout.String())
		if strings.Contains(output, "usage: pdftotext") || strings.Contains(output, "unknown option") {
			return p.extractLayout(ctx, pdfPath, password)
		}
		if strings.Contains(output, "password") {
			return "", ErrPasswordProtected
		}
		return "", eris.Wrapf(err, "ocr: pdftotext -bbox failed for %s: %s", pdfPath, stderr.String())
	}

	html, err := os.ReadFile(bboxFile)
	if err != nil {
		return "", eris.Wrap(err, "ocr: read bbox output")
	}

	pages := parseBboxHTML(string(html))
	return strings.Join(pages, "\f"), nil
}

func (p *PdfToText) extractLayout(ctx context.Context, pdfPath, password string) (string, error) {
	args := []string{"-layout", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, pdfPath, "-")

	cmd := exec.CommandContext(ctx, p.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.ToLower(stderr.String() + stdout.String())
		if strings.Contains(output, "password") {
			return "", ErrPasswordProtected
		}
		return "", eris.Wrapf(err, "ocr: pdftotext -layout failed for %s: %s", pdfPath, stderr.String())
	}
	return stdout.String(), nil
}

// bbox HTML parsing. pdftotext -bbox emits one <page> element per page and
// one <word> element per word with its bounding box.

var (
	bboxPage = regexp.MustCompile(`(?s)<page\b[^>]*>(.*?)</page>`)
	bboxWord = regexp.MustCompile(`(?s)<word\b[^>]*xMin="([^"]+)"[^>]*yMin="([^"]+)"[^>]*xMax="([^"]+)"[^>]*yMax="([^"]+)"[^>]*>(.*?)</word>`)
	tagStrip = regexp.MustCompile(`<[^>]*>`)
)

type bboxWordBox struct {
	xMin, yMin, xMax, yMax float64
	text                   string
}

func parseBboxHTML(doc string) []string {
	var pages []string
	for _, m := range bboxPage.FindAllStringSubmatch(doc, -1) {
		words := parseBboxWords(m[1])
		pages = append(pages, buildLinesFromWords(words))
	}
	return pages
}

func parseBboxWords(pageHTML string) []bboxWordBox {
	var words []bboxWordBox
	for _, m := range bboxWord.FindAllStringSubmatch(pageHTML, -1) {
		text := strings.TrimSpace(html.UnescapeString(tagStrip.ReplaceAllString(m[5], "")))
		if text == "" {
			continue
		}
		words = append(words, bboxWordBox{
			xMin: parseFloat(m[1]),
			yMin: parseFloat(m[2]),
			xMax: parseFloat(m[3]),
			yMax: parseFloat(m[4]),
			text: text,
		})
	}
	return words
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// buildLinesFromWords clusters words into lines by vertical midpoint, then
// renders each line left to right. A vertical jump larger than a text row
// becomes a blank line, which keeps separate layout blocks apart.
func buildLinesFromWords(words []bboxWordBox) string {
	const (
		lineTolerance = 2.5
		blockGap      = 12.0
		wordGap       = 2.0
	)

	type line struct {
		y     float64
		words []bboxWordBox
	}

	var lines []*line
	for _, word := range words {
		y := (word.yMin + word.yMax) / 2
		placed := false
		for _, l := range lines {
			if abs(l.y-y) <= lineTolerance {
				l.words = append(l.words, word)
				l.y = (l.y + y) / 2
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, &line{y: y, words: []bboxWordBox{word}})
		}
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].y < lines[j].y })

	var output []string
	prevY := -1.0
	for _, l := range lines {
		if prevY >= 0 && l.y-prevY > blockGap {
			output = append(output, "")
		}
		prevY = l.y

		sort.Slice(l.words, func(i, j int) bool { return l.words[i].xMin < l.words[j].xMin })

		var sb strings.Builder
		prevXMax := -1.0
		for _, word := range l.words {
			if prevXMax >= 0 && word.xMin-prevXMax > wordGap {
				sb.WriteByte(' ')
			}
			sb.WriteString(word.text)
			prevXMax = word.xMax
		}
		output = append(output, sb.String())
	}

	return strings.TrimSpace(strings.Join(output, "\n"))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
