// Package pipeline wires the extraction stages end to end: text extraction,
// normalization, parsing, validation, sanitization, integrity checking and
// persistence. Each stage is pure; this package owns the order and the
// logging around them.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/creditdesk/cibil-extract/internal/identity"
	"github.com/creditdesk/cibil-extract/internal/integrity"
	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/normalize"
	"github.com/creditdesk/cibil-extract/internal/ocr"
	"github.com/creditdesk/cibil-extract/internal/parser"
	"github.com/creditdesk/cibil-extract/internal/sanitize"
	"github.com/creditdesk/cibil-extract/internal/store"
	"github.com/creditdesk/cibil-extract/internal/validate"
)

// DefaultReportType is the score type stamped on stored reports when the
// caller does not specify one.
const DefaultReportType = "CIBIL"

// Options control a single processing run.
type Options struct {
	// Password unlocks an encrypted PDF.
	Password string
	// UserID and MobileNumber identify the report owner; either may be
	// empty, and both empty skips identity resolution entirely.
	UserID       string
	MobileNumber string
	// ReportType keys deduplication together with the control number.
	ReportType string
	// Overwrite replaces an existing report with the same key instead of
	// reporting a duplicate.
	Overwrite bool
}

// Result is everything one processing run produced.
type Result struct {
	Report    *model.StoredReport
	Text      string
	Integrity integrity.Result
	Save      *store.SaveResult
}

// Processor runs PDFs through the extraction pipeline. Store and resolver
// are optional; without them the pipeline extracts and checks but does not
// persist.
type Processor struct {
	extractor ocr.Extractor
	resolver  identity.Resolver
	store     store.Store
	timeout   time.Duration
}

func New(extractor ocr.Extractor, resolver identity.Resolver, st store.Store, timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Processor{extractor: extractor, resolver: resolver, store: st, timeout: timeout}
}

// Process extracts one PDF into a structured report, checks it, and stores
// it when a store is configured.
func (p *Processor) Process(ctx context.Context, pdfPath string, opts Options) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	log := zap.L().With(zap.String("file", filepath.Base(pdfPath)))

	extracted, err := p.extractor.ExtractText(ctx, pdfPath, opts.Password)
	if err != nil {
		return nil, err
	}

	text := normalize.Normalize(extracted.FullText)
	headerText := normalize.Normalize(extracted.HeaderText)

	rep := parser.Parse(text, headerText)
	rep.Warnings = validate.Apply(rep)
	sanitize.Apply(rep)

	integrityResult := integrity.Check(rep, text)

	userID := ""
	if p.resolver != nil && (opts.UserID != "" || opts.MobileNumber != "") {
		userID, err = p.resolver.Resolve(ctx, opts.UserID, opts.MobileNumber)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Report: &model.StoredReport{
			InquiryRequestInfo: model.InquiryRequestInfo{UserID: userID},
			InputResponse:      *rep,
		},
		Text:      text,
		Integrity: integrityResult,
	}

	if p.store != nil {
		reportType := opts.ReportType
		if reportType == "" {
			reportType = DefaultReportType
		}
		save, err := p.store.SaveReport(ctx, result.Report, reportType, opts.Overwrite)
		if err != nil {
			return nil, err
		}
		result.Save = save
		log = log.With(zap.String("report_id", save.ReportID), zap.String("save_status", string(save.Status)))
	}

	log.Info("processed report",
		zap.String("control_number", rep.ReportInformation.ControlNumber),
		zap.Int("accounts", len(rep.Accounts)),
		zap.Int("enquiries", len(rep.Enquiries)),
		zap.Int("warnings", len(rep.Warnings)),
		zap.Bool("integrity_ok", integrityResult.OK),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
