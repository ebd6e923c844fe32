package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/pipeline"
	"github.com/creditdesk/cibil-extract/internal/store"
)

var (
	batchPassword   string
	batchReportType string
	batchOverwrite  bool
	batchNoStore    bool
	batchXlsxDir    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process a directory of credit report PDFs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		files, err := listPDFs(args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			zap.L().Info("no pdf files found", zap.String("dir", args[0]))
			return nil
		}

		if batchXlsxDir != "" {
			if err := os.MkdirAll(batchXlsxDir, 0o755); err != nil {
				return eris.Wrapf(err, "batch: create %s", batchXlsxDir)
			}
		}

		env, err := initPipeline(ctx, !batchNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := cfg.Batch.MaxConcurrentFiles
		if concurrency <= 0 {
			concurrency = 1
		}
		zap.L().Info("processing batch",
			zap.Int("files", len(files)),
			zap.Int("concurrency", concurrency),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		var succeeded, duplicates, failed atomic.Int64

		for _, file := range files {
			g.Go(func() error {
				log := zap.L().With(zap.String("file", filepath.Base(file)))

				result, err := env.Processor.Process(gctx, file, pipeline.Options{
					Password:   batchPassword,
					ReportType: batchReportType,
					Overwrite:  batchOverwrite,
				})
				if err != nil {
					failed.Add(1)
					log.Error("processing failed", zap.Error(err))
					return nil // one bad file does not abort the batch
				}
				if result.Save != nil && result.Save.Status == store.SaveStatusDuplicate {
					duplicates.Add(1)
				} else {
					succeeded.Add(1)
				}

				if batchXlsxDir != "" {
					if err := writeBatchWorkbook(result, file); err != nil {
						log.Warn("workbook export failed", zap.Error(err))
					}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("duplicates", duplicates.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func writeBatchWorkbook(result *pipeline.Result, pdfPath string) error {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return export.WriteFile(&result.Report.InputResponse, filepath.Join(batchXlsxDir, base+".xlsx"))
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read dir %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchPassword, "password", "", "password applied to every PDF")
	batchCmd.Flags().StringVar(&batchReportType, "report-type", pipeline.DefaultReportType, "score type used for deduplication")
	batchCmd.Flags().BoolVar(&batchOverwrite, "overwrite", false, "replace already stored reports")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "extract without persisting")
	batchCmd.Flags().StringVar(&batchXlsxDir, "xlsx-dir", "", "write one workbook per report into this directory")
	rootCmd.AddCommand(batchCmd)
}
