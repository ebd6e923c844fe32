package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/pipeline"
	"github.com/creditdesk/cibil-extract/internal/store"
)

var (
	processPassword   string
	processUserID     string
	processMobile     string
	processReportType string
	processOverwrite  bool
	processNoStore    bool
	processXlsxPath   string
	processJSON       bool
)

var processCmd = &cobra.Command{
	Use:   "process <report.pdf>",
	Short: "Extract one credit report PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, !processNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Processor.Process(ctx, args[0], pipeline.Options{
			Password:     processPassword,
			UserID:       processUserID,
			MobileNumber: processMobile,
			ReportType:   processReportType,
			Overwrite:    processOverwrite,
		})
		if err != nil {
			return err
		}

		if processXlsxPath != "" {
			if err := export.WriteFile(&result.Report.InputResponse, processXlsxPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workbook written to %s\n", processXlsxPath)
		}

		if processJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Report)
		}

		printProcessSummary(cmd, result)
		if result.Save != nil && result.Save.Status == store.SaveStatusDuplicate {
			fmt.Fprintln(cmd.OutOrStdout(), "report already stored; rerun with --overwrite to replace it")
		}
		return nil
	},
}

func printProcessSummary(cmd *cobra.Command, result *pipeline.Result) {
	rep := &result.Report.InputResponse
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Control Number: %s\n", rep.ReportInformation.ControlNumber)
	fmt.Fprintf(out, "Score:          %s\n", rep.ReportInformation.Score)
	fmt.Fprintf(out, "Report Date:    %s\n", rep.ReportInformation.ReportDate)
	fmt.Fprintf(out, "Name:           %s\n", rep.PersonalInformation.Name)
	fmt.Fprintf(out, "Accounts:       %d\n", len(rep.Accounts))
	fmt.Fprintf(out, "Enquiries:      %d\n", len(rep.Enquiries))
	fmt.Fprintf(out, "Warnings:       %d\n", len(rep.Warnings))
	for _, warning := range rep.Warnings {
		fmt.Fprintf(out, "  - %s\n", warning)
	}
	if !result.Integrity.OK {
		fmt.Fprintln(out, "Integrity issues:")
		for _, issue := range result.Integrity.Issues {
			fmt.Fprintf(out, "  - [%s] %s\n", issue.Code, issue.Message)
		}
	}
	if result.Save != nil {
		fmt.Fprintf(out, "Stored:         %s (%s)\n", result.Save.ReportID, result.Save.Status)
	}
}

func init() {
	processCmd.Flags().StringVar(&processPassword, "password", "", "PDF password")
	processCmd.Flags().StringVar(&processUserID, "user-id", "", "owner user id")
	processCmd.Flags().StringVar(&processMobile, "mobile", "", "owner mobile number")
	processCmd.Flags().StringVar(&processReportType, "report-type", pipeline.DefaultReportType, "score type used for deduplication")
	processCmd.Flags().BoolVar(&processOverwrite, "overwrite", false, "replace an already stored report with the same control number")
	processCmd.Flags().BoolVar(&processNoStore, "no-store", false, "extract without persisting")
	processCmd.Flags().StringVar(&processXlsxPath, "xlsx", "", "write the Excel workbook to this path")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print the full report JSON")
	rootCmd.AddCommand(processCmd)
}
