package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored reports",
	Long:  "Commands for listing, viewing, and exporting stored credit reports.",
}

// -- reports list --

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetString("user-id")
		reportType, _ := cmd.Flags().GetString("report-type")
		limit, _ := cmd.Flags().GetInt("limit")

		reports, err := st.ListReports(ctx, store.ReportFilter{
			UserID:     userID,
			ReportType: reportType,
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "reports list")
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		formatReportsList(os.Stdout, reports)
		return nil
	},
}

// -- reports show --

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show the full stored payload of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		report, err := st.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "reports show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// -- reports export --

var reportsExportCmd = &cobra.Command{
	Use:   "export <report-id> <out.xlsx>",
	Short: "Write the Excel workbook for a stored report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		report, err := st.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "reports export")
		}

		if err := export.WriteFile(&report.Payload.InputResponse, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "workbook written to %s\n", args[1])
		return nil
	},
}

// formatReportsList writes a tabular list of reports to w.
func formatReportsList(out io.Writer, reports []store.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tCONTROL_NUMBER\tSCORE\tREPORT_DATE\tUSER\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t--------------\t-----\t-----------\t----\t-------")

	for _, r := range reports {
		user := r.UserID
		if user == "" {
			user = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.ReportType,
			r.ControlNumber,
			r.Score,
			r.ReportDate,
			user,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func init() {
	reportsListCmd.Flags().String("user-id", "", "filter by owner user id")
	reportsListCmd.Flags().String("report-type", "", "filter by score type")
	reportsListCmd.Flags().Int("limit", 50, "max number of reports to display")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsExportCmd)
	rootCmd.AddCommand(reportsCmd)
}
