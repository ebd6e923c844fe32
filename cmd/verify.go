package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/creditdesk/cibil-extract/internal/pipeline"
)

var verifyPassword string

// verify runs extraction and the integrity checks without touching the
// store, for vetting a PDF before ingestion. Exits non-zero when the report
// has integrity issues.
var verifyCmd = &cobra.Command{
	Use:   "verify <report.pdf>",
	Short: "Extract a PDF and report integrity findings without storing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Processor.Process(ctx, args[0], pipeline.Options{Password: verifyPassword})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Integrity); err != nil {
			return err
		}
		if !result.Integrity.OK {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyPassword, "password", "", "PDF password")
	rootCmd.AddCommand(verifyCmd)
}
