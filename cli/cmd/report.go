package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Forensic report generation and export",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate [case-id]",
	Short: "Generate a legal-format forensic report",
	Long: `Run the full pipeline for a case: fetch events, correlate them, and
synthesize a legal-format report. The report is recorded in the audit
trail and cached for retrieval.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		report, err := c.GenerateReport(args[0], text)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(report)
		}

		output.Success("Report generated (%s format)", report.Format)
		output.Info("Generated at: %s", report.GeneratedAt.Format("2006-01-02 15:04:05"))
		output.Info("Evidence integrity: %s", report.EvidenceIntegrity)
		return nil
	},
}

var reportGetCmd = &cobra.Command{
	Use:   "get [case-id]",
	Short: "Export the latest report as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		content, err := c.GetReport(args[0])
		if err != nil {
			return fmt.Errorf("failed to get report: %w", err)
		}

		if path, _ := cmd.Flags().GetString("file"); path != "" {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			output.Success("Report written to %s", path)
			return nil
		}

		fmt.Print(content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportGetCmd)

	reportGenerateCmd.Flags().StringP("text", "q", "", "Plain-English query selecting the events (default: all events)")
	reportGetCmd.Flags().StringP("file", "f", "", "Write the report to a file instead of stdout")
}
