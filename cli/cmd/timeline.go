package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [case-id]",
	Short: "Build a correlated timeline for a case",
	Long: `Fetch events matching a plain-English question, correlate them into
a chronological timeline, and flag suspicious patterns. The timeline is
recorded in the case's audit trail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		timeline, err := c.BuildTimeline(args[0], text)
		if err != nil {
			return fmt.Errorf("failed to build timeline: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(timeline)
		}

		fmt.Println(timeline.Narrative)

		if len(timeline.Patterns) > 0 {
			output.Warn("%d suspicious pattern(s) detected", len(timeline.Patterns))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.Flags().StringP("text", "q", "", "Plain-English query selecting the events (default: all events)")
}
