package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Run a plain-English forensic query",
	Long: `Translate a natural-language question into a structured query and
run it against the event store.

Examples:
  ctrace query "find all failed login attempts from Russia"
  ctrace query show me downloads between 9pm and 11pm`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		caseID, _ := cmd.Flags().GetString("case")

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		queryResp, err := c.Query(text, caseID)
		if err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(queryResp)
		}

		output.Info("Query: %s", queryResp.Query)

		if queryResp.Count == 0 {
			output.Info("\nNo events matched")
			return nil
		}

		table := output.NewTable([]string{"Time", "Type", "User", "IP", "Country", "Status"})
		for _, ev := range queryResp.Events {
			table.AddRow([]string{
				ev.Timestamp.Format("2006-01-02 15:04:05"),
				ev.EventType,
				ev.UserID,
				ev.IPAddress,
				ev.Country,
				ev.Status,
			})
		}
		fmt.Println()
		table.Render()
		output.Info("\n%d event(s)", queryResp.Count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("case", "", "Record the query against a case ID")
}
