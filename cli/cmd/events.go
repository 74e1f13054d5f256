package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/internal/client"
	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Forensic event ingestion",
}

var eventsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Bulk-index events from a JSON file",
	Long: `Read a JSON array of forensic events from a file (or stdin with "-")
and index them into the event store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		var data []byte
		var err error
		if path == "-" {
			data, err = os.ReadFile("/dev/stdin")
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return fmt.Errorf("failed to read events file: %w", err)
		}

		var events []client.Event
		if err := json.Unmarshal(data, &events); err != nil {
			return fmt.Errorf("failed to parse events file: %w", err)
		}
		if len(events) == 0 {
			return fmt.Errorf("no events in %s", path)
		}

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		resp, err := c.IngestEvents(events)
		if err != nil {
			return fmt.Errorf("failed to ingest events: %w", err)
		}

		output.Success("Indexed %d event(s)", resp.Indexed)
		if resp.Failed > 0 {
			output.Warn("%d event(s) failed", resp.Failed)
			for _, e := range resp.Errors {
				output.Error("%s", e)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsIngestCmd)

	eventsIngestCmd.Flags().StringP("file", "f", "", "Path to a JSON array of events")
	if err := eventsIngestCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file as required: %v", err))
	}
}
