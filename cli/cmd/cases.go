package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Investigation cases management",
	Long:  "Create, inspect, and update forensic investigation cases",
}

var casesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List investigation cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		status, _ := cmd.Flags().GetString("status")

		casesResp, err := c.ListCases(status, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list cases: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(casesResp.Cases)
		}

		if len(casesResp.Cases) == 0 {
			output.Info("No cases found")
			return nil
		}

		table := output.NewTable([]string{"ID", "Title", "Status", "Investigator", "Created"})
		for _, c := range casesResp.Cases {
			table.AddRow([]string{
				c.ID,
				c.Title,
				c.Status,
				c.Investigator,
				c.CreatedAt.Format("2006-01-02"),
			})
		}
		table.Render()

		output.Info("\nShowing %d of %d total cases", len(casesResp.Cases), casesResp.Total)
		return nil
	},
}

var casesGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get case details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		caseData, err := c.GetCase(args[0])
		if err != nil {
			return fmt.Errorf("failed to get case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(caseData)
		}

		output.Info("Case ID: %s", caseData.ID)
		output.Info("Title: %s", caseData.Title)
		output.Info("Status: %s", caseData.Status)
		output.Info("Investigator: %s", caseData.Investigator)
		if caseData.Description != "" {
			output.Info("Description: %s", caseData.Description)
		}
		output.Info("Created: %s", caseData.CreatedAt.Format("2006-01-02 15:04:05"))
		output.Info("Updated: %s", caseData.UpdatedAt.Format("2006-01-02 15:04:05"))

		if len(caseData.Findings) > 0 {
			output.Info("\nFindings:")
			return output.JSON(caseData.Findings)
		}
		return nil
	},
}

var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new investigation case",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		investigator, _ := cmd.Flags().GetString("investigator")

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		caseData, err := c.CreateCase(title, description, investigator)
		if err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}

		output.Success("Case created: %s", caseData.Title)
		output.Info("ID: %s", caseData.ID)
		output.Info("Status: %s", caseData.Status)
		return nil
	},
}

var casesUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a case",
	Long:  "Apply a partial update to a case's title, description, or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make(map[string]interface{})
		for _, name := range []string{"title", "description", "status"} {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				fields[name] = v
			}
		}
		if len(fields) == 0 {
			return fmt.Errorf("nothing to update: pass --title, --description, or --status")
		}

		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		caseData, err := c.UpdateCase(args[0], fields)
		if err != nil {
			return fmt.Errorf("failed to update case: %w", err)
		}

		output.Success("Case %s updated", caseData.ID)
		output.Info("Status: %s", caseData.Status)
		return nil
	},
}

var casesCloseCmd = &cobra.Command{
	Use:   "close [id]",
	Short: "Close an investigation case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient(cmd)
		if err != nil {
			return err
		}

		caseData, err := c.UpdateCase(args[0], map[string]interface{}{"status": "closed"})
		if err != nil {
			return fmt.Errorf("failed to close case: %w", err)
		}

		output.Success("Case %s closed", caseData.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(casesCmd)
	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesGetCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesUpdateCmd)
	casesCmd.AddCommand(casesCloseCmd)

	casesListCmd.Flags().IntP("limit", "l", 20, "Results per page")
	casesListCmd.Flags().Int("offset", 0, "Pagination offset")
	casesListCmd.Flags().String("status", "", "Filter by status (open, closed)")

	casesCreateCmd.Flags().StringP("title", "t", "", "Case title")
	casesCreateCmd.Flags().StringP("description", "d", "", "Case description")
	casesCreateCmd.Flags().StringP("investigator", "i", "", "Investigator name")
	if err := casesCreateCmd.MarkFlagRequired("title"); err != nil {
		panic(fmt.Sprintf("failed to mark title as required: %v", err))
	}
	if err := casesCreateCmd.MarkFlagRequired("investigator"); err != nil {
		panic(fmt.Sprintf("failed to mark investigator as required: %v", err))
	}

	casesUpdateCmd.Flags().String("title", "", "New title")
	casesUpdateCmd.Flags().String("description", "", "New description")
	casesUpdateCmd.Flags().String("status", "", "New status (open, closed)")
}
