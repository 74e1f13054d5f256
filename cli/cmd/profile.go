package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/pkg/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Connection profile management",
	Long:  "Manage named server profiles stored in $HOME/.ctrace/config.yaml",
}

var profileSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Create or update a profile and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		token, _ := cmd.Flags().GetString("token")

		if err := cfg.SaveProfile(args[0], serverURL, token); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		output.Success("Profile '%s' saved", args[0])
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Profiles) == 0 {
			output.Info("No profiles configured")
			return nil
		}

		table := output.NewTable([]string{"Name", "Server", "Current"})
		for name, p := range cfg.Profiles {
			current := ""
			if name == cfg.CurrentProfile {
				current = "*"
			}
			table.AddRow([]string{name, p.ServerURL, current})
		}
		table.Render()
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveProfile(args[0]); err != nil {
			return err
		}
		output.Success("Profile '%s' removed", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)

	profileSetCmd.Flags().StringP("server", "s", "http://localhost:8087", "Investigate service URL")
	profileSetCmd.Flags().StringP("token", "t", "", "Bearer token for authenticated deployments")
}
