package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casetrace-systems/casetrace/cli/internal/client"
	"github.com/casetrace-systems/casetrace/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ctrace",
	Short: "CaseTrace CLI",
	Long: `ctrace is the command-line interface for the CaseTrace forensic
investigation platform.

Query forensic events in plain English, manage investigation cases,
build correlated timelines, and export legal-format reports from your
terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ctrace/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}
}

// apiClient resolves the profile selected on the command line into a
// configured client.
func apiClient(cmd *cobra.Command) (*client.InvestigateClient, error) {
	profile, _ := cmd.Flags().GetString("profile")
	p, err := cfg.GetProfile(profile)
	if err != nil {
		return nil, err
	}
	return client.NewInvestigateClient(p.ServerURL, p.Token), nil
}
