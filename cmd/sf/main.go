package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	demoObjectType = "Case"
	demoQuery      = "SELECT Id, Subject FROM Case LIMIT 10"
)

type rootFlags struct {
	configPath string
	verbose    bool
	persist    bool
	output     string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "sf",
		Short: "Create and query Salesforce records",
		Long: `sf authorizes against Salesforce with the username/password OAuth flow
and creates or queries records through the REST API.

Run without a subcommand it creates one example Case and queries the latest Cases.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(flags.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default is $SALESFORCE_CONFIG or salesforce_config.ini)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flags.persist, "persist", false, "record created records in Postgres (DB_* environment)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "json", "output format (json, yaml)")

	rootCmd.AddCommand(newAuthorizeCommand(flags))
	rootCmd.AddCommand(newCreateCommand(flags))
	rootCmd.AddCommand(newQueryCommand(flags))
	rootCmd.AddCommand(newRecordsCommand(flags))

	return rootCmd
}
