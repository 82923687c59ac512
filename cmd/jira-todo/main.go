package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/jira-todo/internal/pipeline"
)

var (
	configPath string
	envFile    string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "jira-todo",
		Short: "Check TODO comments against their Jira tickets",
		Long: `jira-todo reads TODO comments extracted from a source tree, looks up the
Jira tickets they reference and fails the build when a TODO points at a
closed ticket, at a ticket of a disallowed type, or (optionally) at no
ticket at all.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default .jira-todo.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with JIRA_* credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every tracker request")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Policy violations have already been printed by the report.
		if !errors.Is(err, pipeline.ErrPolicyViolation) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
