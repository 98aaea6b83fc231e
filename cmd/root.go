package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "sfsync",
	Short:         "Field-mapping validation for Salesforce-to-Salesforce sync jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load before the environment")
}

func envFiles(cmd *cobra.Command) []string {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	return files
}
