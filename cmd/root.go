package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"lychee/internal/config"
	"lychee/pkg/logging"
)

// projectDir is the workspace root every command operates on.
var projectDir string

// rootCmd represents the base command for the lychee application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lychee",
	Short: "Run a multi-service workspace locally",
	Long: `lychee orchestrates the services of a local development workspace:
it starts them in dependency order, compiles shared schemas into
per-language types and mounts the generated code into each service.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		logging.Init(logging.ParseLevel(settings.LogLevel), os.Stderr)
		return nil
	},
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lychee version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", ".", "Project root directory")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDevCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newPluginsCmd())
}
