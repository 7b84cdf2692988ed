package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lychee/internal/app"
)

var schemaFile string

// newSchemaCmd creates the schema command group.
func newSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage shared schemas and their generated types",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Compile all schemas and mount the generated types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}
			return a.GenerateSchemas(cmd.Context())
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <name> [content]",
		Short: "Add a new schema",
		Long: `Add a new schema to the workspace and regenerate all artifacts.
The content is a JSON Schema object, given inline, via --file, or on
stdin with --file -.

Examples:
  lychee schema add user '{"type":"object"}'
  lychee schema add user --file user.json
  cat user.json | lychee schema add user --file -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := schemaContent(args)
			if err != nil {
				return err
			}
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}
			return a.AddSchema(cmd.Context(), args[0], content)
		},
	}
	addCmd.Flags().StringVarP(&schemaFile, "file", "f", "", "Read schema content from a file, or - for stdin")

	updateCmd := &cobra.Command{
		Use:   "update <name> [content]",
		Short: "Update an existing schema",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := schemaContent(args)
			if err != nil {
				return err
			}
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}
			return a.UpdateSchema(cmd.Context(), args[0], content)
		},
	}
	updateCmd.Flags().StringVarP(&schemaFile, "file", "f", "", "Read schema content from a file, or - for stdin")

	schemaCmd.AddCommand(generateCmd, addCmd, updateCmd)
	return schemaCmd
}

// schemaContent resolves the schema body from the inline argument, a file,
// or stdin. Exactly one source must be given.
func schemaContent(args []string) ([]byte, error) {
	inline := len(args) == 2
	switch {
	case inline && schemaFile != "":
		return nil, fmt.Errorf("schema content given both inline and via --file")
	case inline:
		return []byte(args[1]), nil
	case schemaFile == "-":
		return io.ReadAll(os.Stdin)
	case schemaFile != "":
		return os.ReadFile(schemaFile)
	default:
		return nil, fmt.Errorf("schema content required: pass it inline or via --file")
	}
}
