package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"lychee/internal/app"
)

// newPluginsCmd creates the plugins command group.
func newPluginsCmd() *cobra.Command {
	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect the loaded plugins",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the loaded language runtimes and schema compilers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{
				text.FgHiCyan.Sprint("KIND"),
				text.FgHiCyan.Sprint("NAME"),
			})
			for _, rt := range a.Registry().LanguageRuntimes() {
				t.AppendRow(table.Row{"language runtime", rt.Language()})
			}
			for _, comp := range a.Registry().SchemaCompilers() {
				t.AppendRow(table.Row{"schema compiler", comp.Name()})
			}
			t.Render()
			return nil
		},
	}

	pluginsCmd.AddCommand(listCmd)
	return pluginsCmd
}
