package cmd

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"lychee/internal/app"
	strx "lychee/pkg/strings"
)

var (
	devServices    []string
	devMode        string
	devNoProxy     bool
	devNoDashboard bool
)

// newDevCmd creates the dev command group: the service lifecycle verbs.
func newDevCmd() *cobra.Command {
	devCmd := &cobra.Command{
		Use:   "dev",
		Short: "Manage the workspace's services",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start services in dependency order",
		Long: `Start all services of the workspace, or a subset, in dependency
order. By default the command keeps running until interrupted and stops
every service on the way out.

Examples:
  lychee dev start
  lychee dev start -s api,web --mode dev
  lychee dev start --no-proxy --no-dashboard`,
		Args: cobra.NoArgs,
		RunE: runDevStart,
	}
	startCmd.Flags().StringSliceVarP(&devServices, "services", "s", nil, "Only start these services")
	startCmd.Flags().StringVar(&devMode, "mode", "dev", "Mode the services run in")
	startCmd.Flags().BoolVar(&devNoProxy, "no-proxy", false, "Do not run the local proxy")
	startCmd.Flags().BoolVar(&devNoDashboard, "no-dashboard", false, "Do not run the dashboard")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop all running services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}
			return a.StopAll(cmd.Context())
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart <service>",
		Short: "Restart a single service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(projectDir)
			if err != nil {
				return err
			}
			return a.Restart(cmd.Context(), args[0])
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the workspace's services",
		Args:  cobra.NoArgs,
		RunE:  runDevStatus,
	}

	devCmd.AddCommand(startCmd, stopCmd, restartCmd, statusCmd)
	return devCmd
}

func runDevStart(cmd *cobra.Command, args []string) error {
	a, err := app.New(projectDir)
	if err != nil {
		return err
	}
	return a.StartAll(cmd.Context(), devServices, devMode, !devNoProxy, !devNoDashboard)
}

func runDevStatus(cmd *cobra.Command, args []string) error {
	a, err := app.New(projectDir)
	if err != nil {
		return err
	}

	status := a.Status()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("LANGUAGE"),
		text.FgHiCyan.Sprint("PID"),
		text.FgHiCyan.Sprint("STATE"),
		text.FgHiCyan.Sprint("COMMAND"),
	})

	for _, name := range a.Project().Services() {
		svc, err := a.Project().Get(name)
		if err != nil {
			continue
		}
		pid, state, command := "-", "stopped", ""
		if st, ok := status[name]; ok {
			pid = fmt.Sprintf("%d", st.PID)
			command = strx.TruncateLine(st.Command, strx.DefaultCommandMaxLen)
			if st.Running {
				state = text.FgGreen.Sprint("running")
			} else {
				state = text.FgYellow.Sprint("exited")
			}
		}
		t.AppendRow(table.Row{name, svc.Language, pid, state, command})
	}

	// Tracked processes with no matching service still show up.
	var orphans []string
	for name := range status {
		if _, err := a.Project().Get(name); err != nil {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		t.AppendRow(table.Row{
			name, "?", fmt.Sprintf("%d", status[name].PID), "running",
			strx.TruncateLine(status[name].Command, strx.DefaultCommandMaxLen),
		})
	}

	t.Render()
	return nil
}
