package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sheetview/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage per-terminal session state",
	Long: `Sheetview remembers per terminal session whether the demo sample was
already shown. Sessions are named after the shell's process id unless
SHEETVIEW_SESSION is set.`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE:  runSessionsList,
}

var sessionsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove sessions whose process is no longer running",
	RunE:  runSessionsClean,
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset [session-id]",
	Short: "Show the demo sample again on the next launch",
	Long: `Forget that the demo sample was shown, for the current session or the
given one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionsReset,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsCleanCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	infos, err := session.List(appFs, cfg.Paths.ResolveStateDir())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	fmt.Fprintln(out, sessionsTable(infos, session.ID(), session.IsProcessAlive))
	return nil
}

// sessionsTable lays out one row per session, marking current.
func sessionsTable(infos []session.Info, current string, alive func(pid int) bool) string {
	cell := lipgloss.NewStyle().PaddingRight(2)
	t := table.New().
		BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
		BorderColumn(false).BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			return cell
		}).
		Headers("SESSION", "STATE", "SAMPLE SHOWN")
	for _, info := range infos {
		id := info.ID
		if id == current {
			id += " (current)"
		}
		t.Row(id, sessionState(info, alive), strconv.FormatBool(info.SampleLoaded))
	}
	return t.Render()
}

// sessionState describes whether a session's process is still around.
func sessionState(info session.Info, alive func(pid int) bool) string {
	switch {
	case info.PID == 0:
		return "named"
	case alive(info.PID):
		return "running"
	default:
		return "stale"
	}
}

func runSessionsClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	removed, err := session.Prune(appFs, cfg.Paths.ResolveStateDir(), session.IsProcessAlive)
	if err != nil {
		return fmt.Errorf("failed to clean sessions: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale session(s)\n", removed)
	return nil
}

func runSessionsReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := session.ID()
	if len(args) == 1 {
		id = args[0]
	}
	marker := session.NewMarker(appFs, cfg.Paths.ResolveStateDir(), id, nil)
	if err := marker.Forget(); err != nil {
		return fmt.Errorf("failed to reset session %s: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "The sample will be shown again in session %s\n", id)
	return nil
}
