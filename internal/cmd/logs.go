package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sheetview/internal/logging"
	"github.com/Iron-Ham/sheetview/internal/session"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the debug log",
	Long: `View and filter the debug log kept in the state directory.

Examples:
  # Show the last 50 entries
  sheetview logs

  # Show everything logged by the current terminal session
  sheetview logs -s current -n 0

  # Follow the log while sheetview runs in another terminal
  sheetview logs -f

  # Only engine warnings and errors from the last hour
  sheetview logs --component engine --level warn --since 1h

  # Search for specific patterns
  sheetview logs --grep "load|sample"`,
	RunE: runLogs,
}

var (
	logsSessionID string
	logsComponent string
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsSince     string
	logsGrep      string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsSessionID, "session", "s", "", `Only entries from this session ("current" for this terminal)`)
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Only entries from this component (grid, engine, sample, tui, ...)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
}

// logEntry represents a parsed JSON log line
type logEntry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Msg       string         `json:"msg"`
	SessionID string         `json:"session_id,omitempty"`
	Component string         `json:"component,omitempty"`
	Document  string         `json:"document,omitempty"`
	Extra     map[string]any `json:"-"`
}

// UnmarshalJSON captures fields beyond the known ones in Extra.
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	aux := &struct{ *alias }{alias: (*alias)(e)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "session_id", "component", "document"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter selects entries for display.
type logFilter struct {
	minLevel  int
	since     time.Time
	grep      *regexp.Regexp
	session   string
	component string
}

var (
	logTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	logLevelStyle = map[string]lipgloss.Style{
		logging.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		logging.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		logging.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		logging.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// active reports whether any criterion is set.
func (f logFilter) active() bool {
	return f.minLevel >= 0 || !f.since.IsZero() || f.grep != nil || f.session != "" || f.component != ""
}

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return 0
	case logging.LevelInfo:
		return 1
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return -1
	}
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry *logEntry) string {
	level := strings.ToUpper(entry.Level)
	levelStyle, ok := logLevelStyle[level]
	if !ok {
		levelStyle = lipgloss.NewStyle()
	}

	var sb strings.Builder
	sb.WriteString(logTimeStyle.Render("[" + entry.Time.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle.Render("[" + level + "]"))
	if entry.Component != "" {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render(entry.Component + ":"))
	}
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)

	if entry.Document != "" {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render("document="))
		sb.WriteString(entry.Document)
	}

	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(" ")
		sb.WriteString(logFieldStyle.Render(k + "="))
		sb.WriteString(fmt.Sprintf("%v", entry.Extra[k]))
	}
	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	logPath := filepath.Join(cfg.Paths.ResolveStateDir(), logging.LogFileName)

	if _, err := appFs.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		return nil
	}

	filter, err := newLogFilter(logsLevel, logsSince, logsGrep, logsSessionID, logsComponent, time.Now())
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(cmd, logPath, filter)
	}
	return displayLogs(out, logPath, logsTail, filter)
}

// newLogFilter parses the filter flags.
func newLogFilter(level, since, grep, sessionID, component string, now time.Time) (logFilter, error) {
	f := logFilter{minLevel: -1, component: component}
	if level != "" {
		f.minLevel = levelPriority(logging.ParseLevel(level))
	}
	if since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			return f, fmt.Errorf("invalid duration format: %w", err)
		}
		f.since = now.Add(-d)
	}
	if grep != "" {
		re, err := regexp.Compile(grep)
		if err != nil {
			return f, fmt.Errorf("invalid grep pattern: %w", err)
		}
		f.grep = re
	}
	f.session = sessionID
	if sessionID == "current" {
		f.session = session.ID()
	}
	return f, nil
}

// displayLogs prints the last tail entries that pass the filter.
func displayLogs(out io.Writer, logPath string, tail int, filter logFilter) error {
	file, err := appFs.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if line, ok := filterLine(scanner.Text(), filter); ok {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	for _, entry := range entries {
		fmt.Fprintln(out, entry)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// followLogs implements tail -f behavior until the command's context ends.
func followLogs(cmd *cobra.Command, logPath string, filter logFilter) error {
	file, err := appFs.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Following logs... (Ctrl+C to stop)\n\n")

	ctx := cmd.Context()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	reader := bufio.NewReader(file)
	var partial string
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// Keep an unterminated line until the rest is written.
			partial += line
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading log file: %w", err)
		}
		line, partial = partial+line, ""
		if formatted, ok := filterLine(line, filter); ok {
			fmt.Fprintln(out, formatted)
		}
	}
}

// filterLine parses and formats one log line. Lines that are not JSON are
// passed through unless a filter is active.
func filterLine(line string, filter logFilter) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line, !filter.active()
	}
	if !passesFilters(&entry, filter) {
		return "", false
	}
	return formatLogEntry(&entry), true
}

// passesFilters checks if a log entry passes all filter criteria
func passesFilters(entry *logEntry, f logFilter) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}
	if f.session != "" && entry.SessionID != f.session {
		return false
	}
	if f.component != "" && entry.Component != f.component {
		return false
	}
	if f.grep != nil {
		searchText := entry.Msg + " " + entry.Document
		for _, v := range entry.Extra {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if !f.grep.MatchString(searchText) {
			return false
		}
	}
	return true
}
