package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/autocare/autocare/internal/config"
	"github.com/autocare/autocare/internal/logging"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the client log",
	Long: `View and filter the autocare client log.

Examples:
  # Show the last 50 entries
  autocare logs

  # Follow the log while another terminal books
  autocare logs -f

  # Only warnings and errors from the last hour
  autocare logs --level warn --since 1h

  # Everything about one booking
  autocare logs -n 0 --grep 'booking_id=42'`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail   int
	logsFollow bool
	logsLevel  string
	logsSince  string
	logsGrep   string
)

func registerLogsCmd(parent *cobra.Command) {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter entries matching pattern (regex)")
	parent.AddCommand(logsCmd)
}

// logEntry is a parsed JSON log line.
type logEntry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Msg       string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Extra     map[string]any `json:"-"`
}

// contextKeys are rendered right after the message, in this order.
var contextKeys = []string{"time", "level", "msg", "component", "user_id", "request_id"}

func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	if err := json.Unmarshal(data, (*alias)(e)); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range contextKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter holds the parsed --level, --since and --grep flags.
type logFilter struct {
	minLevel int
	since    time.Time
	grep     *regexp.Regexp
}

func newLogFilter(level, since, grep string, now time.Time) (logFilter, error) {
	f := logFilter{minLevel: -1}
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
	return f, nil
}

func (f logFilter) passes(e *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(e.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && e.Time.Before(f.since) {
		return false
	}
	if f.grep != nil {
		text := e.Msg
		for _, kv := range e.fields() {
			text += " " + kv
		}
		if !f.grep.MatchString(text) {
			return false
		}
	}
	return true
}

// fields returns key=value pairs for the context and extra attributes,
// context first, extras sorted by key.
func (e *logEntry) fields() []string {
	var out []string
	for _, kv := range [][2]string{{"component", e.Component}, {"user_id", e.UserID}, {"request_id", e.RequestID}} {
		if kv[1] != "" {
			out = append(out, kv[0]+"="+kv[1])
		}
	}
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, e.Extra[k]))
	}
	return out
}

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return styles.Muted
	case logging.LevelInfo:
		return styles.Primary
	case logging.LevelWarn:
		return styles.WarningMsg
	case logging.LevelError:
		return styles.ErrorMsg
	default:
		return styles.Text
	}
}

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

func formatLogEntry(e *logEntry) string {
	var sb strings.Builder
	sb.WriteString(styles.Muted.Render("[" + e.Time.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle(e.Level).Render("[" + strings.ToUpper(e.Level) + "]"))
	sb.WriteString(" ")
	sb.WriteString(e.Msg)
	for _, kv := range e.fields() {
		k, v, _ := strings.Cut(kv, "=")
		sb.WriteString(" ")
		sb.WriteString(styles.Secondary.Render(k + "="))
		sb.WriteString(v)
	}
	return sb.String()
}

// formatLine renders one raw log line, or returns false if it is filtered out.
// Lines that are not JSON are shown as is.
func formatLine(line string, f logFilter) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	var e logEntry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return line, true
	}
	if !f.passes(&e) {
		return "", false
	}
	return formatLogEntry(&e), true
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath := filepath.Join(config.LogDir(), logging.LogFileName)
	w := out(cmd)

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(w, "No log file yet.")
		fmt.Fprintln(w, "Logs are written to:", logPath)
		return nil
	}

	filter, err := newLogFilter(logsLevel, logsSince, logsGrep, time.Now())
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(cmd.Context(), w, logPath, filter)
	}
	return displayLogs(w, logPath, logsTail, filter)
}

func displayLogs(w io.Writer, logPath string, tail int, filter logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if s, ok := formatLine(scanner.Text(), filter); ok {
			entries = append(entries, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching log entries found.")
	}
	return nil
}

// followLogs prints entries appended to logPath until ctx is cancelled. The
// log directory is watched so a rotation reopens the new file.
func followLogs(ctx context.Context, w io.Writer, logPath string, filter logFilter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(logPath)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}
	reader := bufio.NewReader(file)

	fmt.Fprintf(w, "Following logs... (Ctrl+C to stop)\n\n")

	var pending string
	drain := func() error {
		for {
			chunk, err := reader.ReadString('\n')
			pending += chunk
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("error reading log file: %w", err)
			}
			if s, ok := formatLine(pending, filter); ok {
				fmt.Fprintln(w, s)
			}
			pending = ""
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching log file: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(logPath) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				_ = file.Close()
				if file, err = os.Open(logPath); err != nil {
					return fmt.Errorf("failed to reopen log file: %w", err)
				}
				reader.Reset(file)
				pending = ""
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if err := drain(); err != nil {
					return err
				}
			}
		}
	}
}
