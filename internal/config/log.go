package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/confab-io/confab/internal/models"
)

// CreateShellLog creates a session log for a shell process and returns an
// open file positioned after a YAML-ish header. The caller streams the
// shell's output into it and closes it when the process exits.
func CreateShellLog(shellPath string, pid int) (*os.File, string, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, "", fmt.Errorf("failed to ensure logs dir: %w", err)
	}

	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, "", err
	}

	startedAt := time.Now().UTC()
	logID := "shell-" + startedAt.Format("2006-01-02T15-04-05")
	filePath := filepath.Join(logsDir, logID+".log")

	f, err := os.Create(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "shell_path: %s\n", shellPath)
	fmt.Fprintf(w, "pid: %d\n", pid)
	fmt.Fprintf(w, "started_at: %s\n", startedAt.Format(time.RFC3339))
	fmt.Fprintln(w, "---")
	if err := w.Flush(); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to write log header: %w", err)
	}

	return f, logID, nil
}

// ListShellLogs reads all shell log files and returns their metadata (newest first).
func ListShellLogs() ([]*models.ShellLogEntry, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []*models.ShellLogEntry
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "shell-") || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}

		entry, err := parseShellLogHeader(filepath.Join(logsDir, e.Name()))
		if err != nil {
			continue
		}
		logs = append(logs, entry)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].StartedAt > logs[j].StartedAt
	})

	return logs, nil
}

// ReadShellLog reads a specific shell log and returns metadata + body.
func ReadShellLog(logID string) (*models.ShellLogEntry, string, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filepath.Join(logsDir, logID+".log"))
	if err != nil {
		return nil, "", fmt.Errorf("log not found: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	entry := &models.ShellLogEntry{LogID: logID}
	headerEnd := -1
	inHeader := false

	for i, line := range lines {
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			headerEnd = i
			break
		}
		if inHeader {
			parseShellLogHeaderLine(entry, line)
		}
	}

	if headerEnd < 0 {
		return nil, "", fmt.Errorf("invalid log format")
	}

	return entry, strings.Join(lines[headerEnd+1:], "\n"), nil
}

func parseShellLogHeader(path string) (*models.ShellLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	entry := &models.ShellLogEntry{
		LogID: strings.TrimSuffix(filepath.Base(path), ".log"),
	}
	inHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			break
		}
		if inHeader {
			parseShellLogHeaderLine(entry, line)
		}
	}

	return entry, nil
}

func parseShellLogHeaderLine(entry *models.ShellLogEntry, line string) {
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) != 2 {
		return
	}
	key := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])

	switch key {
	case "shell_path":
		entry.ShellPath = val
	case "pid":
		fmt.Sscanf(val, "%d", &entry.PID)
	case "started_at":
		entry.StartedAt = val
	}
}
