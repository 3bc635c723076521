package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFileName is the name of the debug log file.
const LogFileName = "memex.log"

// DefaultLogDir returns the default log directory (~/.memex/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".memex", "logs")
	}
	return filepath.Join(home, ".memex", "logs")
}

// DefaultLogPath returns the default debug log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), LogFileName)
}

// FindLogFile returns explicit when set, otherwise the default log path.
// Returns an error if the file does not exist.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no log file found. Run a command with --debug first.\nExpected at: %s", path)
}

// RotatedFiles lists path followed by its rotated siblings, oldest last.
func RotatedFiles(path string, maxFiles int) []string {
	var files []string
	if _, err := os.Stat(path); err == nil {
		files = append(files, path)
	}
	for i := 1; i <= maxFiles; i++ {
		rotated := rotatedName(path, i)
		if _, err := os.Stat(rotated); err == nil {
			files = append(files, rotated)
		}
	}
	return files
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}

func rotatedName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}
