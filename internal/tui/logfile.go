package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If RELKIT_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.relkit/logs/relkit.log
func GetLogFilePath() string {
	if customPath := os.Getenv("RELKIT_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "relkit.log"
	}

	return filepath.Join(homeDir, ".relkit", "logs", "relkit.log")
}
