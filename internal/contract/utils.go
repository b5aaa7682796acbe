package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/ciweather/schema"
)

// Color variables for console output.
var (
	PassedColor  = color.New(color.FgGreen, color.Bold) // PassedColor represents a healthy test.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor represents standard danger.
	RunningColor = color.New(color.FgYellow)            // RunningColor represents work in progress.
	NotRunColor  = color.New(color.FgHiBlack)           // NotRunColor represents missing data.
)

// GetPlainLabel returns the plain text label of a test status.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(status schema.TestStatus) string {
	switch status {
	case schema.PassedStatus:
		return "Passed"
	case schema.FailedStatus:
		return "Failed"
	case schema.RunningStatus:
		return "Running"
	default:
		return "Not run"
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(status schema.TestStatus) string {
	text := GetPlainLabel(status)

	switch status {
	case schema.PassedStatus:
		return PassedColor.Sprint(text)
	case schema.FailedStatus:
		return FailedColor.Sprint(text)
	case schema.RunningStatus:
		return RunningColor.Sprint(text)
	default:
		return NotRunColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for snapshot cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ciweather_cache.db"
	}
	return filepath.Join(homeDir, ".ciweather_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ciweather_history.db"
	}
	return filepath.Join(homeDir, ".ciweather_history.db")
}

// TruncatePath truncates a string to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
