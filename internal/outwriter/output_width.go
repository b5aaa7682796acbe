package outwriter

import (
	"os"

	"github.com/huangsam/ciweather/internal/contract"
	"golang.org/x/term"
)

// Bounds of the name column in tables.
const (
	minNameWidth = 15
	maxNameWidth = 60
)

// terminalWidth returns the configured width override, the detected width
// of stdout, or 80 columns when neither is available.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// getMaxNameWidth returns how wide a name column may be in a table whose
// other columns need fixedWidth characters, borders included.
func getMaxNameWidth(cfg *contract.Config, fixedWidth int) int {
	available := terminalWidth(cfg) - fixedWidth
	return min(max(available, minNameWidth), maxNameWidth)
}
