package cliutils

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/headerlint/framework"
)

var (
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("220")
	colorCount   = lipgloss.Color("51")
	colorDim     = lipgloss.Color("241")

	errorLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	warnLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning)

	countStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCount)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Console renders run events for a terminal. It implements
// framework.Telemetry so it can sit next to the debug log in a
// MultiplexTelemetry.
type Console struct {
	out      io.Writer
	err      io.Writer
	color    bool
	verbose  bool
	warnings int
	mu       sync.Mutex
}

// NewConsole writes informational lines to out and problems to errOut.
func NewConsole(out, errOut io.Writer, color, verbose bool) *Console {
	return &Console{out: out, err: errOut, color: color, verbose: verbose}
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}

// Infof prints an informational line.
func (c *Console) Infof(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Errorf prints an error line with a bold "Error:" label.
func (c *Console) Errorf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.err, "%s %s\n", c.style(errorLabelStyle, "Error:"), fmt.Sprintf(format, args...))
}

// Warnf prints a warning line with a "WARN:" label.
func (c *Console) Warnf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.err, "%s %s\n", c.style(warnLabelStyle, "WARN:"), fmt.Sprintf(format, args...))
}

// Count styles a counter for inline use.
func (c *Console) Count(n int) string {
	return c.style(countStyle, fmt.Sprintf("%d", n))
}

// Warnings returns how many warning events were rendered so far.
func (c *Console) Warnings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

// Emit renders one run event.
func (c *Console) Emit(event framework.Event) {
	if event.IsWarning() {
		c.mu.Lock()
		c.warnings++
		c.mu.Unlock()
	}
	switch event.Type {
	case framework.EventIndexBuilt:
		switch event.Message {
		case "local":
			c.Infof("Parsed local code [%v Headers, %v Sources]", event.Metadata["headers"], event.Metadata["sources"])
		default:
			c.Infof("Parsed %s code [%v Headers]", event.Message, event.Metadata["headers"])
		}
	case framework.EventRootMissing:
		c.Errorf("Cannot find index root: %s", event.Path)
	case framework.EventMalformedBlock:
		c.Warnf("Malformed custom include block. %s", filepath.Base(event.Path))
	case framework.EventLateInclude:
		c.Warnf("Include not processed: %s:%d", filepath.Base(event.Path), event.Line)
	case framework.EventMissingCategory:
		c.Warnf("Blueprint access doesn't have a category. [%s:%d] %v", filepath.Base(event.Path), event.Line, event.Metadata["text"])
	case framework.EventFileFailed:
		c.Errorf("%s: %s", event.Path, event.Message)
	case framework.EventLongFilename:
		c.Errorf("%s", event.Path)
	case framework.EventFileModified:
		if c.verbose {
			c.Infof("%s %s", c.style(dimStyle, "Modified:"), event.Path)
		}
	case framework.EventFileSkipped:
		if c.verbose {
			c.Infof("%s %s (%s)", c.style(dimStyle, "Skipped:"), event.Path, event.Message)
		}
	case framework.EventRunSummary:
		c.Infof("Written %s Headers, %s Sources", c.Count(toInt(event.Metadata["headers"])), c.Count(toInt(event.Metadata["sources"])))
	case framework.EventToolOutput:
		c.Infof("%s", event.Message)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
