package logger

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger prints statement results and errors to a writer, coloring
// them when the writer is a TTY — the same "color only on a terminal"
// rule the teacher's console_color.go follows via fatih/color's built-in
// detection, made explicit here via go-isatty so the CLI can choose a
// plain writer (e.g. when piped) without surprises.
type ConsoleLogger struct {
	w       io.Writer
	color   bool
	success *color.Color
	fail    *color.Color
	label   *color.Color
}

// NewConsoleLogger creates a ConsoleLogger writing to w. Color is enabled
// automatically when w is os.Stdout/os.Stderr and that file descriptor is
// a terminal.
func NewConsoleLogger(w io.Writer) *ConsoleLogger {
	enableColor := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		enableColor = isatty.IsTerminal(f.Fd())
	}
	return &ConsoleLogger{
		w:       w,
		color:   enableColor,
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
	}
}

// RowCount reports a mutation's affected-row count.
func (c *ConsoleLogger) RowCount(n int) {
	if c.color {
		fmt.Fprintf(c.w, "%s %s\n", c.label.Sprint("rows affected:"), c.success.Sprintf("%d", n))
		return
	}
	fmt.Fprintf(c.w, "rows affected: %d\n", n)
}

// Error reports a failed statement, coloring its "error:" label red; the
// error text itself, kind included, is printed uncolored.
func (c *ConsoleLogger) Error(err error) {
	if c.color {
		fmt.Fprintf(c.w, "%s %v\n", c.fail.Sprint("error:"), err)
		return
	}
	fmt.Fprintf(c.w, "error: %v\n", err)
}
