package printer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// NO_COLOR disables colour; otherwise colour is kept even without a TTY.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

// Out and Err are where messages go. Tests swap them for buffers.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Success prints a green message prefixed with a checkmark
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Out, msg)
}

// Info prints an uncoloured message
func Info(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

// Warning prints a yellow message prefixed with a warning sign
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Err, msg)
}

// Error prints a titled error with explanation and suggestions to Err and
// returns a bare error carrying the title for Cobra, which is set to stay
// silent about it.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error plus key/value details printed between the
// explanation and the suggestions.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Err, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Err, "%s\n", explanation)
	}

	if len(context) > 0 {
		fmt.Fprintln(Err)
		for key, value := range context {
			fmt.Fprintf(Err, "  %s: %s\n", key, value)
		}
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(Err, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(Err, "\nEither:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(Err, "  %d. %s\n", i+1, suggestion)
		}
	}

	return &reportedError{title: title}
}

// reportedError is an error whose details have already been printed.
type reportedError struct {
	title string
}

func (e *reportedError) Error() string { return e.title }

// IsReported reports whether err was produced by Error or ErrorWithContext,
// meaning the user has already seen it.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

// Step prints a cyan progress line
func Step(format string, a ...any) {
	cyan.Fprintf(Out, "→ %s", fmt.Sprintf(format, a...))
}

// Priority colours a task priority label.
func Priority(p string) string {
	switch p {
	case "urgent":
		return red.Sprint(p)
	case "high":
		return yellow.Sprint(p)
	case "low":
		return faint.Sprint(p)
	default:
		return p
	}
}

// Swatch renders a hex colour as a coloured block, or the hex itself when it
// cannot be parsed.
func Swatch(hex string) string {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%2x%2x%2x", &r, &g, &b); err != nil {
		return hex
	}
	if color.NoColor {
		return hex
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm■\x1b[0m", r, g, b)
}

// Println prints a plain line
func Println(a ...any) {
	fmt.Fprintln(Out, a...)
}

// Printf prints a plain formatted message
func Printf(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}
