package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a message block with optional suggestions and help
// commands.
//
// Example output:
//
//	❌ CLASS NOT FOUND: Shop::Itme
//	   Cannot find class 'Shop::Itme'.
//
//	   Did you mean: Shop::Item?
//
//	   → See all classes: classmeta inspect <manifest>
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var header, body *color.Color
	var symbol string
	switch opts.Level {
	case ErrorLevelWarning:
		header, body, symbol = paint(opts.NoColor, color.FgYellow, color.Bold), paint(opts.NoColor, color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		header, body, symbol = paint(opts.NoColor, color.FgCyan, color.Bold), paint(opts.NoColor, color.FgCyan), "ℹ️"
	default:
		header, body, symbol = paint(opts.NoColor, color.FgRed, color.Bold), paint(opts.NoColor, color.FgRed), "❌"
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Detail != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Detail)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// ClassNotFoundError reports an unknown class with close matches.
func ClassNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CLASS NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find class '%s'.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all classes: classmeta inspect <manifest>",
		},
		NoColor: noColor,
	})
}

// ManifestError reports a failure to load or apply a manifest. Engine
// errors are shown with their code and kind.
func ManifestError(path string, err error, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "MANIFEST FAILED",
		Problem: path,
		Detail:  err.Error(),
		HelpCommands: []string{
			"List data types: classmeta types",
			"Get help: classmeta inspect --help",
		},
		NoColor: noColor,
	}

	var me *metaerrors.MetaError
	if errors.As(err, &me) {
		opts.Context = "MANIFEST FAILED (" + string(me.Kind) + ")"
		if me.Kind == metaerrors.KindUnknownType {
			opts.Suggestions = []string{"a built-in type, an alias, or a class key"}
		}
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat classmeta.yaml",
			"Get help: classmeta --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// paint returns a color that honors noColor.
func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}
