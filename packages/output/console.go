package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/hitclient/packages/history"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

// Extract is one --jsonpath lookup against a response body.
type Extract struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// formatBody truncates a response body for display
func formatBody(b []byte, maxLen int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatTransition(t http.Transition) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	label := t.Op
	if t.Input != "" {
		label += " " + t.Input
	}

	if t.Err != nil {
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), label, red(fmt.Sprintf("(%v)", t.Err)))
		if f.verbose {
			fmt.Fprintf(f.writer, "    kept: %s\n", t.After.Redacted())
		}
		return
	}

	fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), label, cyan("→ "+t.After.Redacted()))

	switch t.Credentials {
	case uri.CredentialsReset:
		fmt.Fprintf(f.writer, "    %s\n", yellow("credentials cleared"))
	case uri.CredentialsReplaced:
		fmt.Fprintf(f.writer, "    %s\n", yellow("credentials replaced"))
	}

	if f.verbose {
		f.formatState(t.After)
	}
}

func (f *ConsoleFormatter) formatState(s uri.State) {
	fmt.Fprintf(f.writer, "    Scheme:   %s\n", s.Scheme)
	fmt.Fprintf(f.writer, "    Host:     %s\n", s.Host)
	fmt.Fprintf(f.writer, "    Port:     %d\n", s.Port)
	fmt.Fprintf(f.writer, "    Path:     %s\n", s.Path)
	if s.RawQuery != "" {
		fmt.Fprintf(f.writer, "    Query:    %s\n", s.RawQuery)
	}
	if user, ok := s.Username(); ok {
		fmt.Fprintf(f.writer, "    Username: %s\n", user)
	}
	if _, ok := s.Password(); ok {
		fmt.Fprintf(f.writer, "    Password: xxxxx\n")
	}
}

func (f *ConsoleFormatter) FormatEntries(entries []history.Entry) {
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintf(f.writer, "No transitions recorded\n")
		return
	}

	for _, e := range entries {
		ts := faint(e.At.Local().Format("2006-01-02 15:04:05"))
		if e.Failed() {
			fmt.Fprintf(f.writer, "%s %s %s %s\n", ts, bold(e.Op), e.Input, red("("+e.Error+")"))
			continue
		}
		fmt.Fprintf(f.writer, "%s %s %s\n", ts, bold(e.Op), e.After)
		if f.verbose {
			fmt.Fprintf(f.writer, "    id=%s kind=%s credentials=%s\n", e.ID, e.Kind, e.Credentials)
			if e.Before != "" {
				fmt.Fprintf(f.writer, "    from %s\n", e.Before)
			}
		}
	}
	fmt.Fprintf(f.writer, "\n%d transitions\n", len(entries))
}

func (f *ConsoleFormatter) FormatResponse(resp *http.Response, extracts []Extract) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	status := statusColor(resp).Sprint(resp.Status)
	fmt.Fprintf(f.writer, "%s %s %s\n", status, resp.URL, cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		for k, v := range resp.Headers {
			fmt.Fprintf(f.writer, "  %s: %s\n", k, v)
		}
	}

	if len(extracts) > 0 {
		for _, x := range extracts {
			if !x.Found {
				fmt.Fprintf(f.writer, "  %s = %s\n", x.Path, red("<missing>"))
				continue
			}
			fmt.Fprintf(f.writer, "  %s = %s\n", x.Path, x.Value)
		}
		return
	}

	if len(resp.Body) > 0 {
		body := resp.Body
		limit := 500
		if f.verbose {
			limit = 1 << 16
			if resp.IsJSON() {
				var indented bytes.Buffer
				if json.Indent(&indented, body, "", "  ") == nil {
					body = indented.Bytes()
				}
			}
		}
		fmt.Fprintf(f.writer, "%s\n", formatBody(body, limit))
	}
}

func statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen)
	case resp.IsRedirect():
		return color.New(color.FgYellow)
	case resp.IsClientError(), resp.IsServerError():
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitclient"), version)
}

// Flush is a no-op; console output is written immediately.
func (f *ConsoleFormatter) Flush() error {
	return nil
}
