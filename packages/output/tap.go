package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/hitclient/packages/history"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

// TAPFormatter reports each transition, journal entry or response as a TAP test point
type TAPFormatter struct {
	writer    io.Writer
	testCount int
	results   []tapResult
}

type tapResult struct {
	number int
	name   string
	passed bool
	error  string
	notes  []string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) add(r tapResult) {
	f.testCount++
	r.number = f.testCount
	f.results = append(f.results, r)
}

func (f *TAPFormatter) FormatTransition(t http.Transition) {
	name := t.Op
	if t.Input != "" {
		name += " " + t.Input
	}
	r := tapResult{name: name, passed: t.Err == nil}
	if t.Err != nil {
		r.error = t.Err.Error()
	} else {
		r.notes = append(r.notes,
			"target: "+t.After.Redacted(),
			"credentials: "+t.Credentials.String())
	}
	f.add(r)
}

func (f *TAPFormatter) FormatEntries(entries []history.Entry) {
	for _, e := range entries {
		name := e.Op
		if e.Input != "" {
			name += " " + e.Input
		}
		f.add(tapResult{name: name, passed: !e.Failed(), error: e.Error})
	}
}

func (f *TAPFormatter) FormatResponse(resp *http.Response, extracts []Extract) {
	r := tapResult{
		name:   fmt.Sprintf("%s %s", resp.Status, resp.URL),
		passed: resp.IsSuccess(),
	}
	for _, x := range extracts {
		if !x.Found {
			r.passed = false
			r.notes = append(r.notes, x.Path+" missing")
			continue
		}
		r.notes = append(r.notes, x.Path+" = "+x.Value)
	}
	f.add(r)
}

func (f *TAPFormatter) FormatError(err error) {
	f.add(tapResult{name: "error", error: err.Error()})
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush() error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)

	for _, r := range f.results {
		if r.error != "" {
			fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.name)
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.error))
			fmt.Fprintf(f.writer, "  severity: error\n")
			fmt.Fprintf(f.writer, "  ...\n")
			continue
		}

		status := "ok"
		if !r.passed {
			status = "not ok"
		}
		fmt.Fprintf(f.writer, "%s %d - %s\n", status, r.number, r.name)
		for _, n := range r.notes {
			fmt.Fprintf(f.writer, "# %s\n", n)
		}
	}

	fmt.Fprintln(f.writer)
	return nil
}

func escapeYAML(s string) string {
	// Simple YAML escaping - wrap in quotes if contains special chars
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
