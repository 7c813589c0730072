package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"github.com/abdul-hamid-achik/hitclient/packages/history"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/output"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatTransition(t http.Transition)
	FormatEntries(entries []history.Entry)
	FormatResponse(resp *http.Response, extracts []output.Extract)
	FormatError(err error)
	FormatHeader(version string)
	Flush() error
}

// newFormatter returns the formatter for the effective output format and a
// func that closes the output file, if any.
func newFormatter(cmd *cobra.Command, settings *config.Config) (Formatter, func() error, error) {
	w, closeOut, err := fileOrStdout(cmd)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(settings.Output) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w)), closeOut, nil
	case "tap":
		return output.NewTAPFormatter(output.TAPWithWriter(w)), closeOut, nil
	case "", "console":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(settings.GetNoColor()),
		), closeOut, nil
	default:
		_ = closeOut()
		return nil, nil, usageError(fmt.Errorf("unknown output format %q (use console, json or tap)", settings.Output))
	}
}
