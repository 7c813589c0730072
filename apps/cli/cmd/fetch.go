package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Resolve the target and send one request to it",
	Long: `Initialize a client handle, apply any --set updates, then send one request.

The optional argument is resolved against the target for this request only;
the handle's target is not changed by it. Credentials go in the
Authorization header (basic, or digest after a challenge).

Examples:
  hitclient fetch --url http://httpbin.org/ /get
  hitclient fetch --host httpbin.org -u user --password passwd /basic-auth/user/passwd
  hitclient fetch --url http://httpbin.org/ -X POST -d '{"a":1}' /post -j json.a
  hitclient fetch --config .hitclient.yaml --param page=2 -j args.page`,
	Args: cobra.MaximumNArgs(1),
	RunE: fetchCommand,
}

var (
	methodFlag   string
	dataFlag     string
	paramFlags   []string
	jsonPathFlag []string
)

func init() {
	addTargetFlags(fetchCmd)
	fetchCmd.Flags().StringArrayVarP(&setFlags, "set", "s", nil, "URL update to apply before the request (repeatable)")
	fetchCmd.Flags().StringVarP(&methodFlag, "method", "X", "GET", "HTTP method")
	fetchCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body")
	fetchCmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Query parameter 'name=value' (repeatable)")
	fetchCmd.Flags().StringArrayVarP(&jsonPathFlag, "jsonpath", "j", nil, "Print the value at this gjson path of the body (repeatable)")
}

func fetchCommand(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.apply(setFlags, true); err != nil {
		_ = s.formatter.Flush()
		return err
	}

	req, err := buildRequest(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.formatter.FormatError(err)
		_ = s.formatter.Flush()
		return err
	}

	extracts, missing := extract(resp, jsonPathFlag)
	s.formatter.FormatResponse(resp, extracts)
	if err := s.formatter.Flush(); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	var errs []error
	switch {
	case resp.IsRedirect():
		errs = append(errs, fmt.Errorf("redirect not followed: %s", resp.Status))
	case !resp.IsSuccess():
		errs = append(errs, fmt.Errorf("request failed: %s", resp.Status))
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("no value at %s", strings.Join(missing, ", ")))
	}
	return errors.Join(errs...)
}

func buildRequest(args []string) (*http.Request, error) {
	var target string
	if len(args) > 0 {
		target = args[0]
	}

	req := http.NewRequest(strings.ToUpper(methodFlag), target)
	if dataFlag != "" {
		req.SetBody(dataFlag)
	}
	for _, p := range paramFlags {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, usageError(fmt.Errorf("invalid query parameter %q (use 'name=value')", p))
		}
		req.SetQueryParam(name, value)
	}
	return req, nil
}

// extract looks up each gjson path in the body and reports the ones missing.
func extract(resp *http.Response, paths []string) ([]output.Extract, []string) {
	var (
		extracts []output.Extract
		missing  []string
	)
	for _, p := range paths {
		res, ok := resp.JSON(p)
		extracts = append(extracts, output.Extract{Path: p, Value: res.String(), Found: ok})
		if !ok {
			missing = append(missing, p)
		}
	}
	return extracts, missing
}
