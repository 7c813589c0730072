package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitclient/packages/history"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary     JSONSummary      `json:"summary"`
	Transitions []JSONTransition `json:"transitions,omitempty"`
	Target      *JSONTarget      `json:"target,omitempty"`
	History     []history.Entry  `json:"history,omitempty"`
	Response    *JSONResponse    `json:"response,omitempty"`
	Errors      []string         `json:"errors,omitempty"`
	Time        string           `json:"time"`
}

// JSONSummary counts applied and rejected transitions
type JSONSummary struct {
	Total    int `json:"total"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
}

// JSONTarget is a State snapshot; the password is reported only as present or not
type JSONTarget struct {
	URL         string `json:"url"`
	Scheme      string `json:"scheme"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Path        string `json:"path"`
	Query       string `json:"query,omitempty"`
	Username    string `json:"username,omitempty"`
	HasPassword bool   `json:"hasPassword"`
}

// JSONTransition represents one init or set_url step
type JSONTransition struct {
	Op          string      `json:"op"`
	Input       string      `json:"input,omitempty"`
	Kind        string      `json:"kind"`
	Target      *JSONTarget `json:"target"`
	Credentials string      `json:"credentials"`
	Error       string      `json:"error,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Duration   float64           `json:"duration"`
	Body       string            `json:"body,omitempty"`
	Extracts   []Extract         `json:"extracts,omitempty"`
}

// JSONFormatter accumulates results and writes a single document on Flush
type JSONFormatter struct {
	writer io.Writer
	out    JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// NewJSONTarget snapshots s without its password.
func NewJSONTarget(s uri.State) *JSONTarget {
	if s.IsZero() {
		return nil
	}
	user, _ := s.Username()
	_, hasPass := s.Password()
	return &JSONTarget{
		URL:         s.Redacted(),
		Scheme:      s.Scheme,
		Host:        s.Host,
		Port:        s.Port,
		Path:        s.Path,
		Query:       s.RawQuery,
		Username:    user,
		HasPassword: hasPass,
	}
}

func (f *JSONFormatter) FormatTransition(t http.Transition) {
	jt := JSONTransition{
		Op:          t.Op,
		Input:       t.Input,
		Kind:        t.Kind.String(),
		Target:      NewJSONTarget(t.After),
		Credentials: t.Credentials.String(),
	}
	f.out.Summary.Total++
	if t.Err != nil {
		jt.Error = t.Err.Error()
		f.out.Summary.Rejected++
	} else {
		f.out.Summary.Applied++
	}
	f.out.Transitions = append(f.out.Transitions, jt)
	f.out.Target = jt.Target
}

func (f *JSONFormatter) FormatEntries(entries []history.Entry) {
	f.out.History = append(f.out.History, entries...)
	for _, e := range entries {
		f.out.Summary.Total++
		if e.Failed() {
			f.out.Summary.Rejected++
		} else {
			f.out.Summary.Applied++
		}
	}
}

func (f *JSONFormatter) FormatResponse(resp *http.Response, extracts []Extract) {
	jr := &JSONResponse{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Headers,
		Duration:   float64(resp.Duration.Milliseconds()),
		Extracts:   extracts,
	}
	if len(extracts) == 0 {
		jr.Body = resp.BodyString()
	}
	f.out.Response = jr
}

func (f *JSONFormatter) FormatError(err error) {
	f.out.Errors = append(f.out.Errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	f.out.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.out)
}
