package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind classifies a URL string.
type Kind int

const (
	// Relative input carries a path and/or query only.
	Relative Kind = iota
	// Absolute input carries a scheme and a host.
	Absolute
	// Assembled marks a target built from separate fields rather than parsed.
	Assembled
	// Unknown marks input that was rejected before it could be resolved.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	case Assembled:
		return "fields"
	default:
		return "unknown"
	}
}

// DefaultScheme is used when a target is assembled without one.
const DefaultScheme = "http"

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// DefaultPort returns the well-known port for scheme, or 0 if the scheme is not supported.
func DefaultPort(scheme string) int {
	return defaultPorts[strings.ToLower(scheme)]
}

// SupportedScheme reports whether scheme can be used for a target.
func SupportedScheme(scheme string) bool {
	_, ok := defaultPorts[strings.ToLower(scheme)]
	return ok
}

// Parsed is the decomposition of a single URL string.
// For Relative input only Path and RawQuery are set; an empty Path means
// the input did not name a path (e.g. "?page=2").
type Parsed struct {
	Kind     Kind
	Scheme   string
	Host     string
	Port     int
	Path     string
	RawQuery string
	User     *url.Userinfo
}

// Classify reports whether input is Absolute or Relative without validating the rest of it.
func Classify(input string) Kind {
	scheme, rest, ok := splitScheme(input)
	if !ok || !SupportedScheme(scheme) {
		return Relative
	}
	authority := rest
	if i := strings.IndexAny(authority, "/?#"); i >= 0 {
		authority = authority[:i]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	host := authority
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i > 0 {
			host = host[1:i]
		}
	} else if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return Relative
	}
	return Absolute
}

// Parse decomposes input. Input with a scheme but no host, an unsupported
// scheme, an invalid port, or a password without a username is ErrMalformedURL.
func Parse(input string) (*Parsed, error) {
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedURL)
	}
	if i := strings.IndexFunc(input, invalidRune); i >= 0 {
		return nil, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedURL, input[i], i)
	}

	scheme, rest, ok := splitScheme(input)
	if !ok {
		return parseRelative(input)
	}
	scheme = strings.ToLower(scheme)
	if !SupportedScheme(scheme) {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, scheme)
	}

	u, err := url.Parse(scheme + "://" + rest)
	if err != nil {
		// url.Error repeats the input, which may hold a password
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}
	if u.User != nil && u.User.Username() == "" {
		return nil, fmt.Errorf("%w: password without username", ErrMalformedURL)
	}

	port := DefaultPort(scheme)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrMalformedURL, p)
		}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return &Parsed{
		Kind:     Absolute,
		Scheme:   scheme,
		Host:     strings.ToLower(host),
		Port:     port,
		Path:     path,
		RawQuery: u.RawQuery,
		User:     u.User,
	}, nil
}

func parseRelative(input string) (*Parsed, error) {
	if i := strings.IndexByte(input, '#'); i >= 0 {
		input = input[:i]
	}
	path, query, hasQuery := strings.Cut(input, "?")
	switch {
	case path == "" && !hasQuery:
		path = "/"
	case path != "" && !strings.HasPrefix(path, "/"):
		path = "/" + path
	}
	if path != "" {
		var err error
		if path, err = escapePath(path); err != nil {
			return nil, err
		}
	}
	return &Parsed{
		Kind:     Relative,
		Path:     path,
		RawQuery: query,
	}, nil
}

// escapePath checks the percent-encoding of p and returns it in the form
// url.Parse gives absolute paths, so the same path always compares equal.
func escapePath(p string) (string, error) {
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	u := &url.URL{Path: unescaped, RawPath: p}
	return u.EscapedPath(), nil
}

// splitScheme returns the scheme and the remainder after "://".
// The scheme must follow RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func splitScheme(input string) (scheme, rest string, ok bool) {
	i := strings.Index(input, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme = input[:i]
	for j := 0; j < len(scheme); j++ {
		c := scheme[j]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", "", false
		}
	}
	return scheme, input[i+3:], true
}

// Redact masks the password in the userinfo of an absolute URL string.
// Other input is returned as is.
func Redact(input string) string {
	scheme, rest, ok := splitScheme(input)
	if !ok {
		return input
	}
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	at := strings.LastIndex(rest[:end], "@")
	if at < 0 {
		return input
	}
	user, _, hasPassword := strings.Cut(rest[:at], ":")
	if !hasPassword {
		return input
	}
	return scheme + "://" + user + ":xxxxx" + rest[at:]
}

func invalidRune(r rune) bool {
	return r <= ' ' || r == 0x7f
}
