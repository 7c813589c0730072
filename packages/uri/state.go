package uri

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// State is the canonical decomposition of a client's current target.
// Host is non-empty for every State returned by this package. Port is always
// resolved; it holds the scheme default when the input named none.
//
// State is a value type. User is an immutable *url.Userinfo, so copies never
// observe later changes to the State they were taken from.
type State struct {
	Scheme   string
	Host     string
	Port     int
	Path     string
	RawQuery string
	User     *url.Userinfo
}

// Fields are the separate target fields accepted when no raw URL is given.
type Fields struct {
	Scheme   string
	Host     string
	Port     int
	Path     string
	Query    string
	Username string
	Password string
}

// FromFields assembles a State from separate fields, applying defaults for
// scheme ("http"), port (by scheme) and path ("/"). A password without a
// username is dropped.
//
// Host may carry a port ("httpbin.org:8080") when Port is zero or names the
// same port. Path may carry the query when Query is empty.
func FromFields(f Fields) (State, error) {
	host, port, err := splitFieldHost(strings.TrimSpace(f.Host), f.Port)
	if err != nil {
		return State{}, err
	}

	scheme := strings.ToLower(strings.TrimSpace(f.Scheme))
	if scheme == "" {
		scheme = DefaultScheme
	}
	if !SupportedScheme(scheme) {
		return State{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, scheme)
	}

	if port == 0 {
		port = DefaultPort(scheme)
	}
	if port < 1 || port > 65535 {
		return State{}, fmt.Errorf("%w: invalid port %d", ErrMalformedURL, port)
	}

	path, query, hasQuery := strings.Cut(f.Path, "?")
	if hasQuery && f.Query != "" {
		return State{}, fmt.Errorf("%w: query given in both path and query", ErrMalformedURL)
	}
	if !hasQuery {
		query = f.Query
	}
	if strings.Contains(path, "#") {
		return State{}, fmt.Errorf("%w: fragment in path %q", ErrMalformedURL, path)
	}
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path, err = escapePath(path); err != nil {
		return State{}, err
	}

	s := State{
		Scheme:   scheme,
		Host:     strings.ToLower(host),
		Port:     port,
		Path:     path,
		RawQuery: strings.TrimPrefix(query, "?"),
	}
	s.User = Credentials(f.Username, f.Password)
	return s, nil
}

// splitFieldHost separates an optional port from host. A port in host must
// agree with port unless port is zero. Unbracketed IPv6 literals are accepted.
func splitFieldHost(host string, port int) (string, int, error) {
	if h, p, err := net.SplitHostPort(host); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return "", 0, fmt.Errorf("%w: invalid port %q in host %q", ErrMalformedURL, p, host)
		}
		if port != 0 && port != n {
			return "", 0, fmt.Errorf("%w: host %q conflicts with port %d", ErrMalformedURL, host, port)
		}
		host, port = h, n
	} else {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}

	if host == "" {
		return "", 0, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}
	if strings.ContainsAny(host, "/?#@[] ") {
		return "", 0, fmt.Errorf("%w: invalid host %q", ErrMalformedURL, host)
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", 0, fmt.Errorf("%w: invalid host %q", ErrMalformedURL, host)
	}
	return host, port, nil
}

// Credentials returns userinfo for username and password, or nil when
// username is empty. An empty password is treated as absent.
func Credentials(username, password string) *url.Userinfo {
	switch {
	case username == "":
		return nil
	case password == "":
		return url.User(username)
	default:
		return url.UserPassword(username, password)
	}
}

// FromParsed builds a State from an Absolute parse result.
func FromParsed(p *Parsed) (State, error) {
	if p == nil || p.Kind != Absolute {
		return State{}, fmt.Errorf("%w: not an absolute URL", ErrMalformedURL)
	}
	return State{
		Scheme:   p.Scheme,
		Host:     p.Host,
		Port:     p.Port,
		Path:     p.Path,
		RawQuery: p.RawQuery,
		User:     p.User,
	}, nil
}

// IsZero reports whether s holds no target.
func (s State) IsZero() bool {
	return s.Host == ""
}

// Username returns the username and whether one is set.
func (s State) Username() (string, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Username(), true
}

// Password returns the password and whether one is set.
// A "user:@host" target has an empty but present password.
func (s State) Password() (string, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Password()
}

// HasCredentials reports whether s carries a username.
func (s State) HasCredentials() bool {
	return s.User != nil
}

// HostPort returns the host with the port appended when it differs from the scheme default.
func (s State) HostPort() string {
	if s.Port == 0 || s.Port == DefaultPort(s.Scheme) {
		if strings.Contains(s.Host, ":") {
			return "[" + s.Host + "]"
		}
		return s.Host
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Addr returns host:port suitable for dialing.
func (s State) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RequestURI returns the path and query used on the request line.
func (s State) RequestURI() string {
	path := s.Path
	if path == "" {
		path = "/"
	}
	if s.RawQuery == "" {
		return path
	}
	return path + "?" + s.RawQuery
}

// URL returns a freshly allocated *url.URL for s.
func (s State) URL() *url.URL {
	u := &url.URL{
		Scheme:   s.Scheme,
		User:     s.User,
		Host:     s.HostPort(),
		RawQuery: s.RawQuery,
	}
	if p, err := url.PathUnescape(s.Path); err == nil {
		u.Path = p
		u.RawPath = s.Path
	} else {
		u.Path = s.Path
	}
	return u
}

// String renders s including credentials.
func (s State) String() string {
	if s.IsZero() {
		return ""
	}
	return s.URL().String()
}

// Redacted renders s with the password masked.
func (s State) Redacted() string {
	if s.IsZero() {
		return ""
	}
	return s.URL().Redacted()
}

// Equal reports whether s and other describe the same target and credentials.
func (s State) Equal(other State) bool {
	if s.Scheme != other.Scheme || s.Host != other.Host || s.Port != other.Port ||
		s.Path != other.Path || s.RawQuery != other.RawQuery {
		return false
	}
	u1, ok1 := s.Username()
	u2, ok2 := other.Username()
	if ok1 != ok2 || u1 != u2 {
		return false
	}
	p1, ok1 := s.Password()
	p2, ok2 := other.Password()
	return ok1 == ok2 && p1 == p2
}
