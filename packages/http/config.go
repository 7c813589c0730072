package http

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// AuthType selects how target credentials are presented to the server.
type AuthType int

const (
	// AuthBasic sends credentials preemptively with the Basic scheme.
	AuthBasic AuthType = iota
	// AuthDigest answers a Digest challenge from the server.
	AuthDigest
	// AuthNone never sends credentials.
	AuthNone
)

func (a AuthType) String() string {
	switch a {
	case AuthBasic:
		return "basic"
	case AuthDigest:
		return "digest"
	case AuthNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseAuthType converts a name such as "basic" to an AuthType. Empty means AuthBasic.
func ParseAuthType(s string) (AuthType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "basic":
		return AuthBasic, nil
	case "digest":
		return AuthDigest, nil
	case "none":
		return AuthNone, nil
	default:
		return AuthBasic, fmt.Errorf("unknown auth type %q", s)
	}
}

// Config is the initialization record for a Client.
//
// The target is either URL, or Host with optional Scheme, Port, Path and
// Query. When URL is set the separate target fields are ignored, except that
// Username and Password are used if the URL carries no userinfo.
type Config struct {
	URL      string
	Host     string
	Port     int
	Path     string
	Query    string
	Scheme   string
	Username string
	Password string

	AuthType        AuthType
	Timeout         time.Duration
	FollowRedirects *bool
	MaxRedirects    int
	ValidateSSL     *bool
	Proxy           string
	Headers         map[string]string
	RateLimit       float64 // requests per second, 0 disables
}

// Validate reports whether c supplies enough information for an initial target.
// No network validation is done.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNoTarget
	}
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.Host) == "" {
		return ErrNoTarget
	}
	if c.Scheme != "" && !uri.SupportedScheme(c.Scheme) {
		return fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, c.Scheme)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrMalformedURL, c.Port)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative: %d", c.MaxRedirects)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative: %v", c.RateLimit)
	}
	return validateHeaders(c.Headers)
}

func validateHeaders(headers map[string]string) error {
	for name, value := range headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("%w: value of %s contains control characters", ErrInvalidHeader, name)
		}
	}
	return nil
}

// target builds the initial State from c. c must have passed Validate.
func (c *Config) target() (uri.State, error) {
	if raw := strings.TrimSpace(c.URL); raw != "" {
		p, err := uri.Parse(raw)
		if err != nil {
			return uri.State{}, err
		}
		if p.Kind != uri.Absolute {
			return uri.State{}, fmt.Errorf("%w: url has no scheme and host", ErrMalformedURL)
		}
		s, err := uri.FromParsed(p)
		if err != nil {
			return uri.State{}, err
		}
		if s.User == nil {
			s.User = uri.Credentials(c.Username, c.Password)
		}
		return s, nil
	}

	return uri.FromFields(uri.Fields{
		Scheme:   c.Scheme,
		Host:     c.Host,
		Port:     c.Port,
		Path:     c.Path,
		Query:    c.Query,
		Username: c.Username,
		Password: c.Password,
	})
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}
