package http

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

// Operation names recorded on a Transition.
const (
	OpInit   = "init"
	OpSetURL = "set_url"
)

// Transition describes one change, or rejected change, of a Client's target.
// Input never carries a plain-text password.
type Transition struct {
	Op          string
	Input       string
	Kind        uri.Kind
	Before      uri.State
	After       uri.State
	Credentials uri.CredentialChange
	Err         error
	At          time.Time
}

// Observer is notified of every target transition of a Client.
type Observer interface {
	ObserveTransition(t Transition)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(t Transition)

func (f ObserverFunc) ObserveTransition(t Transition) {
	f(t)
}

// Client is a handle owning one target and the transport used to reach it.
type Client struct {
	target uri.State
	closed bool

	httpClient     *http.Client
	transport      *http.Transport
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	defaultHeaders map[string]string
	authType       AuthType
	rateLimit      float64
	limiter        *rate.Limiter
	log            *logrus.Logger
	observers      []Observer
}

type ClientOption func(*Client)

// NewClient validates cfg and returns a handle owning its initial target.
// On failure it returns nil and the error.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := cfg.target()
	if err != nil {
		return nil, err
	}

	c := &Client{
		target:         target,
		timeout:        DefaultTimeout,
		followRedirect: getBool(cfg.FollowRedirects, true),
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    getBool(cfg.ValidateSSL, true),
		proxyURL:       cfg.Proxy,
		defaultHeaders: make(map[string]string),
		authType:       cfg.AuthType,
		rateLimit:      cfg.RateLimit,
		log:            discardLogger(),
	}
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	if cfg.MaxRedirects > 0 {
		c.maxRedirects = cfg.MaxRedirects
	}
	for k, v := range cfg.Headers {
		c.defaultHeaders[k] = v
	}

	for _, opt := range opts {
		opt(c)
	}
	if err := validateHeaders(c.defaultHeaders); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	// Configure TLS verification
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL: %s", uri.Redact(c.proxyURL))
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.transport = transport
	c.httpClient = &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}

	if c.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.rateLimit), 1)
	}

	kind := uri.Assembled
	if strings.TrimSpace(cfg.URL) != "" {
		kind = uri.Absolute
	}
	c.log.WithFields(targetFields(target)).Debug("Client initialized")
	c.notify(Transition{
		Op:          OpInit,
		Input:       uri.Redact(strings.TrimSpace(cfg.URL)),
		Kind:        kind,
		After:       target,
		Credentials: uri.CredentialEffect(uri.State{}, target),
		At:          time.Now(),
	})

	return c, nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithAuthType selects how target credentials are sent
func WithAuthType(a AuthType) ClientOption {
	return func(c *Client) {
		c.authType = a
	}
}

// WithLogger sets the logger used for target changes. Passwords are never logged.
func WithLogger(log *logrus.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithObserver registers o to receive every target transition, including the initial one.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// SetURL resolves rawURL against the current target and replaces it.
//
// A relative rawURL ("/path?query") keeps scheme, host, port and credentials.
// An absolute rawURL replaces all of them; credentials are cleared unless
// rawURL carries its own. On error the current target is left untouched.
func (c *Client) SetURL(rawURL string) error {
	if c == nil || c.closed {
		return ErrNullHandle
	}

	before := c.target
	t := Transition{
		Op:     OpSetURL,
		Input:  uri.Redact(rawURL),
		Kind:   uri.Classify(rawURL),
		Before: before,
		At:     time.Now(),
	}

	next, err := uri.Merge(before, rawURL)
	if err != nil {
		t.Kind = uri.Unknown
		t.After = before
		t.Credentials = uri.CredentialEffect(before, before)
		t.Err = err
		c.log.WithFields(logrus.Fields{
			"host":  before.Host,
			"input": t.Input,
		}).WithError(err).Debug("Rejected target update")
		c.notify(t)
		return fmt.Errorf("set url: %w", err)
	}

	t.After = next
	t.Credentials = uri.CredentialEffect(before, next)
	c.target = next
	c.logTransition(t)
	c.notify(t)
	return nil
}

func (c *Client) logTransition(t Transition) {
	fields := targetFields(t.After)
	fields["kind"] = t.Kind.String()
	c.log.WithFields(fields).Debug("Target updated")

	switch t.Credentials {
	case uri.CredentialsReset:
		c.log.WithFields(logrus.Fields{
			"host": t.After.Host,
			"orig": t.Before.Host,
		}).Warn("Clearing credentials for new target")
	case uri.CredentialsReplaced:
		origUser, _ := t.Before.Username()
		newUser, _ := t.After.Username()
		if origUser != "" && origUser != newUser {
			c.log.WithFields(logrus.Fields{
				"orig": origUser,
				"new":  newUser,
				"host": t.After.Host,
			}).Warn("Changing login user for target")
		}
	}
}

func targetFields(s uri.State) logrus.Fields {
	return logrus.Fields{
		"scheme": s.Scheme,
		"host":   s.Host,
		"port":   s.Port,
		"path":   s.Path,
	}
}

func (c *Client) notify(t Transition) {
	for _, o := range c.observers {
		o.ObserveTransition(t)
	}
}

// Username returns a copy of the target username and whether one is set.
func (c *Client) Username() (string, bool) {
	if c == nil || c.closed {
		return "", false
	}
	return c.target.Username()
}

// Password returns a copy of the target password and whether one is set.
func (c *Client) Password() (string, bool) {
	if c == nil || c.closed {
		return "", false
	}
	return c.target.Password()
}

// Target returns a snapshot of the current target. The zero State is
// returned for a nil or closed handle.
func (c *Client) Target() uri.State {
	if c == nil || c.closed {
		return uri.State{}
	}
	return c.target
}

// Close releases the target and idle transport connections.
// Closing a nil or already closed handle returns ErrNullHandle.
func (c *Client) Close() error {
	if c == nil || c.closed {
		return ErrNullHandle
	}
	c.transport.CloseIdleConnections()
	c.target = uri.State{}
	c.defaultHeaders = nil
	c.observers = nil
	c.limiter = nil
	c.closed = true
	c.log.Debug("Client closed")
	return nil
}

// Do sends req to the current target. A relative req.URL is resolved against
// the target without changing it; an absolute one is used as is, including
// the rule that it carries no credentials unless it names them.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c == nil || c.closed {
		return nil, ErrNullHandle
	}
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	target, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	switch c.authType {
	case AuthDigest:
		// Digest auth requires challenge-response
		return c.doWithDigestAuth(ctx, req, target)
	case AuthBasic:
		return c.doRequest(ctx, req, target, basicAuthHeader(target))
	default:
		return c.doRequest(ctx, req, target, "")
	}
}

func (c *Client) resolve(req *Request) (uri.State, error) {
	target := c.target
	if req.URL != "" {
		next, err := uri.Merge(target, req.URL)
		if err != nil {
			return target, fmt.Errorf("resolve request URL: %w", err)
		}
		target = next
	}

	if len(req.QueryParams) > 0 {
		q, err := neturl.ParseQuery(target.RawQuery)
		if err != nil {
			return target, fmt.Errorf("%w: invalid query: %v", ErrMalformedURL, err)
		}
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}
	return target, nil
}

func basicAuthHeader(target uri.State) string {
	username, ok := target.Username()
	if !ok {
		return ""
	}
	password, _ := target.Password()
	creds := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

func (c *Client) doRequest(ctx context.Context, req *Request, target uri.State, authHeader string) (*Response, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	// credentials travel in the Authorization header only
	u := target.URL()
	u.User = nil

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if authHeader != "" {
		httpReq.Header.Set("Authorization", authHeader)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    headers,
		Body:       respBody,
		Duration:   duration,
		URL:        target.Redacted(),
	}, nil
}

func (c *Client) doWithDigestAuth(ctx context.Context, req *Request, target uri.State) (*Response, error) {
	// First request without auth to get the challenge
	resp, err := c.doRequest(ctx, req, target, "")
	if err != nil {
		return nil, err
	}

	// If not 401, return the response as-is
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	username, ok := target.Username()
	if !ok {
		return resp, nil
	}

	wwwAuth := resp.Header("WWW-Authenticate")
	if !strings.HasPrefix(strings.ToLower(wwwAuth), "digest ") {
		return resp, nil // Return original response if no digest challenge
	}

	params := ParseWWWAuthenticate(wwwAuth)
	password, _ := target.Password()

	auth := &DigestAuth{
		Username: username,
		Password: password,
		Realm:    params["realm"],
		Nonce:    params["nonce"],
		URI:      target.RequestURI(),
		Qop:      params["qop"],
		Opaque:   params["opaque"],
		Method:   req.method(),
	}

	if auth.Qop != "" {
		auth.Nc = "00000001"
		cnonce, err := GenerateCnonce()
		if err != nil {
			return nil, err
		}
		auth.Cnonce = cnonce
		// Prefer "auth" qop
		if strings.Contains(auth.Qop, "auth") {
			auth.Qop = "auth"
		}
	}

	// Retry with authorization
	return c.doRequest(ctx, req, target, auth.BuildAuthorizationHeader())
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})
}

func (c *Client) Post(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPost,
		URL:     url,
		Body:    body,
		Headers: headers,
	})
}
