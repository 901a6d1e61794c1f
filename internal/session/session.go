package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"github.com/automatizamg/seilist/internal/config"
)

const tracerName = "github.com/automatizamg/seilist/internal/session"

// maxRedirects bounds redirect chains; the portal redirects a few times
// after login and after a unit switch.
const maxRedirects = 10

// Page is one decoded portal response.
type Page struct {
	// URL is the final URL after redirects.
	URL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// HTML is the body decoded from ISO-8859-1.
	HTML string
}

// Session is the HTTP context of a run. It is not safe for concurrent use.
type Session struct {
	settings  *config.Settings
	client    *resty.Client
	jar       http.CookieJar
	appURL    *url.URL
	baseURL   *url.URL
	logger    *slog.Logger
	tracer    trace.Tracer
	limiter   *rate.Limiter
	snapshots *SnapshotWriter
	transport http.RoundTripper
	closed    atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.transport = rt
	}
}

// Open creates a session for settings: cookie jar with the tenant cookie,
// browser headers, retry policy and, when enabled, the snapshot writer.
func Open(settings *config.Settings, opts ...Option) (*Session, error) {
	s := &Session{
		settings: settings,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	s.baseURL, err = url.Parse(settings.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	s.appURL, err = url.Parse(settings.AppURL())
	if err != nil {
		return nil, fmt.Errorf("parse app url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	s.jar = jar

	if settings.RequestDelay > 0 {
		s.limiter = rate.NewLimiter(rate.Every(settings.RequestDelay), 1)
	}
	if settings.SaveDebugHTML {
		s.snapshots = NewSnapshotWriter(settings.DebugDir(), s.logger)
	}

	client := resty.New()
	if s.transport != nil {
		client.SetTransport(s.transport)
	}
	client.SetCookieJar(jar)
	client.SetLogger(restyLogger{logger: s.logger})
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetHeader("User-Agent", settings.UserAgent)
	client.SetHeader("Accept", config.DefaultAccept)
	for k, v := range settings.Headers {
		client.SetHeader(k, v)
	}
	configureRetry(client, settings)
	s.instrument(client)
	s.client = client

	s.SetTenantCookie()
	return s, nil
}

// SetTenantCookie (re)installs the tenant selector cookie. The login page
// may reset it, so the auth flow calls this again after fetching it.
// It does nothing when no org code is configured.
func (s *Session) SetTenantCookie() {
	if s.settings.OrgCode == "" {
		return
	}
	s.jar.SetCookies(s.baseURL, []*http.Cookie{{
		Name:   s.settings.CookieName,
		Value:  s.settings.OrgCode,
		Domain: s.settings.CookieDomain,
		Path:   "/",
	}})
}

// Cookie returns the value of the named cookie as it would be sent to the
// portal base URL.
func (s *Session) Cookie(name string) (string, bool) {
	for _, c := range s.jar.Cookies(s.baseURL) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Resolve turns an href found in a portal page into an absolute URL.
// Relative references resolve against the SEI controller directory.
func (s *Session) Resolve(href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.appURL.ResolveReference(ref).String()
}

// Snapshot writes markup under the debug directory when snapshots are
// enabled. Failures are logged, never returned.
func (s *Session) Snapshot(name, markup string) {
	if s.snapshots == nil {
		return
	}
	s.snapshots.Write(name, markup)
}

// Get fetches rawURL.
func (s *Session) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Page, error) {
	return s.do(ctx, http.MethodGet, rawURL, nil, opts)
}

// PostForm posts values as application/x-www-form-urlencoded to rawURL.
func (s *Session) PostForm(ctx context.Context, rawURL string, values map[string]string, opts ...RequestOption) (*Page, error) {
	return s.do(ctx, http.MethodPost, rawURL, values, opts)
}

// Close releases pooled connections. Requests after Close fail with ErrClosed.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.client.GetClient().CloseIdleConnections()
	s.logger.Debug("session closed")
	return nil
}

func (s *Session) do(ctx context.Context, method, rawURL string, values map[string]string, opts []RequestOption) (*Page, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	ro := requestOptions{timeout: s.settings.Timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	ctx, span := s.tracer.Start(ctx, "session."+method, trace.WithAttributes(
		attribute.String("http.method", method),
	))
	defer span.End()

	if ro.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.timeout)
		defer cancel()
	}
	if ro.noRetry {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	req := s.client.R().SetContext(ctx)
	if ro.referer != "" {
		req.SetHeader("Referer", ro.referer)
	}
	if values != nil {
		req.SetFormData(values)
	}

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode()),
		attribute.Int("http.attempts", resp.Request.Attempt),
	)

	page := &Page{
		URL:        finalURL(resp, rawURL),
		StatusCode: resp.StatusCode(),
	}
	page.HTML, err = decodeLatin1(resp.Body())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	if ro.snapshot != "" {
		s.Snapshot(ro.snapshot, page.HTML)
	}

	if !resp.IsSuccess() {
		statusErr := &StatusError{Method: method, URL: rawURL, StatusCode: resp.StatusCode()}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return page, statusErr
	}
	return page, nil
}

func finalURL(resp *resty.Response, fallback string) string {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		return resp.RawResponse.Request.URL.String()
	}
	return fallback
}

// decodeLatin1 decodes a body as ISO-8859-1. Every byte maps to a rune,
// so the decoder only fails on reader errors.
func decodeLatin1(body []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RequestOption customizes one request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	referer  string
	timeout  time.Duration
	noRetry  bool
	snapshot string
}

// WithReferer sets the Referer header.
func WithReferer(referer string) RequestOption {
	return func(o *requestOptions) {
		o.referer = referer
	}
}

// WithTimeout overrides the request deadline. It covers every attempt.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// WithoutRetry sends the request once regardless of the retry policy.
// Used for the login post, which is not safe to repeat.
func WithoutRetry() RequestOption {
	return func(o *requestOptions) {
		o.noRetry = true
	}
}

// WithSnapshot saves the decoded body under name when snapshots are enabled.
func WithSnapshot(name string) RequestOption {
	return func(o *requestOptions) {
		o.snapshot = name
	}
}

// restyLogger routes resty's internal messages to slog at debug level,
// except errors.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
