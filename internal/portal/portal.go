package portal

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/session"
)

const tracerName = "github.com/automatizamg/seilist/internal/portal"

// Session is the subset of *session.Session the portal needs.
type Session interface {
	Get(ctx context.Context, rawURL string, opts ...session.RequestOption) (*session.Page, error)
	PostForm(ctx context.Context, rawURL string, values map[string]string, opts ...session.RequestOption) (*session.Page, error)
	SetTenantCookie()
	Resolve(href string) string
	Snapshot(name, markup string)
}

// Portal performs the portal flows over one session.
type Portal struct {
	sess     Session
	settings *config.Settings
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Portal.
type Option func(*Portal)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Portal) {
		p.logger = logger
	}
}

// New returns a Portal using sess for every request.
func New(sess Session, settings *config.Settings, opts ...Option) *Portal {
	p := &Portal{
		sess:     sess,
		settings: settings,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page is a parsed control screen.
type Page struct {
	doc     dom.Node
	resolve Resolver
}

// ParsePage parses markup as a control screen. Relative links found in it
// are resolved through the portal session.
func (p *Portal) ParsePage(markup string) (*Page, error) {
	doc, err := dom.Parse(markup)
	if err != nil {
		return nil, model.NewListingError("parse control screen", err)
	}
	return &Page{doc: doc, resolve: p.sess.Resolve}, nil
}

// Records extracts the records of group c.
func (pg *Page) Records(c model.Category) ([]model.Record, ExtractStats) {
	return ExtractGroup(pg.doc, c, pg.resolve)
}

// Pagination returns the page geometry of group c.
func (pg *Page) Pagination(c model.Category) model.PaginationInfo {
	return ReadGroupPagination(pg.doc, c)
}

// CurrentUnit returns the active unit and the unit switch URL.
func (pg *Page) CurrentUnit() (name, switchURL string) {
	return currentUnit(pg.doc, pg.resolve)
}

func (p *Portal) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "portal."+name, trace.WithAttributes(attrs...))
}

// failSpan records err on span and returns it.
func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
