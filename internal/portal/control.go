package portal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/session"
)

// OpenControl loads the control screen. The link is taken from fromHTML,
// the page the portal answered the previous step with, falling back to
// the well-known controller URL. It returns the markup and the URL used.
func (p *Portal) OpenControl(ctx context.Context, fromHTML string) (string, string, error) {
	controlURL := p.controlURL(fromHTML)

	ctx, span := p.startSpan(ctx, "OpenControl", attribute.String("url", controlURL))
	defer span.End()

	p.logger.Info("opening control screen", "url", controlURL)
	page, err := p.sess.Get(ctx, controlURL, session.WithSnapshot(snapshotControl))
	if err != nil {
		return "", controlURL, failSpan(span, model.NewListingError("open control screen",
			fmt.Errorf("%w: %w", model.ErrControlUnavailable, err)))
	}
	return page.HTML, controlURL, nil
}

func (p *Portal) controlURL(fromHTML string) string {
	if doc, err := dom.Parse(fromHTML); err == nil {
		if a, ok := doc.Find(selectorControlLink); ok {
			if href := a.AttrOr("href", ""); href != "" {
				return p.sess.Resolve(href)
			}
		}
	}
	return p.settings.ControlURL()
}
