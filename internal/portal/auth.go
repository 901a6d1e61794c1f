package portal

import (
	"context"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/session"
)

// Login authenticates with creds and returns the page the portal answers
// the login post with.
//
// The login page is fetched first so the portal issues its session
// cookies; the tenant cookie is set again afterwards because that page may
// overwrite it. The post is sent once, without the retry policy.
func (p *Portal) Login(ctx context.Context, creds config.Credentials) (string, error) {
	if creds.Empty() {
		return "", model.NewConfigError("SEI_USER and SEI_PASS must be set", model.ErrEmptyCredentials)
	}

	ctx, span := p.startSpan(ctx, "Login")
	defer span.End()

	loginURL := p.settings.LoginURL()
	p.logger.Info("fetching login page", "url", loginURL)
	if _, err := p.sess.Get(ctx, loginURL); err != nil {
		return "", failSpan(span, model.NewAuthError("network error fetching login page", err))
	}
	p.sess.SetTenantCookie()

	p.logger.Info("submitting login", "user", creds.Username, "org", p.settings.OrgCode)
	page, err := p.sess.PostForm(ctx, loginURL, loginForm(creds, p.settings.OrgCode),
		session.WithReferer(loginURL),
		session.WithoutRetry(),
		session.WithSnapshot(snapshotLogin),
	)
	if err != nil {
		return "", failSpan(span, model.NewAuthError("network error during login", err))
	}

	switch ClassifyLogin(page.HTML) {
	case OutcomeAuthenticated:
		p.logger.Info("authenticated")
		return page.HTML, nil
	case OutcomeInvalidCredentials:
		return "", failSpan(span, model.NewAuthError("", model.ErrInvalidCredentials))
	case OutcomeBlocked:
		return "", failSpan(span, model.NewAuthError("", model.ErrAccountBlocked))
	default:
		return "", failSpan(span, model.NewAuthError("check the credentials", model.ErrLoginUnconfirmed))
	}
}

func loginForm(creds config.Credentials, orgCode string) map[string]string {
	return map[string]string{
		fieldLoginUser:   creds.Username,
		fieldLoginPass:   creds.Password,
		fieldLoginOrg:    orgCode,
		fieldLoginAction: loginActionValue,
		fieldLoginSubmit: loginSubmitValue,
	}
}
