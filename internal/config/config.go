package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/automatizamg/seilist/internal/model"
)

// Default configuration values.
// The portal constants reproduce what the SEI-MG login page expects.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "seilist"

	// DefaultBaseURL is the public address of the portal.
	DefaultBaseURL = "https://www.sei.mg.gov.br"

	// DefaultLoginPath is the SIP login page of the SEI system for GOVMG.
	DefaultLoginPath = "/sip/login.php?sigla_orgao_sistema=GOVMG&sigla_sistema=SEI&infra_url=L3NlaS8="

	// DefaultCookieName is the tenant selector cookie read by the login page.
	DefaultCookieName = "SIP_U_GOVMG_SEI"

	// DefaultCookieDomain scopes the tenant cookie to the portal and its subdomains.
	DefaultCookieDomain = "sei.mg.gov.br"

	// DefaultDataDir is the local scratch directory for debug snapshots.
	DefaultDataDir = "data"

	// DefaultOutputPath is where the spreadsheet is written.
	DefaultOutputPath = "./saida/processos.xlsx"

	// DefaultTimeout applies to every request except page advances.
	DefaultTimeout = 30 * time.Second

	// DefaultPaginationTimeout applies to page-advance posts, which the
	// portal answers slowly for large groups.
	DefaultPaginationTimeout = 60 * time.Second

	// DefaultRetryAttempts is the total number of attempts for a request
	// failing with a transient status.
	DefaultRetryAttempts = 5

	// DefaultRetryWait is the first backoff interval; it doubles per attempt.
	DefaultRetryWait = 500 * time.Millisecond

	// DefaultUserAgent is a desktop browser user agent. The portal serves a
	// degraded page to unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAccept is the Accept header sent with every request.
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Settings is the immutable configuration of a run.
// It is built once by Load and passed by pointer to every component.
// Credentials are kept apart in Credentials.
type Settings struct {
	// OrgCode is the tenant code stored in the selector cookie (SEI_ORGAO).
	OrgCode string

	// TargetUnit is the unit whose processes are listed (SEI_UNIDADE).
	TargetUnit string

	// BaseURL is the scheme and host of the portal, without trailing slash.
	BaseURL string

	// LoginPath is the path and query of the login page, or an absolute URL.
	LoginPath string

	// CookieName is the name of the tenant selector cookie.
	CookieName string

	// CookieDomain is the Domain attribute of the tenant cookie.
	// Empty means a host-only cookie for BaseURL's host.
	CookieDomain string

	// Headers are extra request headers sent with every request.
	Headers map[string]string

	// UserAgent is the User-Agent header.
	UserAgent string

	// Debug enables debug-level logging (SEI_DEBUG).
	Debug bool

	// SaveDebugHTML writes every fetched page under DataDir/debug (SEI_SAVE_DEBUG_HTML).
	SaveDebugHTML bool

	// DataDir is the local scratch directory (SEI_DATA_DIR).
	DataDir string

	// OutputPath is the spreadsheet destination (SEI_SAIDA or CLI argument).
	OutputPath string

	// HistoryDir holds the run history database. Empty disables history.
	HistoryDir string

	// Timeout bounds each request.
	Timeout time.Duration

	// PaginationTimeout bounds each page-advance request.
	PaginationTimeout time.Duration

	// RetryAttempts is the total number of attempts for transient failures.
	RetryAttempts int

	// RetryWait is the first retry backoff interval.
	RetryWait time.Duration

	// RequestDelay is the minimum interval between requests. Zero disables
	// client-side rate limiting.
	RequestDelay time.Duration
}

// Default returns settings populated with every default value.
// Required values (org code and target unit) are left empty.
func Default() Settings {
	return Settings{
		BaseURL:           DefaultBaseURL,
		LoginPath:         DefaultLoginPath,
		CookieName:        DefaultCookieName,
		CookieDomain:      DefaultCookieDomain,
		UserAgent:         DefaultUserAgent,
		DataDir:           DefaultDataDir,
		OutputPath:        DefaultOutputPath,
		HistoryDir:        XDGDataDir(),
		Timeout:           DefaultTimeout,
		PaginationTimeout: DefaultPaginationTimeout,
		RetryAttempts:     DefaultRetryAttempts,
		RetryWait:         DefaultRetryWait,
	}
}

// LoginURL returns the absolute URL of the login page.
func (s *Settings) LoginURL() string {
	if u, err := url.Parse(s.LoginPath); err == nil && u.IsAbs() {
		return s.LoginPath
	}
	path := s.LoginPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(s.BaseURL, "/") + path
}

// AppURL returns the directory of the SEI controller, e.g.
// "https://www.sei.mg.gov.br/sei/". Relative links found in portal
// pages are resolved against it.
func (s *Settings) AppURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/sei/"
}

// ControlURL returns the fallback address of the control screen.
func (s *Settings) ControlURL() string {
	return s.AppURL() + "controlador.php?acao=procedimento_controlar"
}

// DebugDir returns the directory where page snapshots are written.
func (s *Settings) DebugDir() string {
	return filepath.Join(s.DataDir, "debug")
}

// Validate checks the settings. Missing required values are reported
// together in a single config error.
func (s *Settings) Validate() error {
	var missing []string
	if strings.TrimSpace(s.OrgCode) == "" {
		missing = append(missing, EnvOrgCode)
	}
	if strings.TrimSpace(s.TargetUnit) == "" {
		missing = append(missing, EnvTargetUnit)
	}
	if len(missing) > 0 {
		return model.NewConfigError(
			"missing required settings: "+strings.Join(missing, ", "),
			model.ErrMissingSetting,
		)
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return model.NewConfigError(fmt.Sprintf("base URL %q", s.BaseURL), ErrInvalidBaseURL)
	}
	if s.Timeout <= 0 || s.PaginationTimeout <= 0 {
		return model.NewConfigError("timeouts", ErrInvalidTimeout)
	}
	if s.RetryAttempts < 1 {
		return model.NewConfigError("retry attempts", ErrInvalidRetryAttempts)
	}
	if s.RetryWait < 0 || s.RequestDelay < 0 {
		return model.NewConfigError("retry wait and request delay", ErrNegativeDuration)
	}
	return nil
}

// Credentials are the portal account credentials (SEI_USER, SEI_PASS).
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either credential is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// String masks the password.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// XDGDataDir returns the XDG data directory for seilist.
// On Linux: ~/.local/share/seilist
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seilist.
// On Linux: ~/.config/seilist
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
