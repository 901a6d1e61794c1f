package portal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/session"
)

// latin1 encodes s the way the portal serves pages.
func latin1(t *testing.T, s string) []byte {
	t.Helper()

	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func fixture(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

// servePage returns a handler answering with markup encoded in Latin-1.
func servePage(t *testing.T, markup string) http.HandlerFunc {
	t.Helper()

	body := latin1(t, markup)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(body)
	}
}

// newTestPortal starts a server for mux and returns a portal pointed at it.
// Each tweak adjusts the settings before the session opens.
func newTestPortal(t *testing.T, mux *http.ServeMux, tweaks ...func(*config.Settings)) (*Portal, *config.Settings, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := config.Default()
	s.BaseURL = srv.URL
	s.OrgCode = "SEPLAG"
	s.TargetUnit = "SEPLAG/AUTOMATIZAMG"
	s.CookieDomain = ""
	s.DataDir = t.TempDir()
	s.RetryAttempts = 1
	s.RetryWait = time.Millisecond
	s.Timeout = 5 * time.Second
	s.PaginationTimeout = 5 * time.Second
	for _, tweak := range tweaks {
		tweak(&s)
	}

	sess, err := session.Open(&s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	return New(sess, &s), &s, srv
}

// staticResolver resolves hrefs the way the session does for the public portal.
func staticResolver(href string) string {
	return "https://www.sei.mg.gov.br/sei/" + href
}
