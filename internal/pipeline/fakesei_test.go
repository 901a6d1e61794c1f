package pipeline

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/portal"
	"github.com/automatizamg/seilist/internal/session"
)

// fakeSEI emulates the portal endpoints a listing run touches.
type fakeSEI struct {
	t *testing.T

	// loginResult answers the login post.
	loginResult string
	// control is served before a unit switch, switched after it.
	control  string
	switched string
	// pages answers page-advance posts of the received group by page index.
	pages map[int]string
	// selection is the unit selection page.
	selection string

	mu          sync.Mutex
	didSwitch   bool
	pagePosts   []int
	switchPosts int
}

func (f *fakeSEI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sip/login.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			f.write(w, "<html><form id='frmLogin'></form></html>")
			return
		}
		f.write(w, f.loginResult)
	})
	mux.HandleFunc("/sei/controlador.php", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.URL.Query().Get("acao") {
		case "procedimento_controlar":
			if r.Method == http.MethodGet {
				if f.didSwitch && f.switched != "" {
					f.write(w, f.switched)
					return
				}
				f.write(w, f.control)
				return
			}
			_ = r.ParseForm()
			n, _ := strconv.Atoi(r.PostForm.Get("hdnRecebidosPaginaAtual"))
			f.pagePosts = append(f.pagePosts, n)
			f.write(w, f.pages[n])
		case "infra_trocar_unidade":
			if r.Method == http.MethodGet {
				f.write(w, f.selection)
				return
			}
			f.switchPosts++
			f.didSwitch = true
			f.write(w, `<p>Controle de Processos</p><a href="controlador.php?acao=procedimento_controlar&amp;infra_hash=after">Controle</a>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	return mux
}

func (f *fakeSEI) write(w http.ResponseWriter, markup string) {
	body, err := charmap.ISO8859_1.NewEncoder().String(markup)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(body))
}

func fixture(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

// start serves f and returns a portal bound to a session against it.
func (f *fakeSEI) start(targetUnit string) *portal.Portal {
	t := f.t
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	s := config.Default()
	s.BaseURL = srv.URL
	s.OrgCode = "SEPLAG"
	s.TargetUnit = targetUnit
	s.CookieDomain = ""
	s.DataDir = t.TempDir()
	s.RetryAttempts = 1
	s.RetryWait = time.Millisecond
	s.Timeout = 5 * time.Second
	s.PaginationTimeout = 5 * time.Second

	sess, err := session.Open(&s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	return portal.New(sess, &s)
}

var (
	testCreds  = config.Credentials{Username: "user", Password: "secret"}
	quietLog   = slog.New(slog.DiscardHandler)
	targetUnit = "SEPLAG/AUTOMATIZAMG"
)
