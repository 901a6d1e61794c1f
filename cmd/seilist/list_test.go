package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/database"
	"github.com/automatizamg/seilist/internal/model"
)

const (
	loginOK      = "<title>SEI - Controle de Processos</title><a>Sair</a>"
	loginInvalid = "<div class='infraException'>Usuário ou senha INVÁLIDA.</div>"
)

// newPortalServer serves a login page answering loginResult and the
// control screen fixture.
func newPortalServer(t *testing.T, loginResult string) *httptest.Server {
	t.Helper()

	control, err := os.ReadFile(filepath.Join("testdata", "control_two_rows.html"))
	require.NoError(t, err)

	write := func(w http.ResponseWriter, markup string) {
		body, err := charmap.ISO8859_1.NewEncoder().String(markup)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sip/login.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			write(w, "<html><form id='frmLogin'></form></html>")
			return
		}
		write(w, loginResult)
	})
	mux.HandleFunc("/sei/controlador.php", func(w http.ResponseWriter, _ *http.Request) {
		write(w, string(control))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// testEnv returns a lookup with the required variables.
func testEnv(overrides map[string]string) config.LookupFunc {
	env := map[string]string{
		config.EnvUser:       "12345678900",
		config.EnvPassword:   "secret",
		config.EnvOrgCode:    "SEPLAG",
		config.EnvTargetUnit: "SEPLAG/AUTOMATIZAMG",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// listingFixture runs a listing against srv with the given lookup.
type listingFixture struct {
	dir        string
	historyDir string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func (f *listingFixture) run(t *testing.T, srvURL string, opts *listOptions, lookup config.LookupFunc) (*model.Run, error) {
	t.Helper()

	// An empty explicit config file keeps the user's own files out of the test.
	cfgPath := filepath.Join(f.dir, "seilist.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0o600))
	opts.configPath = cfgPath
	opts.envFile, opts.envFileSet = "", true

	return runListing(context.Background(), opts, &f.stdout, &f.stderr,
		config.WithLookup(lookup),
		config.WithOverride(func(s *config.Settings) {
			s.BaseURL = srvURL
			s.CookieDomain = ""
			s.RetryAttempts = 1
			s.RetryWait = time.Millisecond
			s.Timeout = 5 * time.Second
			if !opts.noHistory {
				s.HistoryDir = f.historyDir
			}
		}),
	)
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()

	dir := t.TempDir()
	return &listingFixture{dir: dir, historyDir: filepath.Join(dir, "history")}
}

func TestRunListingExportsSpreadsheet(t *testing.T) {
	t.Parallel()

	srv := newPortalServer(t, loginOK)
	f := newListingFixture(t)
	opts := &listOptions{
		output:   filepath.Join(f.dir, "saida") + "/",
		jsonPath: filepath.Join(f.dir, "run.json"),
		table:    true,
	}

	run, err := f.run(t, srv.URL, opts, testEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, exitCode(context.Background(), err))

	require.Equal(t, 2, run.RecordCount())
	for _, r := range run.Records.Records() {
		assert.Equal(t, model.CategoryReceived, r.Category)
	}

	_, err = os.Stat(filepath.Join(f.dir, "saida", "processos.xlsx"))
	require.NoError(t, err)
	_, err = os.Stat(opts.jsonPath)
	require.NoError(t, err)

	assert.Contains(t, f.stdout.String(), "1500.01.0000101/2024-11")
	assert.Contains(t, f.stderr.String(), "listing finished")
	assert.NotContains(t, f.stderr.String(), "12345678900", "the CPF username must be masked")

	db, err := database.Open(f.historyDir, database.Options{})
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 2, runs[0].Received)
}

func TestRunListingInvalidCredentials(t *testing.T) {
	t.Parallel()

	srv := newPortalServer(t, loginInvalid)
	f := newListingFixture(t)
	opts := &listOptions{output: filepath.Join(f.dir, "out.xlsx")}

	run, err := f.run(t, srv.URL, opts, testEnv(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.Equal(t, ExitDomainError, exitCode(context.Background(), err))

	var logged *loggedError
	assert.True(t, errors.As(err, &logged))
	assert.Contains(t, f.stderr.String(), "listing failed")

	_, statErr := os.Stat(opts.output)
	assert.True(t, os.IsNotExist(statErr), "no spreadsheet on failure")

	require.NotNil(t, run)
	db, err := database.Open(f.historyDir, database.Options{})
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].Error)
}

func TestRunListingMissingCredentials(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	t.Cleanup(srv.Close)

	f := newListingFixture(t)
	run, err := f.run(t, srv.URL, &listOptions{noHistory: true}, testEnv(map[string]string{config.EnvPassword: ""}))

	assert.Nil(t, run)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConfig, kind)
	assert.Equal(t, ExitDomainError, exitCode(context.Background(), err))
	assert.Zero(t, hits.Load(), "no request before configuration is valid")
}

func TestRunListingNoHistory(t *testing.T) {
	t.Parallel()

	srv := newPortalServer(t, loginOK)
	f := newListingFixture(t)
	opts := &listOptions{output: filepath.Join(f.dir, "lista.csv"), noHistory: true}

	_, err := f.run(t, srv.URL, opts, testEnv(nil))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(f.dir, "lista.xlsx"))
	require.NoError(t, err, "extension is replaced by .xlsx")
	_, err = os.Stat(f.historyDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunListingExportFailure(t *testing.T) {
	t.Parallel()

	srv := newPortalServer(t, loginOK)
	f := newListingFixture(t)
	blocker := filepath.Join(f.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	opts := &listOptions{output: filepath.Join(blocker, "sub", "out.xlsx")}

	run, err := f.run(t, srv.URL, opts, testEnv(nil))
	require.Error(t, err)
	require.NotNil(t, run)
	assert.False(t, model.IsDomainError(err))
	assert.Equal(t, ExitUnexpected, exitCode(context.Background(), err))

	logs := f.stderr.String()
	assert.Contains(t, logs, "unexpected error")
	assert.Contains(t, logs, run.ID)
}

func TestParseListOptions(t *testing.T) {
	t.Parallel()

	t.Run("positional argument wins over --saida", func(t *testing.T) {
		t.Parallel()

		cmd := NewListCmd()
		require.NoError(t, cmd.ParseFlags([]string{"-o", "a.xlsx", "--table", "--env-file", "x.env"}))
		opts, err := parseListOptions(cmd, []string{"b.xlsx"})
		require.NoError(t, err)
		assert.Equal(t, "b.xlsx", opts.output)
		assert.True(t, opts.table)
		assert.True(t, opts.envFileSet)
		assert.Equal(t, "x.env", opts.envFile)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewListCmd()
		require.NoError(t, cmd.ParseFlags(nil))
		opts, err := parseListOptions(cmd, nil)
		require.NoError(t, err)
		assert.Empty(t, opts.output)
		assert.False(t, opts.envFileSet)
		assert.False(t, opts.noHistory)
	})
}
