package portal

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatizamg/seilist/internal/model"
)

func TestOpenControl(t *testing.T) {
	t.Parallel()

	var gotQuery string
	control := servePage(t, "<title>SEI - Controle de Processos</title>")
	mux := http.NewServeMux()
	mux.HandleFunc("/sei/controlador.php", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		control(w, r)
	})
	p, settings, srv := newTestPortal(t, mux)

	t.Run("follows the link on the previous page", func(t *testing.T) {
		login := `<a href="controlador.php?acao=procedimento_controlar&amp;infra_sistema=100000100&amp;infra_hash=k1">Controle de Processos</a>`
		html, controlURL, err := p.OpenControl(context.Background(), login)
		require.NoError(t, err)
		assert.Contains(t, html, "Controle de Processos")
		assert.Equal(t, srv.URL+"/sei/controlador.php?acao=procedimento_controlar&infra_sistema=100000100&infra_hash=k1", controlURL)
		assert.Equal(t, "acao=procedimento_controlar&infra_sistema=100000100&infra_hash=k1", gotQuery)
	})

	t.Run("falls back to the controller URL", func(t *testing.T) {
		_, controlURL, err := p.OpenControl(context.Background(), "<p>Sair</p>")
		require.NoError(t, err)
		assert.Equal(t, settings.ControlURL(), controlURL)
	})
}

func TestOpenControlFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	p, _, _ := newTestPortal(t, mux)

	_, _, err := p.OpenControl(context.Background(), "")
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindListing, kind)
	assert.ErrorIs(t, err, model.ErrControlUnavailable)
}
