package portal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/model"
)

func TestParseCaption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		caption      string
		wantTotal    int
		wantPageSize int
	}{
		{caption: "Lista de Processos Recebidos (15 registros - 1 a 10):", wantTotal: 15, wantPageSize: 10},
		{caption: "Lista de Processos Recebidos (15 registros - 11 a 15):", wantTotal: 15, wantPageSize: 5},
		{caption: "Lista de Processos Gerados (3 registros):", wantTotal: 3, wantPageSize: 3},
		{caption: "Lista de Processos Gerados (0 registros):", wantTotal: 0, wantPageSize: 0},
		{caption: "Processos", wantTotal: 0, wantPageSize: 0},
		{caption: "120 registros - 101 a 120", wantTotal: 120, wantPageSize: 20},
	}
	for _, tt := range tests {
		total, pageSize := ParseCaption(tt.caption)
		assert.Equal(t, tt.wantTotal, total, tt.caption)
		assert.Equal(t, tt.wantPageSize, pageSize, tt.caption)
	}
}

func TestReadGroupPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		group  model.Category
		want   model.PaginationInfo
	}{
		{
			name:   "caption with range",
			markup: fixture(t, "control_page1.html"),
			group:  model.CategoryReceived,
			want:   model.PaginationInfo{Total: 15, CurrentPage: 0, TotalPages: 2, PageSize: 10},
		},
		{
			name:   "last page reports its own size",
			markup: fixture(t, "control_page2.html"),
			group:  model.CategoryReceived,
			want:   model.PaginationInfo{Total: 15, CurrentPage: 1, TotalPages: 3, PageSize: 5},
		},
		{
			name:   "empty group",
			markup: fixture(t, "control_page1.html"),
			group:  model.CategoryGenerated,
			want:   model.PaginationInfo{Total: 0, CurrentPage: 0, TotalPages: 1, PageSize: 1},
		},
		{
			name: "hidden fields when the caption says nothing",
			markup: `<table id="tblProcessosGerados"><caption>Gerados</caption></table>
				<input type="hidden" id="hdnGeradosNroItens" value="2" />
				<input type="hidden" id="hdnGeradosItens" value="1,2,3,4,5," />
				<input type="hidden" id="hdnGeradosPaginaAtual" value="1" />`,
			group: model.CategoryGenerated,
			want:  model.PaginationInfo{Total: 5, CurrentPage: 1, TotalPages: 3, PageSize: 2},
		},
		{
			name: "rendered rows as last resort",
			markup: `<table id="tblProcessosRecebidos">
				<tr id="P1"><td>a</td></tr><tr id="P2"><td>b</td></tr><tr id="P3"><td>c</td></tr>
			</table>
			<input type="hidden" id="hdnRecebidosPaginaAtual" value="x" />`,
			group: model.CategoryReceived,
			want:  model.PaginationInfo{Total: 3, CurrentPage: 0, TotalPages: 1, PageSize: 3},
		},
		{
			name:   "nothing at all",
			markup: `<p>vazio</p>`,
			group:  model.CategoryReceived,
			want:   model.PaginationInfo{Total: 0, CurrentPage: 0, TotalPages: 1, PageSize: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ReadGroupPagination(dom.MustParse(tt.markup), tt.group)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadPaginationCoversEveryGroup(t *testing.T) {
	t.Parallel()

	info := ReadPagination(dom.MustParse(fixture(t, "control_page1.html")))
	require.Len(t, info, 2)
	assert.Equal(t, 2, info[model.CategoryReceived].TotalPages)
	assert.Equal(t, 1, info[model.CategoryGenerated].TotalPages)
}

func TestAdvancePage(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		form    url.Values
		referer string
		query   url.Values
	)
	nextPage := servePage(t, fixture(t, "control_page2.html"))
	mux := http.NewServeMux()
	mux.HandleFunc("/sei/controlador.php", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		mu.Lock()
		form = r.PostForm
		referer = r.Header.Get("Referer")
		query = r.URL.Query()
		mu.Unlock()
		nextPage(w, r)
	})
	p, settings, _ := newTestPortal(t, mux)

	got, err := p.AdvancePage(context.Background(), fixture(t, "control_page1.html"), model.CategoryReceived, 1, settings.ControlURL())
	require.NoError(t, err)
	assert.Contains(t, got, "11 a 15")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "1", form.Get("hdnRecebidosPaginaAtual"))
	assert.Equal(t, "1", form.Get("selRecebidosPaginacaoSuperior"))
	assert.Equal(t, "1", form.Get("selRecebidosPaginacaoInferior"))
	assert.Equal(t, "0", form.Get("hdnGeradosPaginaAtual"))
	assert.Equal(t, "10", form.Get("hdnRecebidosNroItens"))
	assert.Equal(t, settings.ControlURL(), referer)
	assert.Equal(t, "procedimento_controlar", query.Get("acao"))
	assert.Equal(t, "c1", query.Get("infra_hash"))
}

func TestAdvancePageProtocolErrors(t *testing.T) {
	t.Parallel()

	var hits int
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	p, settings, _ := newTestPortal(t, mux)

	tests := []struct {
		name   string
		markup string
		want   error
	}{
		{
			name:   "no current page field",
			markup: `<form id="frmProcedimentoControlar" action="controlador.php"><input name="hdnGeradosPaginaAtual" value="0" /></form>`,
			want:   model.ErrPaginationUnavailable,
		},
		{
			name:   "no results form",
			markup: `<form id="outro"><input name="hdnRecebidosPaginaAtual" value="0" /></form>`,
			want:   model.ErrFormNotFound,
		},
	}
	for _, tt := range tests {
		_, err := p.AdvancePage(context.Background(), tt.markup, model.CategoryReceived, 1, settings.ControlURL())
		require.Error(t, err, tt.name)
		assert.True(t, errors.Is(err, tt.want), tt.name)
		kind, ok := model.KindOf(err)
		assert.True(t, ok, tt.name)
		assert.Equal(t, model.KindListing, kind, tt.name)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, hits)
}

func TestAdvancePageTransportError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	p, settings, _ := newTestPortal(t, mux)

	_, err := p.AdvancePage(context.Background(), fixture(t, "control_page1.html"), model.CategoryReceived, 1, settings.ControlURL())
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindListing, kind)
}

func TestPageSnapshotName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "controle_recebidos_2.html", pageSnapshotName(model.CategoryReceived, 1))
	assert.Equal(t, "controle_gerados_3.html", pageSnapshotName(model.CategoryGenerated, 2))
}
