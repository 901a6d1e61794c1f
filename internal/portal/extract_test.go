package portal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/model"
)

const extractPage = `<html><body>
<table id="tblProcessosRecebidos">
  <caption>Lista de Processos Recebidos (4 registros):</caption>
  <tr><th>Recebidos</th></tr>
  <tr id="P900">
    <td>
      <a href="javascript:void(0);" onmouseover="return infraTooltipMostrar('Prioridade alta','Marcador');"><img src="svg/marcador_vermelho.svg" class="imagemStatus" /></a>
      <a href="javascript:void(0);" onmouseover="return infraTooltipMostrar(' Aguardando assinatura ');"><img src="svg/marcador_azul.svg" class="imagemStatus" /></a>
      <a href="controlador.php?acao=anotacao_registrar&amp;id_procedimento=900"><img src="svg/anotacao2.svg" class="imagemStatus" /></a>
      <img src="svg/exclamacao.svg" title="Documentos novos" />
    </td>
    <td><a href="controlador.php?acao=procedimento_trabalhar&amp;id_procedimento=900&amp;infra_hash=abc900"
           class="processoVisualizado"
           onmouseover="return infraTooltipMostrar('Aquisição de material', 'Compras: Dispensa');"
           title="Processo 2024.01.0000900/2024-07">2024.&nbsp;01.0000900 / 2024 – 07</a></td>
    <td><a href="controlador.php?acao=procedimento_atribuicao_listar&amp;id_procedimento=900" title="Atribuído para João da Silva">123.456.789-00</a></td>
  </tr>
  <tr id="P901">
    <td>sem link de processo</td>
  </tr>
  <tr id="P902">
    <td><a href="controlador.php?acao=procedimento_trabalhar&amp;id_procedimento=902">sem número</a></td>
  </tr>
  <tr id="P903">
    <td><a href="controlador.php?acao=procedimento_trabalhar&amp;id_procedimento=903" title="1500.01.0000903/2023-01">abrir</a></td>
  </tr>
  <tr id="linhaResumo"><td>não é um processo</td></tr>
</table>
</body></html>`

func TestExtractGroup(t *testing.T) {
	t.Parallel()

	doc := dom.MustParse(extractPage)
	records, stats := ExtractGroup(doc, model.CategoryReceived, staticResolver)

	want := []model.Record{
		{
			Number:          "2024.01.0000900/2024-07",
			Category:        model.CategoryReceived,
			Viewed:          true,
			Title:           "Aquisição de material",
			Type:            "Compras: Dispensa",
			ResponsibleName: "João da Silva",
			ResponsibleID:   "123.456.789-00",
			Markers:         []string{"Prioridade alta", "Aguardando assinatura"},
			HasNewDocuments: true,
			HasAnnotations:  true,
			ID:              "900",
			Hash:            "abc900",
			URL:             "https://www.sei.mg.gov.br/sei/controlador.php?acao=procedimento_trabalhar&id_procedimento=900&infra_hash=abc900",
		},
		{
			Number:   "1500.01.0000903/2023-01",
			Category: model.CategoryReceived,
			ID:       "903",
			URL:      "https://www.sei.mg.gov.br/sei/controlador.php?acao=procedimento_trabalhar&id_procedimento=903",
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ExtractStats{Rows: 4, Extracted: 2, Skipped: 2}, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractGroupMissingTable(t *testing.T) {
	t.Parallel()

	doc := dom.MustParse(extractPage)
	records, stats := ExtractGroup(doc, model.CategoryGenerated, staticResolver)
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if stats != (ExtractStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestExtractGroupFixture(t *testing.T) {
	t.Parallel()

	doc := dom.MustParse(fixture(t, "control_page1.html"))

	received, stats := ExtractGroup(doc, model.CategoryReceived, staticResolver)
	if len(received) != 10 {
		t.Fatalf("got %d received records, want 10", len(received))
	}
	if stats != (ExtractStats{Rows: 10, Extracted: 10}) {
		t.Errorf("stats = %+v", stats)
	}

	first := received[0]
	if first.Number != "1500.01.0000101/2024-11" || first.ID != "101" || first.Hash != "h101" {
		t.Errorf("first record = %+v", first)
	}
	if first.ResponsibleName != "Servidor 101" {
		t.Errorf("ResponsibleName = %q", first.ResponsibleName)
	}
	if received[2].Markers == nil || received[2].Markers[0] != "Urgente" {
		t.Errorf("third record markers = %v", received[2].Markers)
	}
	if !received[1].Viewed || received[0].Viewed {
		t.Error("viewed flags do not follow the link class")
	}

	generated, _ := ExtractGroup(doc, model.CategoryGenerated, staticResolver)
	if len(generated) != 0 {
		t.Errorf("got %d generated records, want 0", len(generated))
	}
}

func TestParseTooltip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantTitle string
		wantType  string
	}{
		{in: "return infraTooltipMostrar('Título','Tipo: X');", wantTitle: "Título", wantType: "Tipo: X"},
		{in: "return INFRATOOLTIPMOSTRAR(' a ',  ' b ')", wantTitle: "a", wantType: "b"},
		{in: "return infraTooltipMostrar('só título');"},
		{in: ""},
	}
	for _, tt := range tests {
		title, typ := ParseTooltip(tt.in)
		if title != tt.wantTitle || typ != tt.wantType {
			t.Errorf("ParseTooltip(%q) = (%q, %q), want (%q, %q)", tt.in, title, typ, tt.wantTitle, tt.wantType)
		}
	}
}
