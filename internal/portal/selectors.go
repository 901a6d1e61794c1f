package portal

import "github.com/automatizamg/seilist/internal/model"

// Login form contract. The login form is static, so field values are not
// read from the served markup.
const (
	fieldLoginUser   = "txtUsuario"
	fieldLoginPass   = "pwdSenha"
	fieldLoginOrg    = "selOrgao"
	fieldLoginAction = "hdnAcao"
	fieldLoginSubmit = "Acessar"

	loginActionValue = "2"
	loginSubmitValue = "Acessar"
)

// Content markers used to classify responses and read rows.
const (
	markerLogout        = "Sair"
	markerControlScreen = "Controle de Processos"
	markerControlAction = "procedimento_controlar"
	markerUnitCaption   = "unidade"
	responsiblePrefix   = "Atribuído para "
	classViewed         = "processoVisualizado"
	paramProcedureID    = "id_procedimento"
	paramHash           = "infra_hash"
)

var (
	invalidCredentialMarkers = []string{"usuário ou senha", "inval"}
	blockedAccountMarkers    = []string{"bloqueado", "bloqueio"}
)

// Control screen selectors.
const (
	selectorControlLink     = `a[href*="acao=procedimento_controlar"]`
	selectorResultsForm     = "#frmProcedimentoControlar"
	selectorRecordRows      = "tr[id^='P']"
	selectorProcessLink     = `a[href*="acao=procedimento_trabalhar"]`
	selectorResponsibleLink = `a[href*="acao=procedimento_atribuicao_listar"]`
	selectorMarkerIcon      = "img.imagemStatus"
	selectorNewDocsIcon     = `img[src*="exclamacao.svg"]`
	selectorAnnotationIcon  = `img[src*="anotacao"]`
	selectorCaption         = "caption"
)

// Unit selection selectors and fields.
const (
	selectorUnitIndicator = "#lnkInfraUnidade"
	selectorUnitTable     = "table[id^='infraTable'], table.infraTable"
	selectorUnitForm      = "form#frmInfraSelecaoUnidade"
	selectorAnyForm       = "form"
	selectorAnyTable      = "table"
	selectorUnitRadio     = `input[type="radio"][name="chkInfraItem"]`

	fieldUnitSelect   = "selInfraUnidades"
	fieldUnitCheckbox = "chkInfraItem"
)

// Debug snapshot file names.
const (
	snapshotLogin        = "login.html"
	snapshotControl      = "controle_pagina_1.html"
	snapshotUnitList     = "selecao_unidades.html"
	snapshotUnitListMiss = "selecao_unidades_debug.html"
	snapshotUnitSwitch   = "troca_unidade_resultado.html"
)

// groupTableID returns the id of the result table of c.
func groupTableID(c model.Category) string {
	return "#tblProcessos" + string(c)
}

// groupFields are the form field names that carry one group's paging state.
type groupFields struct {
	ItemCount   string
	ItemList    string
	CurrentPage string
	TopPager    string
	BottomPager string
}

func fieldsFor(c model.Category) groupFields {
	g := string(c)
	return groupFields{
		ItemCount:   "hdn" + g + "NroItens",
		ItemList:    "hdn" + g + "Itens",
		CurrentPage: "hdn" + g + "PaginaAtual",
		TopPager:    "sel" + g + "PaginacaoSuperior",
		BottomPager: "sel" + g + "PaginacaoInferior",
	}
}
