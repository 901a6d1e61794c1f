package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/automatizamg/seilist/internal/dom"
)

func mustForm(t *testing.T, markup string) dom.Node {
	t.Helper()

	root, err := dom.Parse(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f, ok := root.Find("form")
	if !ok {
		t.Fatal("fixture has no form")
	}
	return f
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   State
	}{
		{
			name: "radio group without checked member takes first value",
			markup: `<form>
				<input type="radio" name="chkInfraItem" value="110">
				<input type="radio" name="chkInfraItem" value="220">
			</form>`,
			want: State{"chkInfraItem": "110"},
		},
		{
			name: "checked radio is kept by the gap filling pass",
			markup: `<form>
				<input type="radio" name="chkInfraItem" value="110">
				<input type="radio" name="chkInfraItem" value="220" checked>
			</form>`,
			want: State{"chkInfraItem": "220"},
		},
		{
			name: "unchecked checkbox is omitted",
			markup: `<form>
				<input type="checkbox" name="a" value="1">
				<input type="CHECKBOX" name="b" value="2" checked="checked">
			</form>`,
			want: State{"b": "2"},
		},
		{
			name: "select uses selected then first option then empty",
			markup: `<form>
				<select name="selected"><option value="1">1</option><option value="2" selected>2</option></select>
				<select name="first"><option value="a">a</option><option value="b">b</option></select>
				<select name="empty"></select>
			</form>`,
			want: State{"selected": "2", "first": "a", "empty": ""},
		},
		{
			name: "textarea is trimmed",
			markup: `<form><textarea name="obs">
				  note
			</textarea></form>`,
			want: State{"obs": "note"},
		},
		{
			name: "inputs win over selects with the same name",
			markup: `<form>
				<input type="hidden" name="hdnRecebidosPaginaAtual" value="0">
				<select name="hdnRecebidosPaginaAtual"><option value="9">9</option></select>
			</form>`,
			want: State{"hdnRecebidosPaginaAtual": "0"},
		},
		{
			name: "first input with a name wins",
			markup: `<form>
				<input type="hidden" name="dup" value="first">
				<input type="hidden" name="dup" value="second">
				<input type="text" name="novalue">
				<input type="text" value="nameless">
			</form>`,
			want: State{"dup": "first", "novalue": ""},
		},
		{
			name: "disabled and button-like inputs are serialized",
			markup: `<form>
				<input type="text" name="txtLocked" value="x" disabled>
				<input type="submit" name="sbmPesquisar" value="Pesquisar">
				<input type="button" name="btnFechar" value="Fechar">
				<input type="image" name="imgOk" value="ok">
				<input type="file" name="filAnexo">
			</form>`,
			want: State{"txtLocked": "x", "sbmPesquisar": "Pesquisar", "btnFechar": "Fechar", "imgOk": "ok", "filAnexo": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Serialize(mustForm(t, tt.markup))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStateHelpers(t *testing.T) {
	t.Parallel()

	s := State{"b": "2", "a": "1"}
	c := s.Clone()
	c.Set("a", "changed")

	if v, _ := s.Get("a"); v != "1" {
		t.Errorf("clone mutated original: %q", v)
	}
	if !c.Has("b") || c.Has("z") {
		t.Error("unexpected Has() result")
	}
	if diff := cmp.Diff([]string{"a", "b"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch:\n%s", diff)
	}
	if got := s.Values().Encode(); got != "a=1&b=2" {
		t.Errorf("Values().Encode() = %q", got)
	}
}

func TestAction(t *testing.T) {
	t.Parallel()

	f := mustForm(t, `<form action=" controlador.php?acao=procedimento_controlar "></form>`)
	if got := Action(f); got != "controlador.php?acao=procedimento_controlar" {
		t.Errorf("Action() = %q", got)
	}
}
