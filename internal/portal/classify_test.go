package portal

import "testing"

func TestClassifyLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want Outcome
	}{
		{name: "logout link", body: `<a id="lnkInfraSairSistema">Sair</a>`, want: OutcomeAuthenticated},
		{name: "control screen", body: "<title>SEI - Controle de Processos</title>", want: OutcomeAuthenticated},
		{name: "success wins over failure marker", body: "Sair - Senha inválida", want: OutcomeAuthenticated},
		{name: "wrong password", body: "Usuário ou senha incorretos.", want: OutcomeInvalidCredentials},
		{name: "invalid upper case", body: "LOGIN INVALID", want: OutcomeInvalidCredentials},
		{name: "blocked", body: "Acesso BLOQUEADO pelo administrador", want: OutcomeBlocked},
		{name: "lockout", body: "bloqueio temporário", want: OutcomeBlocked},
		{name: "unknown page", body: "<html><body>Aguarde</body></html>", want: OutcomeUnconfirmed},
		{name: "empty", body: "", want: OutcomeUnconfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyLogin(tt.body); got != tt.want {
				t.Errorf("ClassifyLogin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsControlScreen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want bool
	}{
		{body: "Controle de Processos", want: true},
		{body: `<form action="controlador.php?acao=procedimento_controlar">`, want: true},
		{body: "Selecionar Unidade", want: false},
		{body: "controle de processos", want: false},
	}
	for _, tt := range tests {
		if got := IsControlScreen(tt.body); got != tt.want {
			t.Errorf("IsControlScreen(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
