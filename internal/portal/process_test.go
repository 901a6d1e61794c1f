package portal

import "testing"

func TestCanonicalizeProcessNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already canonical", in: "2024.01.0001234/2024-01", want: "2024.01.0001234/2024-01"},
		{name: "loose spacing and en dash", in: "2024.  01.0001234 / 2024 – 01", want: "2024.01.0001234/2024-01"},
		{name: "non-breaking spaces", in: "2024.\u00a001.\u00a00001234\u00a0/ 2024 - 01", want: "2024.01.0001234/2024-01"},
		{name: "em dash", in: "1500.01.0000101/2024—11", want: "1500.01.0000101/2024-11"},
		{name: "surrounding blanks", in: "  1500.01.0000101/2024-11 ", want: "1500.01.0000101/2024-11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CanonicalizeProcessNumber(tt.in)
			if got != tt.want {
				t.Errorf("CanonicalizeProcessNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := CanonicalizeProcessNumber(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFindProcessNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "1500.01.0000101/2024-11", want: "1500.01.0000101/2024-11", wantOK: true},
		{in: "Processo 2024. 01. 0001234 / 2024 - 01 (Recebido)", want: "2024.01.0001234/2024-01", wantOK: true},
		{in: "controlador.php?acao=procedimento_trabalhar&id_procedimento=101", wantOK: false},
		{in: "12345.01.0001234/2024-01x", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := FindProcessNumber(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("FindProcessNumber(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
