package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"":                           LangFR,
		"fr-FR,fr;q=0.9":             LangFR,
		"en-US,en;q=0.9":             LangEN,
		"de-DE,de;q=0.9":             LangFR,
		"de-DE;q=0.9, en-GB;q=0.8":   LangEN,
		"FR":                         LangFR,
		"en":                         LangEN,
	}
	for header, want := range cases {
		if got := DetectLanguage(header); got != want {
			t.Fatalf("DetectLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestT(t *testing.T) {
	if got := T(LangFR, "invalid_file"); got != "Fichier invalide" {
		t.Fatalf("unexpected fr message %q", got)
	}
	if got := T(LangEN, "invalid_file"); got != "Invalid file" {
		t.Fatalf("unexpected en message %q", got)
	}
	// Unknown language falls back to French.
	if got := T("de", "invalid_file"); got != "Fichier invalide" {
		t.Fatalf("expected French fallback got %q", got)
	}
	// Unknown keys stay visible.
	if got := T(LangFR, "cle_inconnue"); got != "cle_inconnue" {
		t.Fatalf("expected key passthrough got %q", got)
	}
}
