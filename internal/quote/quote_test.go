package quote

import (
	"bytes"
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/loubet-victor/dossiers-app/internal/models"
)

func TestBuildResolvesSelectionAndLignes(t *testing.T) {
	catalogue := []models.Prestation{
		{ID: 1, Nom: "Cercueil chêne", Prix: 780},
		{ID: 2, Nom: "Transport", Prix: 220},
	}
	d := &models.Dossier{
		Reference:    "PFV-2026-0001",
		DefuntNom:    "Durand",
		DefuntPrenom: "Marie",
		Prestations:  datatypes.JSONSlice[string]{"1", "999"},
		Marbrerie: datatypes.JSONSlice[models.Ligne]{
			{ID: "a", Nom: "Gravure", Qte: 2, PU: 75},
		},
	}
	data := Build(d, catalogue, &models.Entreprise{Nom: "PF Loubet"})

	// The stale id 999 disappears from the rows but the total still matches
	// the calculator (which also skips it).
	if len(data.Rows) != 2 {
		t.Fatalf("expected 2 rows got %+v", data.Rows)
	}
	if data.Rows[0].Libelle != "Cercueil chêne" || data.Rows[0].Montant != 780 {
		t.Fatalf("unexpected first row %+v", data.Rows[0])
	}
	if data.Rows[1].Libelle != "Gravure × 2" || data.Rows[1].Montant != 150 {
		t.Fatalf("unexpected ligne row %+v", data.Rows[1])
	}
	if data.Total != 930 {
		t.Fatalf("expected total 930 got %v", data.Total)
	}
}

func TestBuildSignatureOnlyForImageDataURI(t *testing.T) {
	d := &models.Dossier{}
	withImage := Build(d, nil, &models.Entreprise{SignatureDataURL: "data:image/png;base64,AAAA"})
	if withImage.SignatureURL == "" {
		t.Fatalf("expected signature URL to pass through")
	}
	withJunk := Build(d, nil, &models.Entreprise{SignatureDataURL: "javascript:alert(1)"})
	if withJunk.SignatureURL != "" {
		t.Fatalf("non-image signature must be dropped")
	}
}

func TestRenderEscapesUserText(t *testing.T) {
	d := &models.Dossier{
		Reference: "PFV-2026-0002",
		DefuntNom: "<script>alert('x')</script>",
		Autres: datatypes.JSONSlice[models.Ligne]{
			{ID: "a", Nom: "Fleurs", Qte: 1, PU: 45},
		},
	}
	data := Build(d, nil, &models.Entreprise{Nom: "PF Loubet", Siret: "123"})

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := buf.String()
	if strings.Contains(body, "<script>alert") {
		t.Fatalf("user text not escaped:\n%s", body)
	}
	for _, want := range []string{"Devis PFV-2026-0002", "Fleurs × 1", "Total TTC", "PF Loubet", "SIRET 123"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output:\n%s", want, body)
		}
	}
}
