package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
)

// The JSON field names are the backup schema; renaming one breaks every
// previously exported file.
func TestDossierJSONSchema(t *testing.T) {
	when := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	d := Dossier{
		ID:             3,
		Reference:      "PFV-2026-0003",
		DefuntNom:      "Durand",
		DefuntPrenom:   "Marie",
		FamilleContact: "M. Durand 06 11 22 33 44",
		CeremonieDate:  &when,
		CeremonieLieu:  "Église Saint-Roch",
		Prestations:    datatypes.JSONSlice[string]{"1"},
		Marbrerie:      datatypes.JSONSlice[Ligne]{{ID: "a", Nom: "Gravure", Qte: 1, PU: 150}},
		Archive:        true,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, field := range []string{
		`"reference"`, `"defunt_nom"`, `"defunt_prenom"`, `"famille_contact"`,
		`"ceremonie_date"`, `"ceremonie_lieu"`, `"prestations"`, `"marbrerie"`,
		`"autres"`, `"cree_le"`, `"modifie_le"`, `"archive"`,
		`"qte"`, `"pu"`,
	} {
		if !strings.Contains(body, field) {
			t.Fatalf("missing field %s in %s", field, body)
		}
	}
}

func TestUtilisateurHidesTimestamps(t *testing.T) {
	raw, err := json.Marshal(Utilisateur{ID: 1, Email: "a@b.fr"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "CreatedAt") || strings.Contains(string(raw), "created_at") {
		t.Fatalf("timestamps leaked: %s", raw)
	}
}
