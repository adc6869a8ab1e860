package services

import "testing"

func TestEntrepriseGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEntrepriseService(db)

	e, err := svc.GetOrCreate(1, "contact@pf.example")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if e.Nom != DefaultEntrepriseNom || e.Email != "contact@pf.example" {
		t.Fatalf("unexpected defaults: %+v", e)
	}

	// Second call returns the same row.
	again, err := svc.GetOrCreate(1, "autre@pf.example")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.ID != e.ID || again.Email != "contact@pf.example" {
		t.Fatalf("profile recreated or clobbered: %+v", again)
	}
}

func TestEntrepriseUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEntrepriseService(db)
	if _, err := svc.GetOrCreate(1, "contact@pf.example"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	siret := "123 456 789 00012"
	tel := "04 66 00 00 00"
	e, err := svc.Update(1, EntreprisePatch{Siret: &siret, Telephone: &tel})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Siret != siret || e.Telephone != tel {
		t.Fatalf("patch not applied: %+v", e)
	}
	if e.Nom != DefaultEntrepriseNom {
		t.Fatalf("untouched field changed: %q", e.Nom)
	}
}
