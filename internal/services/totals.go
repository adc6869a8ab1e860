package services

import (
	"strconv"

	"github.com/loubet-victor/dossiers-app/internal/models"
)

// TotauxDossier computes the displayed total of a dossier against the current
// catalogue: prices of the selected prestations plus both line groups.
// Selection ids that no longer resolve in the catalogue contribute 0 (a
// deleted prestation leaves stale references behind, see CatalogueService).
// Pure: safe to call repeatedly for list and detail rendering.
func TotauxDossier(d *models.Dossier, catalogue []models.Prestation) float64 {
	if d == nil {
		return 0
	}
	prix := make(map[string]float64, len(catalogue))
	for _, p := range catalogue {
		prix[strconv.FormatUint(uint64(p.ID), 10)] = p.Prix
	}
	var total float64
	for _, id := range d.Prestations {
		total += prix[id]
	}
	total += TotalLignes(d.Marbrerie)
	total += TotalLignes(d.Autres)
	return total
}

// TotalLignes sums qte × pu over one line group.
func TotalLignes(lignes []models.Ligne) float64 {
	var total float64
	for _, l := range lignes {
		total += l.Qte * l.PU
	}
	return total
}
