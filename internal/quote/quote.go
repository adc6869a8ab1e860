package quote

import (
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/money"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var tpl = template.Must(template.New("devis").Funcs(template.FuncMap{
	"euros": money.Format,
}).ParseFS(templateFS, "templates/*.html"))

// Row is one itemized entry on the rendered quote: a resolved prestation or a
// line with its quantity folded into the label.
type Row struct {
	Libelle string
	Montant float64
}

// Data is everything the devis template needs. Build it with Build so the
// total always matches the totals calculator.
type Data struct {
	Reference     string
	DefuntNom     string
	DefuntPrenom  string
	CeremonieDate *time.Time
	CeremonieLieu string
	Rows          []Row
	Total         float64
	Entreprise    *models.Entreprise
	// SignatureURL is pre-validated: html/template refuses data: URIs in src
	// attributes unless they are explicitly marked safe.
	SignatureURL template.URL
}

// Build resolves the dossier's selections against the catalogue and merges
// both line groups into one itemized table. Selection ids missing from the
// catalogue are skipped, mirroring how the totals calculator ignores them.
func Build(d *models.Dossier, catalogue []models.Prestation, e *models.Entreprise) Data {
	parID := make(map[string]models.Prestation, len(catalogue))
	for _, p := range catalogue {
		parID[strconv.FormatUint(uint64(p.ID), 10)] = p
	}
	rows := make([]Row, 0, len(d.Prestations)+len(d.Marbrerie)+len(d.Autres))
	for _, id := range d.Prestations {
		p, ok := parID[id]
		if !ok {
			continue
		}
		rows = append(rows, Row{Libelle: p.Nom, Montant: p.Prix})
	}
	for _, l := range append(append([]models.Ligne{}, d.Marbrerie...), d.Autres...) {
		rows = append(rows, Row{
			Libelle: l.Nom + " × " + strconv.FormatFloat(l.Qte, 'f', -1, 64),
			Montant: l.Qte * l.PU,
		})
	}
	data := Data{
		Reference:     d.Reference,
		DefuntNom:     d.DefuntNom,
		DefuntPrenom:  d.DefuntPrenom,
		CeremonieDate: d.CeremonieDate,
		CeremonieLieu: d.CeremonieLieu,
		Rows:          rows,
		Total:         services.TotauxDossier(d, catalogue),
		Entreprise:    e,
	}
	if e != nil && strings.HasPrefix(e.SignatureDataURL, "data:image/") {
		data.SignatureURL = template.URL(e.SignatureDataURL)
	}
	return data
}

// Render writes the printable HTML document. All user-supplied text passes
// through html/template's contextual escaping.
func Render(w io.Writer, data Data) error {
	return tpl.ExecuteTemplate(w, "devis.html", data)
}
