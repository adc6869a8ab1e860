package services

import (
	"strings"

	"github.com/google/uuid"
)

// NewLigneID returns a short identifier for a line item. Lignes only exist
// inside their dossier's JSON groups, so a short local id is enough; catalog
// prestations keep their server-assigned ids.
func NewLigneID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
