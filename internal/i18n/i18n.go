package i18n

import "strings"

// Supported languages; French is the application default.
const (
	LangFR = "fr"
	LangEN = "en"
)

var messages = map[string]map[string]string{
	LangFR: {
		"link_sent":             "Si cette adresse existe, un lien de connexion a été envoyé.",
		"invalid_email":         "Adresse email invalide.",
		"invalid_link":          "Lien de connexion invalide ou expiré.",
		"unauthorized":          "Connexion requise.",
		"invalid_file":          "Fichier invalide",
		"confirm_archive":       "Archiver ce dossier ?",
		"import_done":           "Import terminé",
		"dossier_not_found":     "Dossier introuvable.",
		"prestation_not_found":  "Prestation introuvable.",
		"groupe_inconnu":        "Groupe de lignes inconnu.",
	},
	LangEN: {
		"link_sent":             "If that address exists, a sign-in link has been sent.",
		"invalid_email":         "Invalid email address.",
		"invalid_link":          "Invalid or expired sign-in link.",
		"unauthorized":          "Login required.",
		"invalid_file":          "Invalid file",
		"confirm_archive":       "Archive this dossier?",
		"import_done":           "Import complete",
		"dossier_not_found":     "Dossier not found.",
		"prestation_not_found":  "Catalog entry not found.",
		"groupe_inconnu":        "Unknown line group.",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
// Anything that is not English falls back to French.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if len(tag) >= 2 && strings.EqualFold(tag[:2], "en") {
			return LangEN
		}
		if len(tag) >= 2 && strings.EqualFold(tag[:2], "fr") {
			return LangFR
		}
	}
	return LangFR
}

// T translates a message key; unknown keys are returned as-is so missing
// entries stay visible instead of silently disappearing.
func T(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[LangFR][key]; ok {
		return s
	}
	return key
}
