// Package i18n holds the console's translation catalogs (fr default, en) and
// the helpers used to carry the request language through a context.
package i18n

import (
	"context"
	"fmt"
	"strings"
)

const DefaultLang = "fr"

type langKey struct{}

var catalogs = map[string]map[string]string{
	"fr": {
		"required":      "Requis",
		"too_long":      "Trop long",
		"invalid_email": "Adresse e-mail invalide",
		"invalid_value": "Valeur invalide",

		"err.network":     "Impossible de joindre le serveur. Vérifiez votre connexion.",
		"err.timeout":     "Le serveur met trop de temps à répondre. Réessayez plus tard.",
		"err.malformed":   "Réponse inattendue du serveur.",
		"err.generic":     "Une erreur inattendue est survenue.",
		"err.unsupported": "Opération non disponible pour cette ressource.",
		"err.list":        "Erreur lors du chargement des %s",
		"err.get":         "Erreur lors de la récupération des %s",
		"err.create":      "Erreur lors de la création (%s)",
		"err.update":      "Erreur lors de la modification (%s)",
		"err.delete":      "Erreur lors de la suppression (%s)",
		"err.toggle":      "Erreur lors du changement de statut (%s)",
		"err.processing":  "Une opération est déjà en cours pour cet élément.",
		"err.forbidden":   "Vous n'avez pas les droits nécessaires.",
		"err.not_found":   "Élément introuvable.",
		"err.login":       "Email ou mot de passe incorrect",

		"ok.create":  "Enregistrement créé avec succès",
		"ok.update":  "Enregistrement modifié avec succès",
		"ok.delete":  "Enregistrement supprimé avec succès",
		"ok.toggle":  "Statut modifié avec succès",
		"ok.profile": "Profil mis à jour",

		"res.particuliers":        "particuliers",
		"res.entreprises":         "entreprises",
		"res.engins":              "engins",
		"res.marques-engins":      "marques d'engins",
		"res.types-engins":        "types d'engins",
		"res.couleurs":            "couleurs",
		"res.energies":            "énergies",
		"res.puissances-fiscales": "puissances fiscales",
		"res.usages":              "usages",
		"res.plaques":             "plaques",
		"res.cartes-reprint":      "cartes de réimpression",
		"res.paiements":           "paiements",
		"res.beneficiaires":       "bénéficiaires",
		"res.dashboard":           "statistiques",

		"ia.statistiques":  "Statistiques",
		"ia.plaques":       "Plaques",
		"ia.paiements":     "Paiements",
		"ia.contribuables": "Contribuables",
		"ia.engins":        "Engins",
		"ia.beneficiaires": "Bénéficiaires",
		"ia.general":       "Question générale",
		"ia.no_match":      "Je n'ai pas compris la question. Essayez avec des mots comme « plaques », « paiements » ou « contribuables ».",

		"empty":    "Aucun enregistrement trouvé",
		"search":   "Rechercher",
		"new":      "Nouveau",
		"edit":     "Modifier",
		"delete":   "Supprimer",
		"toggle":   "Activer / désactiver",
		"save":     "Enregistrer",
		"cancel":   "Annuler",
		"active":   "Actif",
		"inactive": "Inactif",
		"actions":  "Actions",
		"close":    "Fermer",
		"all":      "Tous",
		"back":     "Retour",
		"details":  "Détails",
		"create":   "Création",
		"update":   "Modification",
		"name":     "Nom",
		"none":     "Aucun",
		"profile":  "Profil",
		"site":     "Site",
		"previous": "Précédent",
		"next":     "Suivant",

		"confirm.delete": "Supprimer cet enregistrement ?",
		"site.help":      "0 = tous les sites",
		"profile.system": "système",
		"ok.permissions": "Permissions enregistrées",

		"nav.dashboard": "Tableau de bord",
		"nav.ia":        "Assistant fiscal",
		"nav.operators": "Opérateurs",
		"nav.profiles":  "Profils",
		"nav.journal":   "Journal",
		"nav.logout":    "Déconnexion",

		"login.title":    "Connexion",
		"login.email":    "Email",
		"login.password": "Mot de passe",
		"login.submit":   "Se connecter",

		"stats.particuliers":        "Particuliers",
		"stats.entreprises":         "Entreprises",
		"stats.engins":              "Engins",
		"stats.plaques_disponibles": "Plaques disponibles",
		"stats.plaques_attribuees":  "Plaques attribuées",
		"stats.paiements":           "Paiements",
		"stats.montant_total":       "Montant total",
		"stats.montant_mois":        "Montant du mois",
		"stats.cartes_en_attente":   "Cartes en attente",
		"stats.beneficiaires":       "Bénéficiaires",

		"dashboard.latest_payments":  "Derniers paiements",
		"dashboard.available_plates": "Plaques disponibles",

		"ia.placeholder": "Ex. : combien de plaques sont disponibles ?",
		"ia.ask":         "Demander",
		"ia.detected":    "Catégorie détectée :",
		"ia.keywords":    "mots-clés :",

		"journal.date":     "Date",
		"journal.operator": "Opérateur",
		"journal.resource": "Ressource",
		"journal.action":   "Action",
		"journal.request":  "Requête",
	},
	"en": {
		"required":      "Required",
		"too_long":      "Too long",
		"invalid_email": "Invalid email address",
		"invalid_value": "Invalid value",

		"err.network":     "Unable to reach the server. Check your connection.",
		"err.timeout":     "The server took too long to answer. Try again later.",
		"err.malformed":   "Unexpected response from the server.",
		"err.generic":     "An unexpected error occurred.",
		"err.unsupported": "Operation not available for this resource.",
		"err.list":        "Failed to load %s",
		"err.get":         "Failed to fetch %s",
		"err.create":      "Failed to create (%s)",
		"err.update":      "Failed to update (%s)",
		"err.delete":      "Failed to delete (%s)",
		"err.toggle":      "Failed to change status (%s)",
		"err.processing":  "An operation is already in progress for this item.",
		"err.forbidden":   "You are not allowed to do this.",
		"err.not_found":   "Item not found.",
		"err.login":       "Invalid email or password",

		"ok.create":  "Record created",
		"ok.update":  "Record updated",
		"ok.delete":  "Record deleted",
		"ok.toggle":  "Status changed",
		"ok.profile": "Profile updated",

		"res.particuliers":        "taxpayers",
		"res.entreprises":         "companies",
		"res.engins":              "vehicles",
		"res.marques-engins":      "vehicle brands",
		"res.types-engins":        "vehicle types",
		"res.couleurs":            "colors",
		"res.energies":            "energies",
		"res.puissances-fiscales": "fiscal power ratings",
		"res.usages":              "usages",
		"res.plaques":             "plates",
		"res.cartes-reprint":      "card reprints",
		"res.paiements":           "payments",
		"res.beneficiaires":       "beneficiaries",
		"res.dashboard":           "statistics",

		"ia.statistiques":  "Statistics",
		"ia.plaques":       "Plates",
		"ia.paiements":     "Payments",
		"ia.contribuables": "Taxpayers",
		"ia.engins":        "Vehicles",
		"ia.beneficiaires": "Beneficiaries",
		"ia.general":       "General question",
		"ia.no_match":      "I did not understand the question. Try words like \"plaques\", \"paiements\" or \"contribuables\".",

		"empty":    "No records found",
		"search":   "Search",
		"new":      "New",
		"edit":     "Edit",
		"delete":   "Delete",
		"toggle":   "Enable / disable",
		"save":     "Save",
		"cancel":   "Cancel",
		"active":   "Active",
		"inactive": "Inactive",
		"actions":  "Actions",
		"close":    "Close",
		"all":      "All",
		"back":     "Back",
		"details":  "Details",
		"create":   "Creation",
		"update":   "Update",
		"name":     "Name",
		"none":     "None",
		"profile":  "Profile",
		"site":     "Site",
		"previous": "Previous",
		"next":     "Next",

		"confirm.delete": "Delete this record?",
		"site.help":      "0 = every site",
		"profile.system": "system",
		"ok.permissions": "Permissions saved",

		"nav.dashboard": "Dashboard",
		"nav.ia":        "Tax assistant",
		"nav.operators": "Operators",
		"nav.profiles":  "Profiles",
		"nav.journal":   "Journal",
		"nav.logout":    "Sign out",

		"login.title":    "Sign in",
		"login.email":    "Email",
		"login.password": "Password",
		"login.submit":   "Sign in",

		"stats.particuliers":        "Taxpayers",
		"stats.entreprises":         "Companies",
		"stats.engins":              "Vehicles",
		"stats.plaques_disponibles": "Available plates",
		"stats.plaques_attribuees":  "Assigned plates",
		"stats.paiements":           "Payments",
		"stats.montant_total":       "Total amount",
		"stats.montant_mois":        "This month",
		"stats.cartes_en_attente":   "Pending cards",
		"stats.beneficiaires":       "Beneficiaries",

		"dashboard.latest_payments":  "Latest payments",
		"dashboard.available_plates": "Available plates",

		"ia.placeholder": "e.g. how many plates are available?",
		"ia.ask":         "Ask",
		"ia.detected":    "Detected category:",
		"ia.keywords":    "keywords:",

		"journal.date":     "Date",
		"journal.operator": "Operator",
		"journal.resource": "Resource",
		"journal.action":   "Action",
		"journal.request":  "Request",
	},
}

// T translates code into lang. Unknown languages fall back to French and
// unknown codes are returned unchanged.
func T(lang, code string) string {
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if base == "en" {
			return "en"
		}
		if base == "fr" {
			return "fr"
		}
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFrom returns the language stored in ctx, or the default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(langKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}
