package services

import (
	r "github.com/payfisc/payfisc-admin/internal/resource"
)

// crud builds the endpoint set of a resource whose scripts follow the
// dir/verb_noun.php convention.
func crud(dir, plural, singular string) r.Endpoints {
	return r.Endpoints{
		List:   dir + "/get_" + plural + ".php",
		Get:    dir + "/get_" + singular + ".php",
		Create: dir + "/create_" + singular + ".php",
		Update: dir + "/update_" + singular + ".php",
		Delete: dir + "/delete_" + singular + ".php",
		Toggle: dir + "/toggle_" + singular + "_status.php",
	}
}

func withSearch(e r.Endpoints, path string) r.Endpoints {
	e.Search = path
	return e
}

var (
	particuliersDef = r.Definition{
		Name:        "particuliers",
		Label:       "res.particuliers",
		Endpoints:   withSearch(crud("particuliers", "particuliers", "particulier"), "particuliers/search_particuliers.php"),
		StatusField: r.FieldActif,
		Columns:     []string{"nom", "prenom", "nif", "telephone", "ville", "actif"},
		Form: []r.FormField{
			{Name: "nom", Label: "Nom", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "prenom", Label: "Prénom", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "nif", Label: "NIF", Kind: r.KindText, MaxLength: 50},
			{Name: "telephone", Label: "Téléphone", Kind: r.KindText, Required: true, MaxLength: 20},
			{Name: "email", Label: "Email", Kind: r.KindEmail, MaxLength: 255},
			{Name: "adresse", Label: "Adresse", Kind: r.KindTextarea, MaxLength: 255},
			{Name: "ville", Label: "Ville", Kind: r.KindText, MaxLength: 100},
		},
	}

	entreprisesDef = r.Definition{
		Name:        "entreprises",
		Label:       "res.entreprises",
		Endpoints:   withSearch(crud("entreprises", "entreprises", "entreprise"), "entreprises/search_entreprises.php"),
		StatusField: r.FieldActif,
		Columns:     []string{"raison_sociale", "nif", "registre_commerce", "telephone", "actif"},
		Form: []r.FormField{
			{Name: "raison_sociale", Label: "Raison sociale", Kind: r.KindText, Required: true, MaxLength: 255},
			{Name: "nif", Label: "NIF", Kind: r.KindText, Required: true, MaxLength: 50},
			{Name: "registre_commerce", Label: "Registre de commerce", Kind: r.KindText, MaxLength: 100},
			{Name: "telephone", Label: "Téléphone", Kind: r.KindText, MaxLength: 20},
			{Name: "email", Label: "Email", Kind: r.KindEmail, MaxLength: 255},
			{Name: "adresse", Label: "Adresse", Kind: r.KindTextarea, MaxLength: 255},
		},
	}

	enginsDef = r.Definition{
		Name:        "engins",
		Label:       "res.engins",
		Endpoints:   withSearch(crud("engins", "engins", "engin"), "engins/search_engins.php"),
		StatusField: r.FieldActif,
		Columns:     []string{"numero_chassis", "annee_fabrication", "marque_id", "type_engin_id", "actif"},
		Form: []r.FormField{
			{Name: "numero_chassis", Label: "Numéro de châssis", Kind: r.KindText, Required: true, MaxLength: 50},
			{Name: "annee_fabrication", Label: "Année de fabrication", Kind: r.KindNumber, Required: true},
			{Name: "particulier_id", Label: "Propriétaire (id)", Kind: r.KindNumber, Required: true},
			{Name: "type_engin_id", Label: "Type d'engin", Kind: r.KindSelect, Required: true, Options: "types-engins"},
			{Name: "marque_id", Label: "Marque", Kind: r.KindSelect, Required: true, Options: "marques-engins"},
			{Name: "couleur_id", Label: "Couleur", Kind: r.KindSelect, Options: "couleurs"},
			{Name: "energie_id", Label: "Énergie", Kind: r.KindSelect, Options: "energies"},
			{Name: "usage_id", Label: "Usage", Kind: r.KindSelect, Options: "usages"},
			{Name: "puissance_id", Label: "Puissance fiscale", Kind: r.KindSelect, Options: "puissances-fiscales"},
		},
	}

	marquesDef = r.Definition{
		Name:        "marques-engins",
		Label:       "res.marques-engins",
		Endpoints:   crud("marques-engins", "marques", "marque"),
		StatusField: r.FieldActif,
		Columns:     []string{"libelle", "type_engin", "description", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "libelle", Label: "Libellé", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "type_engin_id", Label: "Type d'engin", Kind: r.KindSelect, Required: true, Options: "types-engins"},
			{Name: "description", Label: "Description", Kind: r.KindTextarea, MaxLength: 500},
		},
	}

	typesEnginsDef = r.Definition{
		Name:        "types-engins",
		Label:       "res.types-engins",
		Endpoints:   crud("types-engins", "types_engins", "type_engin"),
		StatusField: r.FieldActif,
		Columns:     []string{"libelle", "description", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "libelle", Label: "Libellé", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "description", Label: "Description", Kind: r.KindTextarea, MaxLength: 500},
		},
	}

	couleursDef = r.Definition{
		Name:        "couleurs",
		Label:       "res.couleurs",
		Endpoints:   crud("couleurs", "couleurs", "couleur"),
		StatusField: r.FieldActif,
		Columns:     []string{"nom", "code_hex", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "nom", Label: "Nom", Kind: r.KindText, Required: true, MaxLength: 50},
			{Name: "code_hex", Label: "Code couleur", Kind: r.KindColor, Required: true, MaxLength: 7},
		},
	}

	energiesDef = r.Definition{
		Name:        "energies",
		Label:       "res.energies",
		Endpoints:   crud("energies", "energies", "energie"),
		StatusField: r.FieldActif,
		Columns:     []string{"nom", "description", "couleur", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "nom", Label: "Nom", Kind: r.KindText, Required: true, MaxLength: 50},
			{Name: "description", Label: "Description", Kind: r.KindTextarea, MaxLength: 255},
			{Name: "couleur", Label: "Couleur", Kind: r.KindColor, MaxLength: 7},
		},
	}

	puissancesDef = r.Definition{
		Name:        "puissances-fiscales",
		Label:       "res.puissances-fiscales",
		Endpoints:   crud("puissances-fiscales", "puissances", "puissance"),
		StatusField: r.FieldActif,
		Columns:     []string{"libelle", "nombre_chevaux", "valeur_deductible", "type_engin_id", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "libelle", Label: "Libellé", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "nombre_chevaux", Label: "Nombre de chevaux", Kind: r.KindNumber, Required: true},
			{Name: "valeur_deductible", Label: "Valeur déductible", Kind: r.KindNumber, Required: true},
			{Name: "type_engin_id", Label: "Type d'engin", Kind: r.KindSelect, Required: true, Options: "types-engins"},
		},
	}

	usagesDef = r.Definition{
		Name:        "usages",
		Label:       "res.usages",
		Endpoints:   crud("usages", "usages", "usage"),
		StatusField: r.FieldActif,
		Columns:     []string{"code", "libelle", "description", "actif"},
		ClientSide:  true,
		Form: []r.FormField{
			{Name: "code", Label: "Code", Kind: r.KindText, Required: true, MaxLength: 20},
			{Name: "libelle", Label: "Libellé", Kind: r.KindText, Required: true, MaxLength: 100},
			{Name: "description", Label: "Description", Kind: r.KindTextarea, MaxLength: 500},
		},
	}

	plaquesDef = r.Definition{
		Name:        "plaques",
		Label:       "res.plaques",
		Endpoints:   withSearch(crud("plaques", "plaques", "plaque"), "plaques/search_plaques.php"),
		StatusField: r.FieldStatus,
		Columns:     []string{"numero", "serie", "site_id", "engin_id", "status"},
		Form: []r.FormField{
			{Name: "numero", Label: "Numéro", Kind: r.KindText, Required: true, MaxLength: 20},
			{Name: "serie", Label: "Série", Kind: r.KindText, Required: true, MaxLength: 10},
			{Name: "site_id", Label: "Site", Kind: r.KindNumber, Required: true},
			{Name: "status", Label: "Statut", Kind: r.KindSelect, Choices: []string{"disponible", "attribuee", "annulee"}},
		},
	}

	cartesDef = r.Definition{
		Name:        "cartes-reprint",
		Label:       "res.cartes-reprint",
		Endpoints:   crud("cartes-reprint", "cartes_reprint", "carte_reprint"),
		Encoding:    r.JSON,
		StatusField: r.FieldStatut,
		Columns:     []string{"numero_plaque", "motif", "particulier_id", "date_demande", "statut"},
		Form: []r.FormField{
			{Name: "numero_plaque", Label: "Numéro de plaque", Kind: r.KindText, Required: true, MaxLength: 20},
			{Name: "particulier_id", Label: "Particulier (id)", Kind: r.KindNumber, Required: true},
			{Name: "motif", Label: "Motif", Kind: r.KindTextarea, Required: true, MaxLength: 255},
			{Name: "statut", Label: "Statut", Kind: r.KindSelect, Choices: []string{"en_attente", "imprimee", "annulee"}},
		},
	}

	paiementsDef = r.Definition{
		Name:  "paiements",
		Label: "res.paiements",
		Endpoints: r.Endpoints{
			List:   "paiements/get_paiements.php",
			Search: "paiements/search_paiements.php",
			Get:    "paiements/get_paiement.php",
		},
		Columns: []string{"reference", "montant", "mode", "date_paiement", "particulier_id"},
	}

	beneficiairesDef = r.Definition{
		Name:  "beneficiaires",
		Label: "res.beneficiaires",
		Endpoints: r.Endpoints{
			List: "beneficiaires/get_beneficiaires.php",
			Get:  "beneficiaires/get_beneficiaire.php",
		},
		Columns:    []string{"nom", "telephone", "numero_compte", "actif"},
		ClientSide: true,
	}
)

const statsPath = "dashboard/get_stats.php"
