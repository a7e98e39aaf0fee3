package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is implemented by every backend record.
type Record interface {
	RecordID() int
}

// Particulier is an individual taxpayer.
type Particulier struct {
	ID        Int    `json:"id"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	NIF       string `json:"nif"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Adresse   string `json:"adresse"`
	Ville     string `json:"ville"`
	SiteID    Int    `json:"site_id"`
	Actif     Bool   `json:"actif"`
}

func (p Particulier) RecordID() int { return int(p.ID) }
func (p Particulier) SiteOf() int   { return int(p.SiteID) }

// FullName joins first and last name.
func (p Particulier) FullName() string {
	if p.Prenom == "" {
		return p.Nom
	}
	return p.Prenom + " " + p.Nom
}

// Entreprise is a company taxpayer.
type Entreprise struct {
	ID               Int    `json:"id"`
	RaisonSociale    string `json:"raison_sociale"`
	NIF              string `json:"nif"`
	RegistreCommerce string `json:"registre_commerce"`
	Telephone        string `json:"telephone"`
	Email            string `json:"email"`
	Adresse          string `json:"adresse"`
	SiteID           Int    `json:"site_id"`
	Actif            Bool   `json:"actif"`
}

func (e Entreprise) RecordID() int { return int(e.ID) }
func (e Entreprise) SiteOf() int   { return int(e.SiteID) }

// Engin is a registered vehicle.
type Engin struct {
	ID               Int    `json:"id"`
	NumeroChassis    string `json:"numero_chassis"`
	AnneeFabrication Int    `json:"annee_fabrication"`
	ParticulierID    Int    `json:"particulier_id"`
	MarqueID         Int    `json:"marque_id"`
	CouleurID        Int    `json:"couleur_id"`
	EnergieID        Int    `json:"energie_id"`
	UsageID          Int    `json:"usage_id"`
	PuissanceID      Int    `json:"puissance_id"`
	TypeEnginID      Int    `json:"type_engin_id"`
	SiteID           Int    `json:"site_id"`
	Actif            Bool   `json:"actif"`
}

func (e Engin) RecordID() int { return int(e.ID) }
func (e Engin) SiteOf() int   { return int(e.SiteID) }

// MarqueEngin is a vehicle brand. TypeEngin carries the backend-resolved label.
type MarqueEngin struct {
	ID          Int    `json:"id"`
	Libelle     string `json:"libelle"`
	Description string `json:"description"`
	TypeEnginID Int    `json:"type_engin_id"`
	TypeEngin   string `json:"type_engin"`
	Actif       Bool   `json:"actif"`
}

func (m MarqueEngin) RecordID() int { return int(m.ID) }

type TypeEngin struct {
	ID          Int    `json:"id"`
	Libelle     string `json:"libelle"`
	Description string `json:"description"`
	Actif       Bool   `json:"actif"`
}

func (t TypeEngin) RecordID() int { return int(t.ID) }

type EnginCouleur struct {
	ID      Int    `json:"id"`
	Nom     string `json:"nom"`
	CodeHex string `json:"code_hex"`
	Actif   Bool   `json:"actif"`
}

func (c EnginCouleur) RecordID() int { return int(c.ID) }

type Energie struct {
	ID          Int    `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	Couleur     string `json:"couleur"`
	Actif       Bool   `json:"actif"`
}

func (e Energie) RecordID() int { return int(e.ID) }

// PuissanceFiscale is a fiscal power rating for one vehicle type.
type PuissanceFiscale struct {
	ID               Int    `json:"id"`
	Libelle          string `json:"libelle"`
	NombreChevaux    Int    `json:"nombre_chevaux"`
	ValeurDeductible Float  `json:"valeur_deductible"`
	TypeEnginID      Int    `json:"type_engin_id"`
	Actif            Bool   `json:"actif"`
}

func (p PuissanceFiscale) RecordID() int { return int(p.ID) }

type UsageEngin struct {
	ID          Int    `json:"id"`
	Code        string `json:"code"`
	Libelle     string `json:"libelle"`
	Description string `json:"description"`
	Actif       Bool   `json:"actif"`
}

func (u UsageEngin) RecordID() int { return int(u.ID) }

// Plaque is a license plate. Its status field is literally "status".
type Plaque struct {
	ID      Int    `json:"id"`
	Numero  string `json:"numero"`
	Serie   string `json:"serie"`
	SiteID  Int    `json:"site_id"`
	EnginID Int    `json:"engin_id"`
	Status  string `json:"status"`
}

func (p Plaque) RecordID() int { return int(p.ID) }
func (p Plaque) SiteOf() int   { return int(p.SiteID) }

// CarteReprint is a card reprint request. Its status field is literally "statut".
type CarteReprint struct {
	ID            Int    `json:"id"`
	NumeroPlaque  string `json:"numero_plaque"`
	Motif         string `json:"motif"`
	ParticulierID Int    `json:"particulier_id"`
	DateDemande   string `json:"date_demande"`
	Statut        string `json:"statut"`
}

func (c CarteReprint) RecordID() int { return int(c.ID) }

// Paiement is read only.
type Paiement struct {
	ID            Int    `json:"id"`
	Reference     string `json:"reference"`
	Montant       Float  `json:"montant"`
	Mode          string `json:"mode"`
	DatePaiement  string `json:"date_paiement"`
	ParticulierID Int    `json:"particulier_id"`
	SiteID        Int    `json:"site_id"`
}

func (p Paiement) RecordID() int { return int(p.ID) }
func (p Paiement) SiteOf() int   { return int(p.SiteID) }

// Beneficiaire is read only.
type Beneficiaire struct {
	ID           Int    `json:"id"`
	Nom          string `json:"nom"`
	Telephone    string `json:"telephone"`
	NumeroCompte string `json:"numero_compte"`
	Actif        Bool   `json:"actif"`
}

func (b Beneficiaire) RecordID() int { return int(b.ID) }

// DashboardStats is returned by dashboard/get_stats.php.
type DashboardStats struct {
	TotalParticuliers  Int   `json:"total_particuliers"`
	TotalEntreprises   Int   `json:"total_entreprises"`
	TotalEngins        Int   `json:"total_engins"`
	TotalPlaques       Int   `json:"total_plaques"`
	PlaquesDisponibles Int   `json:"plaques_disponibles"`
	PlaquesAttribuees  Int   `json:"plaques_attribuees"`
	TotalPaiements     Int   `json:"total_paiements"`
	MontantTotal       Float `json:"montant_total"`
	MontantMois        Float `json:"montant_mois"`
	TotalBeneficiaires Int   `json:"total_beneficiaires"`
	CartesEnAttente    Int   `json:"cartes_en_attente"`
}

// Row flattens a record into its literal field names, for generic tables and
// for prefilling edit forms.
func Row(v any) map[string]string {
	buf, err := json.Marshal(v)
	if err != nil {
		return map[string]string{}
	}
	var raw map[string]any
	if err := json.Unmarshal(buf, &raw); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		switch x := val.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = x
		case bool:
			if x {
				out[k] = "1"
			} else {
				out[k] = "0"
			}
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}
