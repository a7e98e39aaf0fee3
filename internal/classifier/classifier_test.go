package classifier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Véhicule":      "vehicule",
		"BÉNÉFICIAIRES": "beneficiaires",
		"Numéro Série":  "numero serie",
		"déjà-vu":       "deja-vu",
		"":              "",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Combien de plaques sont disponibles ? (série AB-12)")
	want := []string{"combien", "plaques", "sont", "disponibles", "serie"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyse(t *testing.T) {
	tests := []struct {
		question string
		wantType string
		wantKW   []string
	}{
		{"Combien de plaques sont disponibles ?", "plaques", []string{"plaque", "disponible"}},
		{"Quel est le montant total des paiements ?", "paiements", []string{"paiement", "montant"}},
		{"Liste des contribuables particuliers", "contribuables", []string{"contribuable", "particulier"}},
		{"Quels véhicules de marque Toyota ?", "engins", []string{"vehicule", "marque"}},
		{"Répartition des bénéficiaires", "beneficiaires", []string{"beneficiaire", "repartition"}},
		{"Statistiques du mois", "statistiques", []string{"statistique", "stat"}},
		{"Bonjour", General, []string{}},
		{"", General, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got := Analyse(tt.question)
			if got.Type != tt.wantType {
				t.Errorf("Analyse(%q).Type = %q, want %q", tt.question, got.Type, tt.wantType)
			}
			if diff := cmp.Diff(tt.wantKW, got.MatchedKeywords); diff != "" {
				t.Errorf("MatchedKeywords mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Equal scores keep the first declared category.
func TestAnalyseTieBreak(t *testing.T) {
	// "nombre" (statistiques) vs "moto" (engins): one match each
	got := Analyse("nombre de motos")
	if got.Type != "statistiques" {
		t.Errorf("Type = %q, want statistiques", got.Type)
	}
}

func TestAnalyseDeterministic(t *testing.T) {
	q := "Combien de plaques sont disponibles ?"
	first := Analyse(q)
	for range 50 {
		if diff := cmp.Diff(first, Analyse(q)); diff != "" {
			t.Fatalf("Analyse not deterministic (-first +got):\n%s", diff)
		}
	}
}
