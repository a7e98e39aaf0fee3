package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBool_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`1`, true, false},
		{`0`, false, false},
		{`"1"`, true, false},
		{`"0"`, false, false},
		{`"true"`, true, false},
		{`null`, false, false},
		{`""`, false, false},
		{`"oui"`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var b Bool
			err := json.Unmarshal([]byte(tt.in), &b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && b != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, b, tt.want)
			}
		})
	}
}

func TestIntAndFloat(t *testing.T) {
	var rec PuissanceFiscale
	in := `{"id":"7","libelle":"5 CV","nombre_chevaux":5,"valeur_deductible":"1500.50","type_engin_id":null,"actif":"1"}`
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := PuissanceFiscale{ID: 7, Libelle: "5 CV", NombreChevaux: 5, ValeurDeductible: 1500.5, Actif: true}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("PuissanceFiscale mismatch (-want +got):\n%s", diff)
	}

	var n Int
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Error("expected error for non numeric id")
	}
}

func TestLiteralStatusFields(t *testing.T) {
	var p Plaque
	if err := json.Unmarshal([]byte(`{"id":1,"numero":"AB-123","status":"disponible"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Status != "disponible" {
		t.Errorf("Plaque.Status = %q", p.Status)
	}
	var c CarteReprint
	if err := json.Unmarshal([]byte(`{"id":2,"statut":"en_attente"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Statut != "en_attente" {
		t.Errorf("CarteReprint.Statut = %q", c.Statut)
	}
}

func TestRow(t *testing.T) {
	row := Row(MarqueEngin{ID: 3, Libelle: "Toyota", TypeEnginID: 2, Actif: true})
	want := map[string]string{
		"id":            "3",
		"libelle":       "Toyota",
		"description":   "",
		"type_engin_id": "2",
		"type_engin":    "",
		"actif":         "1",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Row mismatch (-want +got):\n%s", diff)
	}
}

func TestParticulier_FullName(t *testing.T) {
	if got := (Particulier{Nom: "Diallo", Prenom: "Awa"}).FullName(); got != "Awa Diallo" {
		t.Errorf("FullName() = %q", got)
	}
	if got := (Particulier{Nom: "Diallo"}).FullName(); got != "Diallo" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestOperator_DisplayName(t *testing.T) {
	if got := (Operator{Email: "a@b.c"}).DisplayName(); got != "a@b.c" {
		t.Errorf("DisplayName() = %q", got)
	}
}
