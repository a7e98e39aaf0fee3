// Package classifier maps a free-text fiscal question to one of a fixed set
// of data categories by keyword matching.
package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// General is returned when no keyword matches.
const General = "general"

// Category is one classification target with its keyword stems.
type Category struct {
	Type     string
	Keywords []string
}

// Categories are tried in this order; on equal scores the first one wins.
var Categories = []Category{
	{Type: "statistiques", Keywords: []string{"statistique", "stat", "combien", "nombre", "total", "moyenne", "taux", "evolution", "rapport", "chiffre", "bilan"}},
	{Type: "plaques", Keywords: []string{"plaque", "immatricul", "disponible", "attribu", "serie", "numero"}},
	{Type: "paiements", Keywords: []string{"paiement", "payer", "paye", "montant", "recette", "encaiss", "versement", "transaction", "reference"}},
	{Type: "contribuables", Keywords: []string{"contribuable", "particulier", "entreprise", "proprietaire", "personne", "client", "nif", "societe"}},
	{Type: "engins", Keywords: []string{"engin", "vehicule", "voiture", "moto", "camion", "marque", "chassis", "puissance", "energie"}},
	{Type: "beneficiaires", Keywords: []string{"beneficiaire", "repartition", "compte", "ayant"}},
}

// Result is the outcome of Analyse.
type Result struct {
	Type            string
	MatchedKeywords []string
}

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Tokenize folds s, splits it on every rune that is not a letter or digit
// and keeps tokens longer than two runes.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// Analyse classifies question. A keyword counts once when any token
// contains it. The highest score wins, strictly: ties keep the category
// declared first.
func Analyse(question string) Result {
	tokens := Tokenize(question)
	best := Result{Type: General, MatchedKeywords: []string{}}
	bestScore := 0
	for _, cat := range Categories {
		matched := matches(tokens, cat.Keywords)
		if len(matched) > bestScore {
			bestScore = len(matched)
			best = Result{Type: cat.Type, MatchedKeywords: matched}
		}
	}
	return best
}

func matches(tokens, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		for _, tok := range tokens {
			if strings.Contains(tok, kw) {
				out = append(out, kw)
				break
			}
		}
	}
	return out
}
