// Package services wires one resource client per backend resource around a
// single injected API client.
package services

import (
	"context"
	"net/http"

	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/resource"
)

// Catalog holds the typed clients plus a by-name index for generic pages.
type Catalog struct {
	api *apiclient.Client

	Particuliers  *resource.Client[models.Particulier]
	Entreprises   *resource.Client[models.Entreprise]
	Engins        *resource.Client[models.Engin]
	Marques       *resource.Client[models.MarqueEngin]
	TypesEngins   *resource.Client[models.TypeEngin]
	Couleurs      *resource.Client[models.EnginCouleur]
	Energies      *resource.Client[models.Energie]
	Puissances    *resource.Client[models.PuissanceFiscale]
	Usages        *resource.Client[models.UsageEngin]
	Plaques       *resource.Client[models.Plaque]
	Cartes        *resource.Client[models.CarteReprint]
	Paiements     *resource.Client[models.Paiement]
	Beneficiaires *resource.Client[models.Beneficiaire]

	handles map[string]resource.Handle
	order   []string
}

func NewCatalog(api *apiclient.Client) *Catalog {
	c := &Catalog{
		api:           api,
		Particuliers:  resource.New[models.Particulier](api, particuliersDef),
		Entreprises:   resource.New[models.Entreprise](api, entreprisesDef),
		Engins:        resource.New[models.Engin](api, enginsDef),
		Marques:       resource.New[models.MarqueEngin](api, marquesDef),
		TypesEngins:   resource.New[models.TypeEngin](api, typesEnginsDef),
		Couleurs:      resource.New[models.EnginCouleur](api, couleursDef),
		Energies:      resource.New[models.Energie](api, energiesDef),
		Puissances:    resource.New[models.PuissanceFiscale](api, puissancesDef),
		Usages:        resource.New[models.UsageEngin](api, usagesDef),
		Plaques:       resource.New[models.Plaque](api, plaquesDef),
		Cartes:        resource.New[models.CarteReprint](api, cartesDef),
		Paiements:     resource.New[models.Paiement](api, paiementsDef),
		Beneficiaires: resource.New[models.Beneficiaire](api, beneficiairesDef),
	}
	// navigation order
	for _, h := range []resource.Handle{
		c.Particuliers, c.Entreprises, c.Engins, c.Plaques, c.Cartes,
		c.Paiements, c.Beneficiaires,
		c.Marques, c.TypesEngins, c.Puissances, c.Usages, c.Couleurs, c.Energies,
	} {
		c.register(h)
	}
	return c
}

func (c *Catalog) register(h resource.Handle) {
	if c.handles == nil {
		c.handles = make(map[string]resource.Handle)
	}
	name := h.Definition().Name
	c.handles[name] = h
	c.order = append(c.order, name)
}

// Handle returns the client registered under name.
func (c *Catalog) Handle(name string) (resource.Handle, bool) {
	h, ok := c.handles[name]
	return h, ok
}

// Names lists the resources in navigation order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Stats fetches the dashboard counters.
func (c *Catalog) Stats(ctx context.Context) apiclient.Envelope[*models.DashboardStats] {
	lang := i18n.LangFrom(ctx)
	return apiclient.Do[*models.DashboardStats](ctx, c.api, apiclient.Request{
		Resource:  "dashboard",
		Operation: "stats",
		Method:    http.MethodGet,
		Path:      statsPath,
		Fallback:  i18n.Tf(lang, "err.list", i18n.T(lang, "res.dashboard")),
	})
}
