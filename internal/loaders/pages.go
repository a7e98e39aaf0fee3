package loaders

import (
	"context"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/resource"
	"github.com/payfisc/payfisc-admin/internal/services"
)

// everything asks list endpoints for a full reference list.
var everything = resource.Filters{Page: 1, Limit: 1000}

// Load is the single-list loader.
func Load[T any](ctx context.Context, logger *zap.Logger, c *resource.Client[T], f resource.Filters) Page[T] {
	var p Page[T]
	p.Error = Run(ctx, logger, c.Definition().Name, Into(&p.Records, func(ctx context.Context) apiclient.Envelope[[]*T] {
		env := c.List(ctx, f)
		p.Pagination = env.Pagination
		return env
	}))
	return p
}

// DashboardPage is the dashboard's initial state.
type DashboardPage struct {
	Stats     models.DashboardStats
	Paiements []models.Paiement
	Plaques   []models.Plaque
	Error     string
}

// Dashboard loads the counters, the latest payments and the available plates.
func Dashboard(ctx context.Context, logger *zap.Logger, cat *services.Catalog, siteID int) DashboardPage {
	var p DashboardPage
	p.Error = Run(ctx, logger, "dashboard",
		One(&p.Stats, cat.Stats),
		Into(&p.Paiements, func(ctx context.Context) apiclient.Envelope[[]*models.Paiement] {
			return cat.Paiements.List(ctx, resource.Filters{Page: 1, Limit: 5, SiteID: siteID})
		}),
		Into(&p.Plaques, func(ctx context.Context) apiclient.Envelope[[]*models.Plaque] {
			return cat.Plaques.List(ctx, resource.Filters{Page: 1, Limit: 5, Status: "disponible", SiteID: siteID})
		}),
	)
	return p
}

// EnginsPage carries the vehicles plus every reference list their form needs.
type EnginsPage struct {
	Page[models.Engin]
	Types      []models.TypeEngin
	Marques    []models.MarqueEngin
	Couleurs   []models.EnginCouleur
	Energies   []models.Energie
	Usages     []models.UsageEngin
	Puissances []models.PuissanceFiscale
}

func Engins(ctx context.Context, logger *zap.Logger, cat *services.Catalog, f resource.Filters) EnginsPage {
	var p EnginsPage
	p.Error = Run(ctx, logger, "engins",
		Into(&p.Records, func(ctx context.Context) apiclient.Envelope[[]*models.Engin] {
			env := cat.Engins.List(ctx, f)
			p.Pagination = env.Pagination
			return env
		}),
		Into(&p.Types, listAll(cat.TypesEngins)),
		Into(&p.Marques, listAll(cat.Marques)),
		Into(&p.Couleurs, listAll(cat.Couleurs)),
		Into(&p.Energies, listAll(cat.Energies)),
		Into(&p.Usages, listAll(cat.Usages)),
		Into(&p.Puissances, listAll(cat.Puissances)),
	)
	return p
}

// MarquesPage carries the brands and the vehicle types of the select.
type MarquesPage struct {
	Page[models.MarqueEngin]
	Types []models.TypeEngin
}

func Marques(ctx context.Context, logger *zap.Logger, cat *services.Catalog, f resource.Filters) MarquesPage {
	var p MarquesPage
	p.Error = Run(ctx, logger, "marques-engins",
		local(&p.Page, cat.Marques, f),
		Into(&p.Types, listAll(cat.TypesEngins)),
	)
	return p
}

// PuissancesPage carries the fiscal power ratings and the vehicle types.
type PuissancesPage struct {
	Page[models.PuissanceFiscale]
	Types []models.TypeEngin
}

func Puissances(ctx context.Context, logger *zap.Logger, cat *services.Catalog, f resource.Filters) PuissancesPage {
	var p PuissancesPage
	p.Error = Run(ctx, logger, "puissances-fiscales",
		local(&p.Page, cat.Puissances, f),
		Into(&p.Types, listAll(cat.TypesEngins)),
	)
	return p
}

// local fetches the whole list of a client-side resource, then searches and
// paginates it here the way Table does.
func local[T any](p *Page[T], c *resource.Client[T], f resource.Filters) Step {
	var all []T
	fetch := Into(&all, func(ctx context.Context) apiclient.Envelope[[]*T] {
		return c.List(ctx, resource.Filters{Status: f.Status, SiteID: f.SiteID})
	})
	p.Records = []T{}
	columns := c.Definition().Columns
	return func(ctx context.Context) string {
		if msg := fetch(ctx); msg != "" {
			return msg
		}
		matched := Filter(all, f.Search, func(v T) string { return searchText(v, columns) })
		records, pg := Paginate(matched, f.Page, f.Limit)
		p.Records, p.Pagination = records, &pg
		return ""
	}
}

func listAll[T any](c *resource.Client[T]) func(ctx context.Context) apiclient.Envelope[[]*T] {
	return func(ctx context.Context) apiclient.Envelope[[]*T] {
		return c.List(ctx, everything)
	}
}
