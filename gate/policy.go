package gate

import "context"

// Policy adds record-level rules on top of profile permissions.
// For list/create the resource is nil.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// SiteScoped is implemented by records that belong to one tax office site.
type SiteScoped interface {
	SiteOf() int
}

// SitePolicy restricts operators attached to a site to records of that site.
// Operators without a site (0) are national and see every site, as are
// records that carry no site.
type SitePolicy[U any] struct {
	siteOf func(ctx context.Context, user U) int
}

func NewSitePolicy[U any](siteOf func(ctx context.Context, user U) int) *SitePolicy[U] {
	return &SitePolicy[U]{siteOf: siteOf}
}

func (p *SitePolicy[U]) Can(ctx context.Context, user U, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	scoped, ok := resource.(SiteScoped)
	if !ok || scoped.SiteOf() == 0 {
		return true
	}
	site := p.siteOf(ctx, user)
	return site == 0 || site == scoped.SiteOf()
}
