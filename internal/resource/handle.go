package resource

import (
	"context"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// Handle is the type-erased view of a Client used by the generic pages.
// Record slices keep nil entries for JSON nulls.
type Handle interface {
	Definition() Definition
	ListRecords(ctx context.Context, f Filters) apiclient.Envelope[[]models.Record]
	GetRecord(ctx context.Context, id int) apiclient.Envelope[models.Record]
	Mutate(ctx context.Context, action gate.Action, id int, fields Fields) apiclient.Envelope[models.Record]
	SiteScoped() bool
}

var _ Handle = (*Client[models.Plaque])(nil)

func (c *Client[T]) ListRecords(ctx context.Context, f Filters) apiclient.Envelope[[]models.Record] {
	env := c.List(ctx, f)
	out := apiclient.Envelope[[]models.Record]{
		Status:     env.Status,
		Pagination: env.Pagination,
		Message:    env.Message,
		Kind:       env.Kind,
		HTTPStatus: env.HTTPStatus,
	}
	if env.Data != nil {
		out.Data = make([]models.Record, len(env.Data))
		for i, p := range env.Data {
			out.Data[i] = toRecord(p)
		}
	}
	return out
}

func (c *Client[T]) GetRecord(ctx context.Context, id int) apiclient.Envelope[models.Record] {
	return erase(c.Get(ctx, id))
}

// SiteScoped reports whether records of this resource belong to one site.
func (c *Client[T]) SiteScoped() bool {
	_, ok := any(new(T)).(gate.SiteScoped)
	return ok
}

// Mutate dispatches create, update, delete and toggle. id is ignored for create.
func (c *Client[T]) Mutate(ctx context.Context, action gate.Action, id int, fields Fields) apiclient.Envelope[models.Record] {
	switch action {
	case gate.ActionCreate:
		return erase(c.Create(ctx, fields))
	case gate.ActionUpdate:
		return erase(c.Update(ctx, id, fields))
	case gate.ActionDelete:
		return erase(c.Delete(ctx, id))
	case gate.ActionToggle:
		return erase(c.ToggleStatus(ctx, id))
	}
	return unsupported[models.Record](ctx)
}

func erase[T any](env apiclient.Envelope[*T]) apiclient.Envelope[models.Record] {
	return apiclient.Envelope[models.Record]{
		Status:     env.Status,
		Data:       toRecord(env.Data),
		Pagination: env.Pagination,
		Message:    env.Message,
		Kind:       env.Kind,
		HTTPStatus: env.HTTPStatus,
	}
}
