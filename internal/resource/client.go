// Package resource implements the generic backend client shared by every
// PayFisc resource. One Definition per resource carries its endpoint paths
// and literal field names.
package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// DefaultLimit is the page size used when none is requested.
const DefaultLimit = 20

// Filters narrow a list call. Zero values are not sent.
type Filters struct {
	Search string
	Page   int
	Limit  int
	Status string
	SiteID int
}

// Fields is a validated set of form values keyed by literal field name.
type Fields map[string]string

// Client performs the six operations of one resource. Each operation is
// exactly one backend call and always returns an envelope.
type Client[T any] struct {
	api *apiclient.Client
	def Definition
}

func New[T any](api *apiclient.Client, def Definition) *Client[T] {
	return &Client[T]{api: api, def: def}
}

func (c *Client[T]) Definition() Definition { return c.def }

func (c *Client[T]) label(lang string) string {
	return i18n.T(lang, c.def.Label)
}

func (c *Client[T]) request(ctx context.Context, op gate.Action, method, path, fallbackCode string) apiclient.Request {
	lang := i18n.LangFrom(ctx)
	return apiclient.Request{
		Resource:  c.def.Name,
		Operation: string(op),
		Method:    method,
		Path:      path,
		Fallback:  i18n.Tf(lang, fallbackCode, c.label(lang)),
	}
}

func unsupported[T any](ctx context.Context) apiclient.Envelope[T] {
	return apiclient.Fail[T](apiclient.KindBackend, i18n.T(i18n.LangFrom(ctx), "err.unsupported"))
}

// List fetches one page. With a search term and a search endpoint, the
// filters are POSTed as JSON instead.
func (c *Client[T]) List(ctx context.Context, f Filters) apiclient.Envelope[[]*T] {
	if c.def.Endpoints.List == "" {
		return unsupported[[]*T](ctx)
	}
	if f.Search != "" && c.def.Endpoints.Search != "" {
		req := c.request(ctx, gate.ActionList, http.MethodPost, c.def.Endpoints.Search, "err.list")
		req.Operation = "search"
		body := map[string]any{
			"search": f.Search,
			"page":   max(f.Page, 1),
			"limit":  limitOrDefault(f.Limit),
		}
		if f.Status != "" && c.def.StatusField != "" {
			body[c.def.StatusField] = f.Status
		}
		if f.SiteID > 0 {
			body["site_id"] = f.SiteID
		}
		req.Body = apiclient.JSONBody(body)
		return apiclient.Do[[]*T](ctx, c.api, req)
	}

	req := c.request(ctx, gate.ActionList, http.MethodGet, c.def.Endpoints.List, "err.list")
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" && c.def.StatusField != "" {
		q.Set(c.def.StatusField, f.Status)
	}
	if f.SiteID > 0 {
		q.Set("site_id", strconv.Itoa(f.SiteID))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	req.Query = q
	return apiclient.Do[[]*T](ctx, c.api, req)
}

// Get fetches one record by id.
func (c *Client[T]) Get(ctx context.Context, id int) apiclient.Envelope[*T] {
	if c.def.Endpoints.Get == "" {
		return unsupported[*T](ctx)
	}
	req := c.request(ctx, gate.ActionView, http.MethodGet, c.def.Endpoints.Get, "err.get")
	req.Query = url.Values{"id": {strconv.Itoa(id)}}
	return apiclient.Do[*T](ctx, c.api, req)
}

// Create sends a new record. The backend assigns the id; data may be absent.
func (c *Client[T]) Create(ctx context.Context, fields Fields) apiclient.Envelope[*T] {
	if c.def.Endpoints.Create == "" {
		return unsupported[*T](ctx)
	}
	req := c.request(ctx, gate.ActionCreate, http.MethodPost, c.def.Endpoints.Create, "err.create")
	req.Body = c.body(fields, 0)
	return apiclient.Do[*T](ctx, c.api, req)
}

// Update sends id plus the changed fields.
func (c *Client[T]) Update(ctx context.Context, id int, fields Fields) apiclient.Envelope[*T] {
	if c.def.Endpoints.Update == "" {
		return unsupported[*T](ctx)
	}
	req := c.request(ctx, gate.ActionUpdate, http.MethodPost, c.def.Endpoints.Update, "err.update")
	req.Body = c.body(fields, id)
	return apiclient.Do[*T](ctx, c.api, req)
}

// Delete removes a record. No data is expected back.
func (c *Client[T]) Delete(ctx context.Context, id int) apiclient.Envelope[*T] {
	if c.def.Endpoints.Delete == "" {
		return unsupported[*T](ctx)
	}
	req := c.request(ctx, gate.ActionDelete, http.MethodPost, c.def.Endpoints.Delete, "err.delete")
	req.Body = c.body(nil, id)
	return apiclient.Do[*T](ctx, c.api, req)
}

// ToggleStatus asks the backend to flip the record's status field.
func (c *Client[T]) ToggleStatus(ctx context.Context, id int) apiclient.Envelope[*T] {
	if c.def.Endpoints.Toggle == "" {
		return unsupported[*T](ctx)
	}
	req := c.request(ctx, gate.ActionToggle, http.MethodPost, c.def.Endpoints.Toggle, "err.toggle")
	req.Body = c.body(nil, id)
	return apiclient.Do[*T](ctx, c.api, req)
}

func (c *Client[T]) body(fields Fields, id int) apiclient.Body {
	if c.def.Encoding == JSON {
		m := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			m[k] = v
		}
		if id > 0 {
			m["id"] = id
		}
		return apiclient.JSONBody(m)
	}
	m := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	if id > 0 {
		m["id"] = strconv.Itoa(id)
	}
	return apiclient.MultipartBody(m)
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

// toRecord converts *T to a models.Record, keeping JSON nulls as nil.
func toRecord[T any](p *T) models.Record {
	if p == nil {
		return nil
	}
	if r, ok := any(p).(models.Record); ok {
		return r
	}
	return nil
}
