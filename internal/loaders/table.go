package loaders

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/resource"
)

// Option is one entry of a select fed by another resource.
type Option struct {
	Value string
	Label string
}

// TablePage is the state of the generic resource screen.
type TablePage struct {
	Page[models.Record]
	// Options maps a form field name to its select entries.
	Options map[string][]Option
}

// Lookup resolves reference resources by name.
type Lookup func(name string) (resource.Handle, bool)

// Table loads one page of h and, in parallel, every reference list its form
// selects need. Client-side resources are fetched whole then searched and
// paginated here.
func Table(ctx context.Context, logger *zap.Logger, h resource.Handle, f resource.Filters, lookup Lookup) TablePage {
	def := h.Definition()
	p := TablePage{Options: map[string][]Option{}}

	steps := []Step{func(ctx context.Context) string {
		query := f
		if def.ClientSide {
			query = resource.Filters{Status: f.Status, SiteID: f.SiteID}
		}
		env := h.ListRecords(ctx, query)
		if !env.OK() {
			p.Records = []models.Record{}
			return env.Message
		}
		records := compactRecords(env.Data)
		if def.ClientSide {
			records = Filter(records, f.Search, func(r models.Record) string { return searchText(r, def.Columns) })
			var pg apiclient.Pagination
			records, pg = Paginate(records, f.Page, f.Limit)
			p.Pagination = &pg
		} else {
			p.Pagination = env.Pagination
		}
		p.Records = records
		return ""
	}}

	// each select gets its own slot so steps never share a map
	type slot struct {
		field string
		opts  []Option
	}
	var slots []*slot
	for _, field := range def.Form {
		if field.Kind != resource.KindSelect || field.Options == "" || lookup == nil {
			continue
		}
		ref, ok := lookup(field.Options)
		if !ok {
			continue
		}
		s := &slot{field: field.Name, opts: []Option{}}
		slots = append(slots, s)
		steps = append(steps, func(ctx context.Context) string {
			env := ref.ListRecords(ctx, everything)
			if !env.OK() {
				return env.Message
			}
			for _, r := range compactRecords(env.Data) {
				s.opts = append(s.opts, Option{Value: strconv.Itoa(r.RecordID()), Label: optionLabel(r)})
			}
			return ""
		})
	}

	p.Error = Run(ctx, logger, def.Name, steps...)
	if p.Records == nil {
		p.Records = []models.Record{}
	}
	for _, s := range slots {
		p.Options[s.field] = s.opts
	}
	return p
}

func compactRecords(in []models.Record) []models.Record {
	out := make([]models.Record, 0, len(in))
	for _, r := range in {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// labelFields are tried in order to name a record in a select.
var labelFields = []string{"libelle", "nom", "raison_sociale", "numero", "code", "reference"}

func optionLabel(r models.Record) string {
	row := models.Row(r)
	for _, k := range labelFields {
		if v := row[k]; v != "" {
			return v
		}
	}
	return "#" + strconv.Itoa(r.RecordID())
}

func searchText(r any, columns []string) string {
	row := models.Row(r)
	text := ""
	for _, c := range columns {
		text += row[c] + " "
	}
	return text
}
