package loaders

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/internal/classifier"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/resource"
	"github.com/payfisc/payfisc-admin/internal/services"
)

// answerLimit caps the records shown under an answer.
const answerLimit = 10

// categoryResources lists what each category shows, in display order.
var categoryResources = map[string][]string{
	"plaques":       {"plaques"},
	"paiements":     {"paiements"},
	"contribuables": {"particuliers", "entreprises"},
	"engins":        {"engins"},
	"beneficiaires": {"beneficiaires"},
}

// Section is one table of an answer.
type Section struct {
	Resource string
	Columns  []string
	Rows     []map[string]string
}

// AnswerPage is the fiscal assistant's reply to one question.
type AnswerPage struct {
	Question string
	Result   classifier.Result
	Stats    *models.DashboardStats
	Sections []Section
	Error    string
}

// Answer classifies question and loads the data of the detected category.
// A general question loads nothing.
func Answer(ctx context.Context, logger *zap.Logger, cat *services.Catalog, question string, siteID int) AnswerPage {
	p := AnswerPage{Question: question, Result: classifier.Analyse(question), Sections: []Section{}}

	if p.Result.Type == "statistiques" {
		var stats models.DashboardStats
		p.Error = Run(ctx, logger, "ia", One(&stats, cat.Stats))
		if p.Error == "" {
			p.Stats = &stats
		}
		return p
	}

	names := categoryResources[p.Result.Type]
	sections := make([]Section, len(names))
	steps := make([]Step, 0, len(names))
	for i, name := range names {
		h, ok := cat.Handle(name)
		if !ok {
			continue
		}
		def := h.Definition()
		f := resource.Filters{Page: 1, Limit: answerLimit, SiteID: siteID}
		if name == "plaques" && slices.Contains(p.Result.MatchedKeywords, "disponible") {
			f.Status = "disponible"
		}
		sections[i] = Section{Resource: name, Columns: def.Columns, Rows: []map[string]string{}}
		steps = append(steps, func(ctx context.Context) string {
			env := h.ListRecords(ctx, f)
			if !env.OK() {
				return env.Message
			}
			for _, r := range compactRecords(env.Data) {
				sections[i].Rows = append(sections[i].Rows, models.Row(r))
			}
			return ""
		})
	}
	p.Error = Run(ctx, logger, "ia", steps...)
	for _, s := range sections {
		if s.Resource != "" {
			p.Sections = append(p.Sections, s)
		}
	}
	return p
}
