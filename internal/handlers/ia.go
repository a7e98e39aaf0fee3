package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/loaders"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

const maxQuestionLength = 500

// FiscalAIHandler answers free-text questions from the data of the detected
// category.
type FiscalAIHandler struct {
	catalog *services.Catalog
	gate    *policy.AuthGate
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewFiscalAIHandler(cat *services.Catalog, ag *policy.AuthGate, m *metrics.Metrics, log *zap.Logger) *FiscalAIHandler {
	return &FiscalAIHandler{catalog: cat, gate: ag, metrics: m, log: log}
}

// Ask serves GET /ia (optionally with ?q=) and POST /ia.
func (h *FiscalAIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := i18n.LangFrom(ctx)
	if err := h.gate.Authorize(ctx, gate.ActionList, "ia", nil); err != nil {
		http.Error(w, i18n.T(lang, "err.forbidden"), http.StatusForbidden)
		return
	}

	question := strings.TrimSpace(r.URL.Query().Get("q"))
	if r.Method == http.MethodPost {
		question = strings.TrimSpace(r.FormValue("question"))
	}
	if utf8.RuneCountInString(question) > maxQuestionLength {
		question = string([]rune(question)[:maxQuestionLength])
	}

	data := map[string]any{
		"Title":    i18n.T(lang, "nav.ia"),
		"Question": question,
		"Nav":      navItems(h.catalog, lang),
	}
	if question != "" {
		answer := loaders.Answer(ctx, h.log, h.catalog, question, h.gate.SiteOf(ctx))
		h.metrics.Questions.WithLabelValues(answer.Result.Type).Inc()
		logging.From(ctx, h.log).Debug("question classified",
			zap.String("category", answer.Result.Type),
			zap.Strings("keywords", answer.Result.MatchedKeywords),
		)
		if httpx.WantsJSON(r) {
			httpx.JSON(w, http.StatusOK, answer)
			return
		}
		data["Answer"] = answer
		data["Alert"] = answer.Error
	}
	if err := view.Render(w, r, "ia.html", data); err != nil {
		logging.From(ctx, h.log).Error("render ia", zap.Error(err))
		http.Error(w, i18n.T(lang, "err.generic"), http.StatusInternalServerError)
	}
}
