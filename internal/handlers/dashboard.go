package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/loaders"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

type DashboardHandler struct {
	catalog *services.Catalog
	gate    *policy.AuthGate
	log     *zap.Logger
}

func NewDashboardHandler(cat *services.Catalog, ag *policy.AuthGate, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{catalog: cat, gate: ag, log: log}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gate.Authorize(ctx, gate.ActionList, "dashboard", nil); err != nil {
		http.Error(w, i18n.T(i18n.LangFrom(ctx), "err.forbidden"), http.StatusForbidden)
		return
	}
	page := loaders.Dashboard(ctx, h.log, h.catalog, h.gate.SiteOf(ctx))
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, page)
		return
	}
	lang := i18n.LangFrom(ctx)
	data := map[string]any{
		"Title": i18n.T(lang, "nav.dashboard"),
		"Page":  page,
		"Alert": page.Error,
		"Flash": PopFlash(w, r),
		"Nav":   navItems(h.catalog, lang),
	}
	if err := view.Render(w, r, "dashboard.html", data); err != nil {
		logging.From(ctx, h.log).Error("render dashboard", zap.Error(err))
		http.Error(w, i18n.T(lang, "err.generic"), http.StatusInternalServerError)
	}
}
