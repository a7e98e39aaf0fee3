package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/audit"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

// AdminHandler serves operator management, profiles and the journal.
// Routes are wrapped in AuthGate.RequireAdmin.
type AdminHandler struct {
	db      *gorm.DB
	gate    *policy.AuthGate
	journal *audit.Store
	catalog *services.Catalog
	log     *zap.Logger
}

func NewAdminHandler(db *gorm.DB, ag *policy.AuthGate, journal *audit.Store, cat *services.Catalog, log *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, gate: ag, journal: journal, catalog: cat, log: log}
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	lang := i18n.LangFrom(r.Context())
	data["Nav"] = navItems(h.catalog, lang)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = PopFlash(w, r)
	}
	if err := view.Render(w, r, name, data); err != nil {
		logging.From(r.Context(), h.log).Error("render admin page", zap.String("page", name), zap.Error(err))
		http.Error(w, i18n.T(lang, "err.generic"), http.StatusInternalServerError)
	}
}

func (h *AdminHandler) dbError(w http.ResponseWriter, r *http.Request, err error) {
	logging.From(r.Context(), h.log).Error("admin store error", zap.Error(err))
	httpx.JSONError(w, http.StatusInternalServerError, i18n.T(i18n.LangFrom(r.Context()), "err.generic"), nil)
}

// Operators lists operators with their profile and site.
func (h *AdminHandler) Operators(w http.ResponseWriter, r *http.Request) {
	var operators []models.Operator
	if err := h.db.WithContext(r.Context()).Preload("Profile").Order("email").Find(&operators).Error; err != nil {
		h.dbError(w, r, err)
		return
	}
	var profiles []models.Profile
	if err := h.db.WithContext(r.Context()).Order("name").Find(&profiles).Error; err != nil {
		h.dbError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"operators": operators, "profiles": profiles})
		return
	}
	h.render(w, r, "admin/operators.html", map[string]any{
		"Title":     i18n.T(i18n.LangFrom(r.Context()), "nav.operators"),
		"Operators": operators,
		"Profiles":  profiles,
	})
}

// AssignProfile handles POST /admin/operators/{id}/profile with profile_id
// (empty or 0 removes the profile) and site_id.
func (h *AdminHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_operator_id", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	var op models.Operator
	if err := h.db.WithContext(ctx).First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "operator_not_found", nil)
			return
		}
		h.dbError(w, r, err)
		return
	}

	updates := map[string]any{}
	if raw := r.FormValue("profile_id"); raw == "" || raw == "0" {
		updates["profile_id"] = nil
	} else {
		pid, err := strconv.Atoi(raw)
		if err != nil || pid <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_profile_id", nil)
			return
		}
		var profile models.Profile
		if err := h.db.WithContext(ctx).First(&profile, pid).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
			return
		}
		updates["profile_id"] = profile.ID
	}
	if raw := r.FormValue("site_id"); raw != "" {
		site, err := strconv.Atoi(raw)
		if err != nil || site < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_site_id", nil)
			return
		}
		updates["site_id"] = site
	}

	if err := h.db.WithContext(ctx).Model(&op).Updates(updates).Error; err != nil {
		h.dbError(w, r, err)
		return
	}
	h.gate.InvalidateOperator(op.ID)
	logging.From(ctx, h.log).Info("operator profile changed", zap.Uint("operator_id", op.ID), zap.Any("changes", updates))

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"operator_id": op.ID, "changes": updates})
		return
	}
	SetFlash(w, r, "ok.profile")
	http.Redirect(w, r, "/admin/operators", http.StatusSeeOther)
}

// Profiles lists the profiles and every known permission.
func (h *AdminHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.db.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		h.dbError(w, r, err)
		return
	}
	var perms []models.Permission
	if err := h.db.WithContext(r.Context()).Order("resource, action").Find(&perms).Error; err != nil {
		h.dbError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles, "permissions": perms})
		return
	}
	granted := make(map[uint]map[uint]bool, len(profiles))
	for _, p := range profiles {
		set := make(map[uint]bool, len(p.Permissions))
		for _, perm := range p.Permissions {
			set[perm.ID] = true
		}
		granted[p.ID] = set
	}
	h.render(w, r, "admin/profiles.html", map[string]any{
		"Title":       i18n.T(i18n.LangFrom(r.Context()), "nav.profiles"),
		"Profiles":    profiles,
		"Permissions": perms,
		"Granted":     granted,
	})
}

// SavePermissions replaces the permission set of a profile from the
// "permissions" checkboxes.
func (h *AdminHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_profile_id", nil)
		return
	}
	var profile models.Profile
	if err := h.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	var ids []uint
	for _, s := range r.Form["permissions"] {
		if pid, err := strconv.Atoi(s); err == nil && pid > 0 {
			ids = append(ids, uint(pid))
		}
	}
	perms := []models.Permission{}
	if len(ids) > 0 {
		if err := h.db.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error; err != nil {
			h.dbError(w, r, err)
			return
		}
	}
	if err := h.db.WithContext(ctx).Model(&profile).Association("Permissions").Replace(perms); err != nil {
		h.dbError(w, r, err)
		return
	}
	// one profile may back many operators
	h.gate.CacheResolver.InvalidateAll()

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"profile_id": profile.ID, "permissions": len(perms)})
		return
	}
	SetFlash(w, r, "ok.permissions")
	http.Redirect(w, r, "/admin/profiles", http.StatusSeeOther)
}

// Journal pages through the audit log, optionally for one resource.
func (h *AdminHandler) Journal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	const limit = 50
	f := audit.Filter{Resource: q.Get("resource"), Page: page, Limit: limit}
	if raw := q.Get("operator"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			f.OperatorID = uint(id)
		}
	}
	rows, total, err := h.journal.List(r.Context(), f)
	if err != nil {
		h.dbError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"entries": rows, "total": total, "page": page})
		return
	}
	h.render(w, r, "admin/journal.html", map[string]any{
		"Title":      i18n.T(i18n.LangFrom(r.Context()), "nav.journal"),
		"Entries":    rows,
		"Total":      total,
		"Page":       page,
		"TotalPages": int((total + limit - 1) / limit),
		"Resource":   f.Resource,
		"Resources":  h.catalog.Names(),
	})
}
