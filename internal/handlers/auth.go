package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/view"
)

type AuthHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuthHandler(db *gorm.DB, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, log: log}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, ok := auth.OperatorIDFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusOK, "", "")
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	var op models.Operator
	err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&op).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.From(r.Context(), h.log).Error("login lookup failed", zap.Error(err))
		}
		h.render(w, r, http.StatusUnauthorized, email, "err.login")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(password)); err != nil {
		h.render(w, r, http.StatusUnauthorized, email, "err.login")
		return
	}

	auth.CreateSession(w, op.ID)
	logging.From(r.Context(), h.log).Info("operator signed in", zap.Uint("operator_id", op.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, email, code string) {
	data := map[string]any{"Email": email}
	if code != "" {
		data["Error"] = i18n.T(i18n.LangFrom(r.Context()), code)
	}
	if err := view.RenderStatus(w, r, status, "login.html", data); err != nil {
		logging.From(r.Context(), h.log).Error("render login", zap.Error(err))
		http.Error(w, i18n.T(i18n.LangFrom(r.Context()), "err.generic"), http.StatusInternalServerError)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
