package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/analytics"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/view"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an id (the caller's X-Request-ID when
// given) and a logger carrying it.
func RequestID(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := logging.WithRequestID(r.Context(), id)
			ctx = logging.WithLogger(ctx, log.With(zap.String("request_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Prefs resolves language and theme (query > cookie > Accept-Language) and
// persists query-provided values for 30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: q, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}

		theme := "system"
		if c, err := r.Cookie("theme"); err == nil && validTheme(c.Value) {
			theme = c.Value
		}
		if q := r.URL.Query().Get("theme"); validTheme(q) {
			theme = q
			http.SetCookie(w, &http.Cookie{Name: "theme", Value: q, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		}

		ctx := i18n.WithLang(r.Context(), lang)
		ctx = view.WithTheme(ctx, theme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validTheme(s string) bool {
	return s == "light" || s == "dark" || s == "system"
}

// Recover turns a panic into a 500, logs it and reports it to the beacon.
func Recover(log *zap.Logger, beacon *analytics.Beacon) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.From(r.Context(), log).Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				beacon.Error(r, rec)
				msg := i18n.T(i18n.LangFrom(r.Context()), "err.generic")
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusInternalServerError, msg, nil)
					return
				}
				http.Error(w, msg, http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Observe records metrics and an access log line per request, and sends a
// navigation beacon for HTML pages. It must wrap the mux directly so the
// matched route pattern is visible once the mux returns.
func Observe(log *zap.Logger, m *metrics.Metrics, beacon *analytics.Beacon) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			if m != nil {
				m.HTTPRequestsTotal.WithLabelValues(r.Method, route, statusLabel(rec.status)).Inc()
				m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			}
			logging.From(r.Context(), log).Info("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed),
			)
			if r.Method == http.MethodGet && rec.status == http.StatusOK && !httpx.WantsJSON(r) && route != "GET /static/" && route != "GET /metrics" {
				beacon.Navigation(r, elapsed)
			}
		})
	}
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}

const flashCookie = "flash"

// SetFlash stores a translated one-shot message shown on the next page.
func SetFlash(w http.ResponseWriter, r *http.Request, code string) {
	msg := i18n.T(i18n.LangFrom(r.Context()), code)
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// PopFlash returns and clears the pending flash message.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
