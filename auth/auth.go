// Package auth manages the console operator session: an HMAC-signed cookie
// carrying the operator id, and the context helpers built on it.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/payfisc/payfisc-admin/httpx"
)

type ctxKey string

const (
	sessionCookieName = "payfisc_session"
	operatorCtxKey    = ctxKey("operatorID")
	sessionLifetime   = 12 * time.Hour
	defaultDevSecret  = "payfisc-dev-session-secret"
)

// OperatorVerifier validates that a session's operator still exists and is
// allowed in. Set it at bootstrap; nil disables the check.
type OperatorVerifier func(ctx context.Context, id uint) bool

var (
	mu       sync.RWMutex
	secret   = defaultDevSecret
	verifier OperatorVerifier
	secure   bool
)

// Configure installs the signing secret and cookie policy.
func Configure(sessionSecret string, secureCookie bool) {
	mu.Lock()
	defer mu.Unlock()
	if sessionSecret != "" {
		secret = sessionSecret
	}
	secure = secureCookie
}

// SetOperatorVerifier configures the verifier used by RequireAuth.
func SetOperatorVerifier(v OperatorVerifier) {
	mu.Lock()
	verifier = v
	mu.Unlock()
}

func sign(value string) string {
	mu.RLock()
	key := secret
	mu.RUnlock()
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie "<id>.<expiry>.<sig>".
func CreateSession(w http.ResponseWriter, operatorID uint) {
	expires := time.Now().Add(sessionLifetime)
	payload := strconv.FormatUint(uint64(operatorID), 10) + "." + strconv.FormatInt(expires.Unix(), 10)
	mu.RLock()
	sec := secure
	mu.RUnlock()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sign(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   sec,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the operator id.
func ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 3 {
		return 0, false
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(payload))) {
		return 0, false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return 0, false
	}
	id64, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithOperatorID stores the operator id in context.
func WithOperatorID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, operatorCtxKey, id)
}

// OperatorIDFromContext extracts the operator id.
func OperatorIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(operatorCtxKey).(uint)
	return id, ok && id != 0
}

// Middleware attaches the operator id to the request context when present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := ParseSession(r); ok {
			r = r.WithContext(WithOperatorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login (HTML) or answers 401 (JSON) when no valid
// operator is attached to the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := OperatorIDFromContext(r.Context())
		if ok {
			mu.RLock()
			v := verifier
			mu.RUnlock()
			if v != nil && !v(r.Context(), id) {
				// Session refers to a deleted or disabled operator.
				ClearSession(w)
				ok = false
			}
		}
		if !ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
