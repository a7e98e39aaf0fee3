// Package view renders the console's html/template pages: a shared layout,
// a fixed set of partials and request-bound helper funcs.
package view

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/i18n"
)

type themeKey struct{}

// WithTheme returns a new context with the given theme.
func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey{}, theme)
}

// ThemeFromContext retrieves the theme from context, defaulting to "system".
func ThemeFromContext(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey{}).(string); ok && theme != "" {
		return theme
	}
	return "system"
}

var (
	mu       sync.RWMutex
	baseDir  string
	devMode  bool
	tplCache = map[string]*template.Template{}

	assetManifest     map[string]string
	assetManifestOnce sync.Once

	alertTimeout = 5 * time.Second

	// permission resolvers are set by the host app so templates can hide
	// actions the operator may not perform
	canResolver     func(*http.Request, string, string) bool
	isAdminResolver func(*http.Request) bool
	operatorName    func(*http.Request) string
)

var partials = []string{
	"alert.html",
	"nav.html",
	"pagination.html",
	"field.html",
	"stat-card.html",
}

// SetCanResolver sets the callback behind the "can" template func.
func SetCanResolver(f func(*http.Request, string, string) bool) {
	mu.Lock()
	canResolver = f
	mu.Unlock()
}

// SetIsAdminResolver sets the callback behind the "isAdmin" template func.
func SetIsAdminResolver(f func(*http.Request) bool) {
	mu.Lock()
	isAdminResolver = f
	mu.Unlock()
}

// SetOperatorNameResolver sets the callback behind the "operator" template func.
func SetOperatorNameResolver(f func(*http.Request) string) {
	mu.Lock()
	operatorName = f
	mu.Unlock()
}

// SetAlertTimeout sets how long alerts stay on screen.
func SetAlertTimeout(d time.Duration) {
	if d > 0 {
		mu.Lock()
		alertTimeout = d
		mu.Unlock()
	}
}

// SetDevMode disables the template cache so edits show up on reload.
func SetDevMode(dev bool) {
	mu.Lock()
	devMode = dev
	mu.Unlock()
}

// SetBaseDir overrides the template directory.
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	mu.Lock()
	baseDir = filepath.Clean(path)
	tplCache = map[string]*template.Template{}
	mu.Unlock()
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	mu.Lock()
	baseDir = ""
	tplCache = map[string]*template.Template{}
	mu.Unlock()
}

func detectBase() string {
	for _, c := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			return filepath.Clean(c)
		}
	}
	return "templates"
}

// Funcs returns the func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.LangFrom(r.Context())
	theme := ThemeFromContext(r.Context())
	mu.RLock()
	can, isAdmin, opName, timeout := canResolver, isAdminResolver, operatorName, alertTimeout
	mu.RUnlock()

	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"tf":   func(code string, args ...any) string { return i18n.Tf(lang, code, args...) },
		"lang": func() string { return lang },
		"can": func(resource, action string) bool {
			if can == nil {
				return false
			}
			return can(r, resource, action)
		},
		"isAdmin": func() bool {
			if isAdmin == nil {
				return false
			}
			return isAdmin(r)
		},
		"operator": func() string {
			if opName == nil {
				return ""
			}
			return opName(r)
		},
		"theme":          func() string { return theme },
		"alertTimeoutMs": func() int64 { return timeout.Milliseconds() },
		"year":           func() int { return time.Now().Year() },
		"asset":          resolveAsset,
		"money":          func(v any) string { return Money(toFloat64(v)) },
		"cell":           func(row map[string]string, key string) string { return row[key] },
		"pages":          Pages,
		"humanize":       Humanize,
		"add":            func(a, b int) int { return a + b },
		// dict builds the argument of a sub-template:
		// {{ template "field" (dict "Field" . "Value" $v) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// toFloat64 accepts any numeric value, including named types such as the
// backend's lenient numbers. Anything else is 0.
func toFloat64(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		f, _ := strconv.ParseFloat(rv.String(), 64)
		return f
	}
	return 0
}

// Money formats an amount with space-separated thousands, e.g. "15 000".
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 0, 64)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Humanize turns a literal field name into a column header:
// "numero_chassis" -> "Numero chassis".
func Humanize(field string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(field)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Pages returns 1..n.
func Pages(n int) []int {
	out := make([]int, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return out
}

func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from static/manifest.json.
func resolveAsset(rel string) string {
	assetManifestOnce.Do(parseManifest)
	if h, ok := assetManifest[rel]; ok {
		return "/static/" + h
	}
	return versionedAsset(rel)
}

func parseManifest() {
	b, err := os.ReadFile(filepath.Join("static", "manifest.json"))
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

// parse loads layout, partials and the page. Funcs are placeholders here;
// Render rebinds them to the request on a clone.
func parse(dir, name string) (*template.Template, error) {
	mainPath := filepath.Join(dir, name)
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	funcs := Funcs(&http.Request{})
	// full documents (e.g. login) skip the layout
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		return template.New(filepath.Base(name)).Funcs(funcs).ParseFiles(mainPath)
	}
	files := []string{filepath.Join(dir, "layout.html"), mainPath}
	for _, p := range partials {
		pp := filepath.Join(dir, "partials", p)
		if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
			files = append(files, pp)
		}
	}
	return template.New("layout.html").Funcs(funcs).ParseFiles(files...)
}

func lookup(name string) (*template.Template, error) {
	mu.RLock()
	dir, dev := baseDir, devMode
	t, ok := tplCache[name]
	mu.RUnlock()
	if ok && !dev {
		return t, nil
	}
	if dir == "" {
		dir = detectBase()
		mu.Lock()
		baseDir = dir
		mu.Unlock()
	}
	t, err := parse(dir, name)
	if err != nil {
		return nil, err
	}
	if !dev {
		mu.Lock()
		tplCache[name] = t
		mu.Unlock()
	}
	return t, nil
}

// Render executes the page name (relative to the template directory) with
// the shared layout. The page is buffered so a template error never sends
// a half-written response.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.OperatorIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}

	base, err := lookup(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
