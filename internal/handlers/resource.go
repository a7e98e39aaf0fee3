package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/audit"
	"github.com/payfisc/payfisc-admin/internal/loaders"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/resource"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/validation"
	"github.com/payfisc/payfisc-admin/view"
)

// ResourceHandler serves the generic list/detail screens and the four
// mutations of every catalog resource.
type ResourceHandler struct {
	catalog  *services.Catalog
	gate     *policy.AuthGate
	journal  *audit.Store
	inflight *Inflight
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewResourceHandler(cat *services.Catalog, ag *policy.AuthGate, journal *audit.Store, inflight *Inflight, m *metrics.Metrics, log *zap.Logger) *ResourceHandler {
	return &ResourceHandler{catalog: cat, gate: ag, journal: journal, inflight: inflight, metrics: m, log: log}
}

// Modal is the state of the create/edit dialog.
type Modal struct {
	Open   bool
	Action string // "create" or "update"
	ID     int
	Values map[string]string
	Errors validation.Violations
}

// TableRow is one record flattened for the generic table.
type TableRow struct {
	ID     int
	Cells  map[string]string
	Active bool
}

// NavItem is an entry of the sidebar.
type NavItem struct {
	Name  string
	Label string
}

func (h *ResourceHandler) handle(w http.ResponseWriter, r *http.Request) (resource.Handle, bool) {
	hd, ok := h.catalog.Handle(r.PathValue("resource"))
	if !ok {
		http.NotFound(w, r)
	}
	return hd, ok
}

// authorize answers 403 when the operator may not perform action.
func (h *ResourceHandler) authorize(w http.ResponseWriter, r *http.Request, action gate.Action, name string, record any) bool {
	err := h.gate.Authorize(r.Context(), action, name, record)
	if err == nil {
		return true
	}
	h.metrics.PermissionDenials.WithLabelValues(name, string(action)).Inc()
	logging.From(r.Context(), h.log).Info("permission denied",
		zap.String("resource", name),
		zap.String("action", string(action)),
		zap.Error(err),
	)
	msg := i18n.T(i18n.LangFrom(r.Context()), "err.forbidden")
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, msg, nil)
		return false
	}
	http.Error(w, msg, http.StatusForbidden)
	return false
}

func filtersFrom(r *http.Request, siteID int) resource.Filters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = resource.DefaultLimit
	}
	return resource.Filters{
		Search: strings.TrimSpace(q.Get("q")),
		Page:   page,
		Limit:  limit,
		Status: q.Get("status"),
		SiteID: siteID,
	}
}

// List renders GET /r/{resource}.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	hd, ok := h.handle(w, r)
	if !ok {
		return
	}
	def := hd.Definition()
	if !h.authorize(w, r, gate.ActionList, def.Name, nil) {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, h.state(r, hd))
		return
	}
	h.renderList(w, r, hd, http.StatusOK, Modal{}, "")
}

// state is the JSON form of a list page. Vehicles, brands and fiscal power
// ratings come with the reference lists their forms need.
func (h *ResourceHandler) state(r *http.Request, hd resource.Handle) any {
	ctx := r.Context()
	f := filtersFrom(r, h.gate.SiteOf(ctx))
	switch hd.Definition().Name {
	case "engins":
		return loaders.Engins(ctx, h.log, h.catalog, f)
	case "marques-engins":
		return loaders.Marques(ctx, h.log, h.catalog, f)
	case "puissances-fiscales":
		return loaders.Puissances(ctx, h.log, h.catalog, f)
	}
	return loaders.Table(ctx, h.log, hd, f, h.catalog.Handle)
}

func (h *ResourceHandler) renderList(w http.ResponseWriter, r *http.Request, hd resource.Handle, status int, modal Modal, alert string) {
	ctx := r.Context()
	def := hd.Definition()
	f := filtersFrom(r, h.gate.SiteOf(ctx))
	page := loaders.Table(ctx, h.log, hd, f, h.catalog.Handle)

	rows := make([]TableRow, 0, len(page.Records))
	for _, rec := range page.Records {
		cells := models.Row(rec)
		rows = append(rows, TableRow{ID: rec.RecordID(), Cells: cells, Active: isActive(cells[def.StatusField])})
	}
	if alert == "" {
		alert = page.Error
	}
	if modal.Values == nil {
		modal.Values = map[string]string{}
	}

	supports := map[string]bool{}
	for _, a := range []gate.Action{gate.ActionView, gate.ActionCreate, gate.ActionUpdate, gate.ActionDelete, gate.ActionToggle} {
		supports[string(a)] = def.Supports(a)
	}

	lang := i18n.LangFrom(ctx)
	data := map[string]any{
		"Title":    i18n.T(lang, def.Label),
		"Def":      def,
		"Resource": def.Name,
		"Rows":     rows,
		"Page":     page,
		"Filters":  f,
		"Query":    pageQuery(f),
		"Supports": supports,
		"Modal":    modal,
		"Alert":    alert,
		"Flash":    PopFlash(w, r),
		"Nav":      h.nav(lang),
	}
	if err := view.RenderStatus(w, r, status, "resources/index.html", data); err != nil {
		logging.From(ctx, h.log).Error("render resource list", zap.String("resource", def.Name), zap.Error(err))
		http.Error(w, i18n.T(lang, "err.generic"), http.StatusInternalServerError)
	}
}

func (h *ResourceHandler) nav(lang string) []NavItem {
	return navItems(h.catalog, lang)
}

func navItems(cat *services.Catalog, lang string) []NavItem {
	names := cat.Names()
	out := make([]NavItem, 0, len(names))
	for _, n := range names {
		out = append(out, NavItem{Name: n, Label: i18n.T(lang, "res."+n)})
	}
	return out
}

// pageQuery keeps search and status across pagination links.
func pageQuery(f resource.Filters) string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Limit != resource.DefaultLimit {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v.Encode()
}

func isActive(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "actif", "active", "disponible", "valide":
		return true
	}
	return false
}

// View renders GET /r/{resource}/{id}.
func (h *ResourceHandler) View(w http.ResponseWriter, r *http.Request) {
	hd, ok := h.handle(w, r)
	if !ok {
		return
	}
	def := hd.Definition()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	if !h.authorize(w, r, gate.ActionView, def.Name, nil) {
		return
	}
	env := hd.GetRecord(r.Context(), id)
	if env.OK() && env.Data != nil && !h.authorize(w, r, gate.ActionView, def.Name, env.Data) {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, envelopeStatus(env.Kind), env)
		return
	}

	lang := i18n.LangFrom(r.Context())
	data := map[string]any{
		"Title":    i18n.T(lang, def.Label),
		"Def":      def,
		"Resource": def.Name,
		"ID":       id,
		"Nav":      h.nav(lang),
	}
	switch {
	case !env.OK():
		data["Alert"] = env.Message
	case env.Data == nil:
		data["Alert"] = i18n.T(lang, "err.not_found")
	default:
		data["Record"] = models.Row(env.Data)
	}
	if err := view.RenderStatus(w, r, envelopeStatus(env.Kind), "resources/show.html", data); err != nil {
		logging.From(r.Context(), h.log).Error("render resource", zap.String("resource", def.Name), zap.Error(err))
		http.Error(w, i18n.T(lang, "err.generic"), http.StatusInternalServerError)
	}
}

// envelopeStatus maps a failure kind to the console's own HTTP status.
func envelopeStatus(k apiclient.ErrorKind) int {
	switch k {
	case apiclient.KindNone:
		return http.StatusOK
	case apiclient.KindTimeout:
		return http.StatusGatewayTimeout
	case apiclient.KindTransport, apiclient.KindMalformed:
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, gate.ActionCreate)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, gate.ActionUpdate)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, gate.ActionDelete)
}

func (h *ResourceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, gate.ActionToggle)
}

// mutate runs one create/update/delete/toggle: permission, validation,
// processing flag, backend call, then audit row and redirect on success or
// the list re-rendered with the dialog open on failure. For operators bound
// to a site the target record is fetched first and must belong to that site.
func (h *ResourceHandler) mutate(w http.ResponseWriter, r *http.Request, action gate.Action) {
	hd, ok := h.handle(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	def := hd.Definition()
	log := logging.From(ctx, h.log)
	lang := i18n.LangFrom(ctx)

	id := 0
	if action != gate.ActionCreate {
		var err error
		id, err = strconv.Atoi(r.PathValue("id"))
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}
	}
	if !h.authorize(w, r, action, def.Name, nil) {
		return
	}
	if action != gate.ActionCreate && hd.SiteScoped() && h.gate.SiteOf(ctx) > 0 {
		env := hd.GetRecord(ctx, id)
		switch {
		case !env.OK():
			h.fail(w, r, hd, action, id, nil, nil, envelopeStatus(env.Kind), env.Message)
			return
		case env.Data == nil:
			h.fail(w, r, hd, action, id, nil, nil, http.StatusNotFound, i18n.T(lang, "err.not_found"))
			return
		}
		if !h.authorize(w, r, action, def.Name, env.Data) {
			return
		}
	}
	if err := parseForm(r); err != nil {
		h.fail(w, r, hd, action, id, nil, nil, http.StatusBadRequest, i18n.T(lang, "invalid_value"))
		return
	}

	var fields resource.Fields
	if action == gate.ActionCreate || action == gate.ActionUpdate {
		var v validation.Violations
		fields, v = readFields(r, def)
		if !v.Empty() {
			h.fail(w, r, hd, action, id, fields, v, http.StatusUnprocessableEntity, "")
			return
		}
	}

	key := RecordKey(def.Name, id)
	if action == gate.ActionCreate {
		opID, _ := h.operatorID(r)
		key = CreateKey(def.Name, opID)
	}
	if !h.inflight.Acquire(key) {
		h.metrics.InflightRejections.WithLabelValues(def.Name).Inc()
		log.Info("duplicate submission refused", zap.String("resource", def.Name), zap.String("key", key))
		h.fail(w, r, hd, action, id, fields, nil, http.StatusConflict, i18n.T(lang, "err.processing"))
		return
	}
	env := func() apiclient.Envelope[models.Record] {
		defer h.inflight.Release(key)
		return hd.Mutate(ctx, action, id, fields)
	}()

	h.metrics.Mutations.WithLabelValues(def.Name, string(action), outcome(env)).Inc()
	if !env.OK() {
		h.fail(w, r, hd, action, id, fields, nil, envelopeStatus(env.Kind), env.Message)
		return
	}

	recordID := id
	if env.Data != nil {
		recordID = env.Data.RecordID()
	}
	h.record(r, def.Name, recordID, action)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, env)
		return
	}
	SetFlash(w, r, "ok."+string(action))
	http.Redirect(w, r, "/r/"+def.Name, http.StatusSeeOther)
}

func outcome(env apiclient.Envelope[models.Record]) string {
	if env.OK() {
		return "success"
	}
	return env.Kind.String()
}

func (h *ResourceHandler) operatorID(r *http.Request) (uint, string) {
	op, ok := h.gate.Operator(r.Context())
	if !ok {
		return 0, ""
	}
	return op.ID, op.Email
}

// record writes the audit row. A journal failure never undoes a mutation
// the backend already applied.
func (h *ResourceHandler) record(r *http.Request, name string, id int, action gate.Action) {
	opID, email := h.operatorID(r)
	err := h.journal.Record(r.Context(), audit.Entry{
		OperatorID: opID,
		Operator:   email,
		Resource:   name,
		RecordID:   id,
		Action:     string(action),
		RequestID:  logging.RequestID(r.Context()),
	})
	if err != nil && !errors.Is(err, audit.ErrNoStore) {
		logging.From(r.Context(), h.log).Error("audit record failed", zap.String("resource", name), zap.Error(err))
	}
}

// fail answers a rejected or failed mutation: the JSON error for API
// callers, else the list with the dialog reopened on its values.
func (h *ResourceHandler) fail(w http.ResponseWriter, r *http.Request, hd resource.Handle, action gate.Action, id int, values resource.Fields, v validation.Violations, status int, msg string) {
	if httpx.WantsJSON(r) {
		if msg == "" {
			msg = i18n.T(i18n.LangFrom(r.Context()), "invalid_value")
		}
		var details any
		if len(v) > 0 {
			details = v
		}
		httpx.JSONError(w, status, msg, details)
		return
	}
	modal := Modal{Errors: v, Values: values, ID: id}
	if action == gate.ActionCreate || action == gate.ActionUpdate {
		modal.Open = true
		modal.Action = string(action)
	}
	h.renderList(w, r, hd, status, modal, msg)
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(1 << 20)
	}
	return r.ParseForm()
}

// readFields collects the definition's form fields and checks them
// against its required and max-length hints.
func readFields(r *http.Request, def resource.Definition) (resource.Fields, validation.Violations) {
	fields := resource.Fields{}
	v := validation.Violations{}
	for _, f := range def.Form {
		if f.Kind == resource.KindCheckbox {
			fields[f.Name] = models.Bool(r.PostForm.Has(f.Name) && r.PostFormValue(f.Name) != "0").FormValue()
			continue
		}
		val := strings.TrimSpace(r.PostFormValue(f.Name))
		fields[f.Name] = val
		if f.Required {
			validation.Required(f.Name, val, v)
		}
		validation.MaxLength(f.Name, val, f.MaxLength, v)
		switch f.Kind {
		case resource.KindEmail:
			validation.Email(f.Name, val, v)
		case resource.KindSelect:
			if f.Options != "" {
				validation.Integer(f.Name, val, v)
			}
		}
	}
	return fields, v
}
