package resource

import "github.com/payfisc/payfisc-admin/gate"

// Encoding selects how mutation bodies are sent.
type Encoding int

const (
	Multipart Encoding = iota
	JSON
)

// Status field names as spelled by each backend endpoint.
const (
	FieldActif  = "actif"
	FieldStatus = "status" // plaques
	FieldStatut = "statut" // cartes-reprint
)

// Endpoints are paths relative to the API base URL. Empty means unsupported.
type Endpoints struct {
	List   string
	Search string
	Get    string
	Create string
	Update string
	Delete string
	Toggle string
}

// FieldKind drives the input rendered for a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindEmail    FieldKind = "email"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindColor    FieldKind = "color"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
)

// FormField describes one input of the create/edit modal. Name is the literal
// field name the backend expects.
type FormField struct {
	Name      string
	Label     string
	Kind      FieldKind
	Required  bool
	MaxLength int
	// Options names the resource whose records fill a select.
	Options string
	// Choices are fixed select values, used when Options is empty.
	Choices []string
}

// Definition is everything the generic client and pages need to know about
// one backend resource.
type Definition struct {
	Name        string
	Label       string // i18n code, e.g. "res.plaques"
	Endpoints   Endpoints
	Encoding    Encoding
	StatusField string
	Columns     []string // literal field names shown in the list table
	Form        []FormField
	// ClientSide marks list endpoints that return the full list: search and
	// paging are then done by the console.
	ClientSide bool
}

// Supports reports whether the backend exposes an endpoint for action.
func (d Definition) Supports(action gate.Action) bool {
	switch action {
	case gate.ActionList:
		return d.Endpoints.List != ""
	case gate.ActionView:
		return d.Endpoints.Get != ""
	case gate.ActionCreate:
		return d.Endpoints.Create != ""
	case gate.ActionUpdate:
		return d.Endpoints.Update != ""
	case gate.ActionDelete:
		return d.Endpoints.Delete != ""
	case gate.ActionToggle:
		return d.Endpoints.Toggle != ""
	}
	return false
}

// ReadOnly reports whether no mutation is available.
func (d Definition) ReadOnly() bool {
	return !d.Supports(gate.ActionCreate) && !d.Supports(gate.ActionUpdate) &&
		!d.Supports(gate.ActionDelete) && !d.Supports(gate.ActionToggle)
}

// Field returns the form field called name.
func (d Definition) Field(name string) (FormField, bool) {
	for _, f := range d.Form {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}
