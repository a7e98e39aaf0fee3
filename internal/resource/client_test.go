package resource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/models"
)

var energies = Definition{
	Name:  "energies",
	Label: "res.energies",
	Endpoints: Endpoints{
		List:   "energies/get_energies.php",
		Get:    "energies/get_energie.php",
		Create: "energies/create_energie.php",
		Update: "energies/update_energie.php",
		Delete: "energies/delete_energie.php",
		Toggle: "energies/toggle_energie_status.php",
	},
	StatusField: FieldActif,
}

// fakeEnergies is a tiny in-memory stand-in for the PHP scripts.
type fakeEnergies struct {
	mu      sync.Mutex
	nextID  int
	records map[int]*models.Energie
	order   []int
}

func newFakeEnergies() *fakeEnergies {
	return &fakeEnergies{nextID: 42, records: map[int]*models.Energie{}}
}

func (f *fakeEnergies) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	write := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	switch r.URL.Path {
	case "/api/energies/get_energies.php":
		list := make([]*models.Energie, 0, len(f.order))
		for _, id := range f.order {
			list = append(list, f.records[id])
		}
		write(map[string]any{"status": "success", "data": list})
	case "/api/energies/get_energie.php":
		id, _ := strconv.Atoi(r.URL.Query().Get("id"))
		rec, ok := f.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			write(map[string]any{"status": "error", "message": "Énergie introuvable"})
			return
		}
		write(map[string]any{"status": "success", "data": rec})
	case "/api/energies/create_energie.php":
		_ = r.ParseMultipartForm(1 << 20)
		rec := &models.Energie{ID: models.Int(f.nextID), Nom: r.FormValue("nom"), Actif: true}
		f.records[f.nextID] = rec
		f.order = append(f.order, f.nextID)
		f.nextID++
		write(map[string]any{"status": "success", "data": rec})
	case "/api/energies/toggle_energie_status.php":
		_ = r.ParseMultipartForm(1 << 20)
		id, _ := strconv.Atoi(r.FormValue("id"))
		rec := f.records[id]
		rec.Actif = !rec.Actif
		write(map[string]any{"status": "success", "data": rec})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newAPI(t *testing.T, h http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)
	return api
}

func TestCreateThenList(t *testing.T) {
	c := New[models.Energie](newAPI(t, newFakeEnergies()), energies)
	ctx := context.Background()

	created := c.Create(ctx, Fields{"nom": "Essence"})
	require.True(t, created.OK(), created.Message)
	require.NotNil(t, created.Data)
	assert.Equal(t, 42, created.Data.RecordID())

	list := c.List(ctx, Filters{})
	require.True(t, list.OK())
	ids := []int{}
	for _, e := range list.Data {
		ids = append(ids, e.RecordID())
	}
	assert.Contains(t, ids, 42)
}

func TestToggleRoundTrip(t *testing.T) {
	c := New[models.Energie](newAPI(t, newFakeEnergies()), energies)
	ctx := context.Background()

	created := c.Create(ctx, Fields{"nom": "Diesel"})
	require.True(t, created.OK())
	original := created.Data.Actif

	first := c.ToggleStatus(ctx, created.Data.RecordID())
	require.True(t, first.OK())
	assert.NotEqual(t, original, first.Data.Actif)

	second := c.ToggleStatus(ctx, created.Data.RecordID())
	require.True(t, second.OK())

	got := c.Get(ctx, created.Data.RecordID())
	require.True(t, got.OK())
	assert.Equal(t, original, got.Data.Actif)
}

func TestGetNotFoundUsesBackendMessage(t *testing.T) {
	c := New[models.Energie](newAPI(t, newFakeEnergies()), energies)
	env := c.Get(context.Background(), 999)
	assert.False(t, env.OK())
	assert.Equal(t, "Énergie introuvable", env.Message)
	assert.Equal(t, http.StatusNotFound, env.HTTPStatus)
}

type captured struct {
	method string
	path   string
	query  map[string][]string
	body   map[string]any
	form   map[string][]string
}

func capture(t *testing.T, reply string) (*apiclient.Client, *captured) {
	t.Helper()
	got := &captured{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.Query()
		if r.Header.Get("Content-Type") == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&got.body)
		} else if r.Method == http.MethodPost {
			_ = r.ParseMultipartForm(1 << 20)
			if r.MultipartForm != nil {
				got.form = r.MultipartForm.Value
			}
		}
		_, _ = io.WriteString(w, reply)
	})
	return newAPI(t, h), got
}

func TestListUsesLiteralStatusField(t *testing.T) {
	tests := []struct {
		name  string
		def   Definition
		field string
	}{
		{"plaques", Definition{Name: "plaques", Label: "res.plaques", Endpoints: Endpoints{List: "plaques/get_plaques.php"}, StatusField: FieldStatus}, "status"},
		{"cartes-reprint", Definition{Name: "cartes-reprint", Label: "res.cartes-reprint", Endpoints: Endpoints{List: "cartes-reprint/get_cartes.php"}, StatusField: FieldStatut}, "statut"},
		{"energies", energies, "actif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, got := capture(t, `{"status":"success","data":[]}`)
			c := New[models.Plaque](api, tt.def)
			env := c.List(context.Background(), Filters{Page: 2, Limit: 10, Status: "disponible", SiteID: 3})
			require.True(t, env.OK())

			assert.Equal(t, http.MethodGet, got.method)
			assert.Equal(t, []string{"disponible"}, got.query[tt.field])
			assert.Equal(t, []string{"2"}, got.query["page"])
			assert.Equal(t, []string{"10"}, got.query["limit"])
			assert.Equal(t, []string{"3"}, got.query["site_id"])
		})
	}
}

func TestListSearchPostsJSON(t *testing.T) {
	api, got := capture(t, `{"status":"success","data":[{"id":1,"numero":"AB-001","status":"disponible"}],"pagination":{"page":1,"limit":20,"total":1,"total_pages":1}}`)
	def := Definition{
		Name: "plaques", Label: "res.plaques",
		Endpoints:   Endpoints{List: "plaques/get_plaques.php", Search: "plaques/search_plaques.php"},
		StatusField: FieldStatus,
	}
	c := New[models.Plaque](api, def)

	env := c.List(context.Background(), Filters{Search: "AB", Status: "disponible"})
	require.True(t, env.OK())
	require.Len(t, env.Data, 1)
	assert.Equal(t, 1, env.Pagination.Total)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/plaques/search_plaques.php", got.path)
	assert.Equal(t, "AB", got.body["search"])
	assert.Equal(t, "disponible", got.body["status"])
	assert.EqualValues(t, 1, got.body["page"])
	assert.EqualValues(t, DefaultLimit, got.body["limit"])
	_, hasActif := got.body["actif"]
	assert.False(t, hasActif)
}

func TestUpdateSendsIDAndFields(t *testing.T) {
	api, got := capture(t, `{"status":"success","message":"ok"}`)
	def := energies
	def.Endpoints.Update = "marques-engins/update_marque.php"
	c := New[models.MarqueEngin](api, def)

	env := c.Update(context.Background(), 7, Fields{"libelle": "Toyota"})
	require.True(t, env.OK())
	assert.Nil(t, env.Data)
	assert.Equal(t, []string{"7"}, got.form["id"])
	assert.Equal(t, []string{"Toyota"}, got.form["libelle"])
}

func TestJSONEncodingMutation(t *testing.T) {
	api, got := capture(t, `{"status":"success"}`)
	def := energies
	def.Encoding = JSON
	c := New[models.Energie](api, def)

	require.True(t, c.Delete(context.Background(), 5).OK())
	assert.EqualValues(t, 5, got.body["id"])
}

func TestReadOnlyResourceMakesNoCall(t *testing.T) {
	calls := 0
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	def := Definition{Name: "paiements", Label: "res.paiements", Endpoints: Endpoints{List: "paiements/get_paiements.php"}}
	c := New[models.Paiement](api, def)
	ctx := i18n.WithLang(context.Background(), "fr")

	assert.True(t, def.ReadOnly())
	for _, env := range []apiclient.Envelope[*models.Paiement]{
		c.Create(ctx, Fields{"reference": "X"}),
		c.Update(ctx, 1, nil),
		c.Delete(ctx, 1),
		c.ToggleStatus(ctx, 1),
	} {
		assert.False(t, env.OK())
		assert.Equal(t, i18n.T("fr", "err.unsupported"), env.Message)
	}
	assert.Zero(t, calls)
}

func TestListRecordsKeepsNulls(t *testing.T) {
	api, _ := capture(t, `{"status":"success","data":[{"id":1},null,{"id":3}]}`)
	var h Handle = New[models.TypeEngin](api, energies)

	env := h.ListRecords(context.Background(), Filters{})
	require.True(t, env.OK())
	require.Len(t, env.Data, 3)
	assert.Equal(t, 1, env.Data[0].RecordID())
	assert.Nil(t, env.Data[1])
	assert.Equal(t, 3, env.Data[2].RecordID())
}

func TestMutateDispatch(t *testing.T) {
	api, got := capture(t, `{"status":"success","data":{"id":9,"nom":"Rouge"}}`)
	var h Handle = New[models.EnginCouleur](api, Definition{
		Name: "couleurs", Label: "res.couleurs",
		Endpoints: Endpoints{Toggle: "couleurs/toggle_couleur_status.php"},
	})
	env := h.Mutate(context.Background(), gate.ActionToggle, 9, nil)
	require.True(t, env.OK())
	assert.Equal(t, 9, env.Data.RecordID())
	assert.Equal(t, "/api/couleurs/toggle_couleur_status.php", got.path)

	env = h.Mutate(context.Background(), gate.ActionCreate, 0, Fields{"nom": "Bleu"})
	assert.False(t, env.OK())
}

func TestDefinitionSupports(t *testing.T) {
	assert.True(t, energies.Supports(gate.ActionToggle))
	assert.False(t, energies.Supports(gate.Action("export")))
	f, ok := energies.Field("nom")
	assert.False(t, ok)
	assert.Empty(t, f.Name)
}

func TestSiteScoped(t *testing.T) {
	assert.True(t, New[models.Plaque](nil, Definition{}).SiteScoped())
	assert.True(t, New[models.Particulier](nil, Definition{}).SiteScoped())
	assert.False(t, New[models.Energie](nil, Definition{}).SiteScoped())
}
