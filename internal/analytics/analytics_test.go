package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBeaconPayload(t *testing.T) {
	var (
		mu     sync.Mutex
		got    Event
		header string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		header = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	b := New(srv.URL, "tok", time.Second, zap.NewNop())
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }

	req := httptest.NewRequest(http.MethodGet, "/r/particuliers?q=NIF-00042&page=2", nil)
	req.Header.Set("User-Agent", "test-agent")
	b.Error(req, "boom")
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer tok", header)
	assert.Equal(t, "error", got.Name)
	// search terms stay on the console
	assert.Equal(t, "/r/particuliers", got.URL)
	assert.Equal(t, "test-agent", got.UserAgent)
	assert.Equal(t, "boom", got.Description)
	assert.EqualValues(t, 1700000000000, got.Timestamp)
	assert.NotEmpty(t, got.ID)
}

func TestNavigationDropsQuestion(t *testing.T) {
	var (
		mu  sync.Mutex
		got Event
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	b := New(srv.URL, "", time.Second, zap.NewNop())
	b.Navigation(httptest.NewRequest(http.MethodGet, "/ia?q=Paiements+de+Diallo+Mamadou", nil), time.Millisecond)
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "navigation", got.Name)
	assert.Equal(t, "/ia", got.URL)
}

func TestBeaconFailureLoggedAtDebug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	b := New(srv.URL, "", time.Second, zap.New(core))
	b.Navigation(httptest.NewRequest(http.MethodGet, "/dashboard", nil), 12*time.Millisecond)
	b.Wait()

	entries := logs.FilterMessage("analytics beacon failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestBeaconDisabled(t *testing.T) {
	b := New("", "", 0, nil)
	assert.False(t, b.Enabled())
	b.Send(Event{Name: "navigation"})
	b.Wait()

	var nilBeacon *Beacon
	nilBeacon.Send(Event{})
	nilBeacon.Wait()
}
