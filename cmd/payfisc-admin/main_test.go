package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payfisc/payfisc-admin/internal/classifier"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// isolate points the commands at a throwaway sqlite file.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "console.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestAskWithoutFetch(t *testing.T) {
	out, err := run(t, "ask", "Combien", "de", "paiements", "ce", "mois", "?")
	require.NoError(t, err)
	var got classifier.Result
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// one keyword each; statistiques is declared first
	assert.Equal(t, "statistiques", got.Type)
	assert.Equal(t, []string{"combien"}, got.MatchedKeywords)
}

func TestAskNeedsQuestion(t *testing.T) {
	_, err := run(t, "ask")
	assert.Error(t, err)
}

func TestOperatorCreate(t *testing.T) {
	isolate(t)

	out, err := run(t, "operator", "create", "--email", "agent@payfisc.test", "--password", "pw", "--site", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "agent@payfisc.test, profil agent, site 4")

	_, err = run(t, "operator", "create", "--email", "agent@payfisc.test", "--password", "pw")
	assert.ErrorContains(t, err, "existe déjà")

	_, err = run(t, "operator", "create", "--email", "x@payfisc.test", "--password", "pw", "--profile", "root")
	assert.ErrorContains(t, err, "profil inconnu")
}

func TestSeedCreatesAdministratorOnce(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ADMIN_EMAIL", "root@payfisc.test")
	t.Setenv("APP_ADMIN_PASSWORD", "pw")

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrateur créé: root@payfisc.test")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.NotContains(t, out, "Administrateur créé")
	assert.Contains(t, out, "Profils à jour")
}

func TestMigrate(t *testing.T) {
	isolate(t)
	_, err := run(t, "migrate")
	assert.NoError(t, err)
}
