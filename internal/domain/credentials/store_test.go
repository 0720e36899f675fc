package credentials_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"telegram-session-manager/internal/domain/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s := credentials.Open(filepath.Join(t.TempDir(), "api_configs.json"))
	assert.Empty(t, s.List())
}

func TestOpenCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_configs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := credentials.Open(path)
	assert.Empty(t, s.List())

	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestRegisterOverwritesSameName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_configs.json")
	s := credentials.Open(path)

	require.NoError(t, s.Register("x", "1", "a"))
	require.NoError(t, s.Register("x", "1", "b"))

	assert.Equal(t, []string{"x"}, s.List())
	api, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, credentials.API{Name: "x", APIID: "1", APIHash: "b"}, api)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, map[string]map[string]string{"x": {"api_id": "1", "api_hash": "b"}}, onDisk)
}

func TestRegisterPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "api_configs.json")

	first := credentials.Open(path)
	require.NoError(t, first.Register("work", "111", "hash-w"))
	require.NoError(t, first.Register("home", "222", "hash-h"))

	second := credentials.Open(path)
	assert.Equal(t, []string{"home", "work"}, second.List())

	api, ok := second.Get("home")
	require.True(t, ok)
	assert.Equal(t, "222", api.APIID)
	assert.Equal(t, "hash-h", api.APIHash)
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	s := credentials.Open(filepath.Join(t.TempDir(), "api_configs.json"))
	assert.Error(t, s.Register("  ", "1", "a"))
	assert.Empty(t, s.List())
}

func TestRegisterKeepsEntryWhenSaveFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	s := credentials.Open(filepath.Join(blocker, "api_configs.json"))

	require.Error(t, s.Register("main", "1", "a"))

	api, ok := s.Get("main")
	require.True(t, ok)
	assert.Equal(t, credentials.API{Name: "main", APIID: "1", APIHash: "a"}, api)
}
