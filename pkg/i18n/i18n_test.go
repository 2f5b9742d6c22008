package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_Defaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	for _, lang := range []string{"en", "ru"} {
		for _, id := range []string{"greeting", "help", "loaded", "status", "error_not_loaded"} {
			text, err := c.Get(lang, id)
			require.NoError(t, err, "lang %s id %s", lang, id)
			require.NotEmpty(t, text)
		}
	}
}

func TestCatalog_GetWithArgs(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	text, err := c.GetWithArgs("en", "loaded", map[string]string{
		"title":        "Book A",
		"total_chunks": "12",
		"chunk_size":   "3",
	})
	require.NoError(t, err)
	require.Contains(t, text, "Book A")
	require.Contains(t, text, "12")
	require.NotContains(t, text, "{{")
}

func TestCatalog_GetWithArgs_missingArg(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.GetWithArgs("en", "loaded", map[string]string{"title": "Book A"})
	require.Error(t, err)
}

func TestCatalog_NotFound(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.Get("en", "no_such_id")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get("de", "greeting")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_LoadOverride(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"en":{"pong":"custom pong {{arg}}"}}`), 0o600))
	require.NoError(t, c.Load(path))

	text, err := c.GetWithArgs("en", "pong", map[string]string{"arg": "!"})
	require.NoError(t, err)
	require.Equal(t, "custom pong !", text)

	// override replaces the whole catalog
	_, err = c.Get("en", "greeting")
	require.ErrorIs(t, err, ErrNotFound)
}
