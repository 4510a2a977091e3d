package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultReturnsFreshCopies(t *testing.T) {
	a := Default()
	a.Headers["referer"] = "https://elsewhere.example/"
	a.Cookies["_gcl_au"] = "tampered"

	b := Default()
	assert.Equal(t, "https://instytutkryptografii.pl/", b.Headers["referer"])
	assert.Equal(t, "1.1.1469172500.1756223364", b.Cookies["_gcl_au"])
}

func TestNoAuthProfile(t *testing.T) {
	p, err := Load("", "", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"User-Agent": "Mozilla/5.0"}, p.Headers)
	assert.Empty(t, p.Cookies)
}

func TestLoadMergesOverrides(t *testing.T) {
	headersFile := writeJSON(t, "headers.json", `{"referer": "https://other.example/", "x-extra": "1"}`)
	cookiesFile := writeJSON(t, "cookies.json", `{"session": "abc123"}`)

	p, err := Load(headersFile, cookiesFile, false)
	require.NoError(t, err)

	// Overrides win, defaults survive where not overridden.
	assert.Equal(t, "https://other.example/", p.Headers["referer"])
	assert.Equal(t, "1", p.Headers["x-extra"])
	assert.Equal(t, "*/*", p.Headers["accept"])
	assert.Equal(t, "abc123", p.Cookies["session"])
	assert.Equal(t, "1", p.Cookies["_tt_enable_cookie"])
}

func TestLoadMissingOverrideFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), "", false)
	assert.ErrorContains(t, err, "error loading headers file")
}

func TestLoadMalformedOverrideFile(t *testing.T) {
	badFile := writeJSON(t, "bad.json", `{"unterminated": `)
	_, err := Load("", badFile, false)
	assert.ErrorContains(t, err, "error loading cookies file")
}

func TestNoAuthIgnoresOverrideFiles(t *testing.T) {
	headersFile := writeJSON(t, "headers.json", `{"x-extra": "1"}`)
	p, err := Load(headersFile, "", true)
	require.NoError(t, err)
	_, ok := p.Headers["x-extra"]
	assert.False(t, ok)
}
