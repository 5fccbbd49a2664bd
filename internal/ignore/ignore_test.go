package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\n!keep.pem\n"
	require.NoError(t, os.WriteFile(ig, []byte(content), 0644))

	m, err := Load(ig)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())

	cases := map[string]bool{
		"node_modules/pkg/index.js": true,
		"certs/key.pem":             true,
		"certs/keep.pem":            false,
		"secret.env":                true,
		"src/app.go":                false,
	}
	for p, want := range cases {
		assert.Equal(t, want, m.Match(p, false), p)
	}
	assert.True(t, m.Match("node_modules", true))
}

func TestLoad_MissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Match("anything", false))
}

func TestMatcher_NestedDomain(t *testing.T) {
	var m Matcher
	ps, err := Parse(strings.NewReader("*.log\n"), Split("services/api"))
	require.NoError(t, err)
	m.Add(ps...)

	assert.True(t, m.Match("services/api/debug.log", false))
	assert.False(t, m.Match("services/web/debug.log", false))
	assert.False(t, m.Match("debug.log", false))
}

func TestAppend_IdempotentAndCreates(t *testing.T) {
	dir := t.TempDir()
	changed, err := Append(dir, "dist/")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Append(dir, "dist/")
	require.NoError(t, err)
	assert.False(t, changed)

	p := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(p, []byte("dist/\n*.log"), 0o644))
	_, err = Append(dir, "tmp/")
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "dist/\n*.log\ntmp/\n", string(b))

	m, err := Load(p)
	require.NoError(t, err)
	assert.True(t, m.Match("tmp", true))

	_, err = Append(dir, "  ")
	assert.Error(t, err)
}
