package engine

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

func TestScanContent_Gates(t *testing.T) {
	set := patterns.Default()
	cfg := testConfig()
	cfg.MaxFileSize = 16

	fs, ws := ScanContent(scanner.NewFileContext("big.go", []byte(strings.Repeat("x", 17))), set, cfg)
	assert.Empty(t, fs)
	require.Len(t, ws, 1)
	assert.Equal(t, types.WarnSize, ws[0].Category)

	fs, ws = ScanContent(scanner.NewFileContext("a.bin", []byte("ab\x00cd")), set, cfg)
	assert.Empty(t, fs)
	require.Len(t, ws, 1)
	assert.Equal(t, types.WarnIO, ws[0].Category)

	fs, ws = ScanContent(scanner.NewFileContext("latin1.txt", []byte{'a', 0xff, 0xfe, 'b'}), set, cfg)
	assert.Empty(t, fs)
	require.Len(t, ws, 1)

	fs, ws = ScanContent(scanner.NewFileContext("empty.go", nil), set, cfg)
	assert.Empty(t, fs)
	assert.Empty(t, ws)
}

func TestScanContent_PlaceholdersSuppressed(t *testing.T) {
	content := "API_KEY = \"your_api_key_here\"\nPASSWORD = \"changeme\"\nTOKEN = \"${TOKEN}\"\n"
	fs, ws := ScanContent(scanner.NewFileContext("settings.py", []byte(content)), patterns.Default(), testConfig())
	assert.Empty(t, fs)
	assert.Empty(t, ws)
}

func TestScanContent_NoChecksEnabled(t *testing.T) {
	cfg := Config{}
	fs, _ := ScanContent(scanner.NewFileContext("a.go", []byte("token := \""+ghToken+"\"\n")), patterns.Default(), cfg)
	assert.Empty(t, fs)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"cfg/app.py": "DB_PASSWORD = \"Tr0ub4dor&3horse\"\n"})

	p := filepath.Join(dir, "cfg", "app.py")
	fs, ws := ScanFile(p, patterns.Default(), testConfig())
	assert.Empty(t, ws)
	require.Len(t, fs, 1)
	assert.Equal(t, filepath.ToSlash(p), fs[0].Path)
	assert.Equal(t, types.KindSecret, fs[0].Kind)
	assert.Equal(t, 1, fs[0].Line)

	fs, ws = ScanFile(filepath.Join(dir, "missing.py"), patterns.Default(), testConfig())
	assert.Empty(t, fs)
	require.Len(t, ws, 1)
	assert.Equal(t, types.WarnIO, ws[0].Category)

	fs, ws = ScanFile(dir, patterns.Default(), testConfig())
	assert.Empty(t, fs)
	require.Len(t, ws, 1)
}

func TestDedupe_KeepsHighestSeverity(t *testing.T) {
	in := []types.Finding{
		{Kind: types.KindSecret, Path: "a", Line: 1, Severity: types.SevMed, RuleID: "high_entropy_secret"},
		{Kind: types.KindSecret, Path: "a", Line: 1, Severity: types.SevCritical, RuleID: "github_token"},
		{Kind: types.KindSecret, Path: "a", Line: 1, Severity: types.SevHigh, RuleID: "hardcoded_password"},
		{Kind: types.KindWeakCrypto, Path: "a", Line: 1, Severity: types.SevLow, RuleID: "weak_hash"},
		{Kind: types.KindSecret, Path: "a", Line: 2, Severity: types.SevLow, RuleID: "x"},
	}
	out := dedupe(in)
	require.Len(t, out, 3)
	assert.Equal(t, "github_token", out[0].RuleID)
	assert.Equal(t, "weak_hash", out[1].RuleID)
	assert.Equal(t, "x", out[2].RuleID)
}

func TestFingerprint(t *testing.T) {
	f := types.Finding{Kind: types.KindSecret, Path: "a.go", Line: 3, RuleID: "jwt"}
	a := fingerprint(f)
	assert.Len(t, a, 16)
	assert.Equal(t, a, fingerprint(f))
	f.Line = 4
	assert.NotEqual(t, a, fingerprint(f))
}

func TestSortFindings(t *testing.T) {
	fs := []types.Finding{
		{Severity: types.SevLow, Path: "a", Line: 1},
		{Severity: types.SevHigh, Path: "b", Line: 9},
		{Severity: types.SevHigh, Path: "b", Line: 2},
		{Severity: types.SevHigh, Path: "a", Line: 5},
	}
	sortFindings(fs)
	assert.Equal(t, []types.Finding{
		{Severity: types.SevHigh, Path: "a", Line: 5},
		{Severity: types.SevHigh, Path: "b", Line: 2},
		{Severity: types.SevHigh, Path: "b", Line: 9},
		{Severity: types.SevLow, Path: "a", Line: 1},
	}, fs)
}
