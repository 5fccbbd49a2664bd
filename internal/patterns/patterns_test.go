package patterns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/vulnlens/internal/types"
)

func TestBuiltin_UniqueIDsAndValidMetadata(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Builtin() {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.Name, s.ID)
		assert.NotNil(t, s.Matcher, s.ID)
		assert.True(t, s.Severity.Valid(), s.ID)
		assert.NotEmpty(t, s.Recommendation, s.ID)
		assert.NotEmpty(t, s.CWE, s.ID)
		assert.Equal(t, CategoryForKind(s.Kind), s.Category, s.ID)
		assert.LessOrEqual(t, s.ValueGroup, s.Matcher.NumSubexp(), s.ID)
		for _, k := range s.Keywords {
			assert.Equal(t, strings.ToLower(k), k, "keywords must be lowercase: %s", s.ID)
		}
	}
	assert.NotEmpty(t, Default().ForCategory(CategorySecret))
	assert.NotEmpty(t, Default().ForCategory(CategoryInjection))
	assert.NotEmpty(t, Default().ForCategory(CategoryOWASP))
}

func TestBuiltin_ReturnsCopy(t *testing.T) {
	a := Builtin()
	a[0].ID = "mutated"
	b := Builtin()
	assert.NotEqual(t, "mutated", b[0].ID)
}

func TestRegister_InvalidCustomPatternWarnsAndKeepsOthers(t *testing.T) {
	set := Register([]CustomPattern{
		{ID: "broken", Name: "Broken", Pattern: "([a-z"},
		{ID: "internal_token", Name: "Internal token", Pattern: `\b(itk_[a-z0-9]{16})\b`, ValueGroup: 1, Severity: "high"},
		{Name: "No pattern"},
		{ID: "bad_sev", Pattern: "x", Severity: "urgent"},
		{ID: "bad_kind", Pattern: "x", Kind: "bogus"},
		{ID: "bad_group", Pattern: "(x)", ValueGroup: 3},
		{ID: "bad_glob", Pattern: "x", Paths: []string{"[unclosed"}},
	})

	warnings := set.Warnings()
	require.Len(t, warnings, 6)
	for _, w := range warnings {
		assert.Equal(t, types.WarnConfig, w.Category)
	}
	assert.Contains(t, warnings[0].Message, "broken")

	sig, ok := set.Lookup("internal_token")
	require.True(t, ok)
	assert.True(t, sig.Custom)
	assert.Equal(t, types.SevHigh, sig.Severity)
	assert.Equal(t, types.KindSecret, sig.Kind)
	assert.Equal(t, CategorySecret, sig.Category)
	assert.Equal(t, len(Builtin())+1, set.Len())
}

func TestRegister_DuplicateIDRejected(t *testing.T) {
	set := Register([]CustomPattern{
		{ID: "aws_access_key", Pattern: "AKIA"},
		{ID: "mine", Pattern: "a"},
		{ID: "mine", Pattern: "b"},
	})
	require.Len(t, set.Warnings(), 2)
	for _, w := range set.Warnings() {
		assert.Contains(t, w.Message, "duplicate id")
	}
	assert.Equal(t, len(Builtin())+1, set.Len())
}

func TestCustomPattern_Defaults(t *testing.T) {
	sig, err := CustomPattern{Name: "Acme Deploy Key!", Pattern: "acme_[0-9]+"}.compile()
	require.NoError(t, err)
	assert.Equal(t, "acme_deploy_key", sig.ID)
	assert.Equal(t, types.SevMed, sig.Severity)
	assert.Equal(t, types.KindSecret, sig.Kind)

	sig, err = CustomPattern{ID: "raw_sql", Pattern: "RAW\\(", Kind: "sql_injection", Keywords: []string{" RAW "}}.compile()
	require.NoError(t, err)
	assert.Equal(t, CategoryInjection, sig.Category)
	assert.Equal(t, []string{"raw"}, sig.Keywords)
}

func TestSet_Filter(t *testing.T) {
	set := Default()

	only := set.Filter("jwt, github_token", "")
	assert.Equal(t, 2, only.Len())

	without := set.Filter("", "jwt")
	assert.Equal(t, set.Len()-1, without.Len())
	_, ok := without.Lookup("jwt")
	assert.False(t, ok)

	assert.Equal(t, set.Len(), set.Filter("", "").Len())
}

func TestSignature_AppliesTo(t *testing.T) {
	s := Signature{Extensions: []string{".json", ".yaml"}}
	assert.True(t, s.AppliesTo("conf/app.yaml"))
	assert.True(t, s.AppliesTo(`conf\APP.JSON`))
	assert.False(t, s.AppliesTo("main.go"))

	g := Signature{Paths: []string{"deploy/**/*.env", "*.tf"}}
	assert.True(t, g.AppliesTo("deploy/prod/app.env"))
	assert.True(t, g.AppliesTo("infra/main.tf"))
	assert.False(t, g.AppliesTo("src/app.env"))
}

func TestSQLSignatures(t *testing.T) {
	set := Default().Filter("sql_concat,sql_interpolation,sql_format", "")
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"concat", `db.query("SELECT * FROM users WHERE id=" + userId)`, true},
		{"parameterized", `db.query("SELECT * FROM users WHERE id=?", userId)`, false},
		{"python f-string", `cursor.execute(f"SELECT * FROM users WHERE id = {user_id}")`, true},
		{"js template", "conn.query(`DELETE FROM t WHERE id = ${id}`)", true},
		{"go sprintf", `rows, err := db.Query(fmt.Sprintf("SELECT * FROM t WHERE id = %s", id))`, true},
		{"python percent", `cursor.execute("SELECT * FROM t WHERE id = %s" % uid)`, true},
		{"postgres placeholder", `db.Query("SELECT * FROM t WHERE id = $1", id)`, false},
		{"escaped", `db.query("SELECT * FROM t WHERE id=" + escape(id))`, false},
		{"no sink", `msg := "SELECT * FROM " + table`, false},
		{"quoted concat", `db.query("SELECT * FROM users WHERE name='" + name + "'")`, true},
		{"quoted f-string", `cursor.execute(f"SELECT * FROM users WHERE name = '{name}'")`, true},
		{"quoted sprintf", `db.Query(fmt.Sprintf("SELECT * FROM t WHERE name = '%s'", name))`, true},
		{"quoted literal with placeholder", `db.query("SELECT * FROM t WHERE status = 'active' AND id = ?", id)`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := false
			for _, s := range set.Signatures() {
				if !s.WantsLine(strings.ToLower(tt.line)) {
					continue
				}
				val, _, ok := s.Match(tt.line)
				if ok && !s.Suppressed(Candidate{Value: val, Line: tt.line, Window: tt.line}) {
					got = true
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuppressed_PlaceholderOnlyForSecrets(t *testing.T) {
	secret := Signature{Category: CategorySecret}
	assert.True(t, secret.Suppressed(Candidate{Value: "your_key_here"}))
	code := Signature{Category: CategoryOWASP}
	assert.False(t, code.Suppressed(Candidate{Value: "your_key_here"}))
}
