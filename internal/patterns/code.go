package patterns

import (
	"regexp"
	"strings"
	"sync"

	"github.com/varalys/vulnlens/internal/types"
)

const (
	owaspBrokenAccess  = "A01:2021-Broken Access Control"
	owaspCrypto        = "A02:2021-Cryptographic Failures"
	owaspInjection     = "A03:2021-Injection"
	owaspIntegrity     = "A08:2021-Software and Data Integrity Failures"
	owaspMisconfigured = "A05:2021-Security Misconfiguration"

	// sqlSinks are call names that execute a query string.
	sqlSinks = `(?:query|execute|executemany|exec|raw|rawquery|queryrow|querycontext|queryrowcontext|execcontext|executequery|executeupdate|executesql|sqlquery|createquery|createnativequery)`
	sqlWords = `\b(?:select|insert|update|delete|drop|union|where|from)\b`
)

var (
	// reSQLEscaped looks for evidence that the dynamic part was escaped or
	// coerced to a number before reaching the query.
	reSQLEscaped = regexp.MustCompile(`(?i)\b(?:escape\w*|sanitiz\w*|quote_?ident\w*|quoteidentifier|mysql_real_escape_string|parseint|strconv\.itoa|strconv\.atoi|int)\s*\(`)
	// reHTMLEscaped looks for sanitizers near an HTML sink.
	reHTMLEscaped = regexp.MustCompile(`(?i)\b(?:dompurify|sanitize\w*|escape\w*|htmlspecialchars|encodeURIComponent|bleach\.clean|textContent)\b`)
	// reStringLiteralOnly matches an assignment or argument that is a single
	// literal with no concatenation or interpolation.
	reStringLiteralOnly = regexp.MustCompile(`^\s*(?:"[^"+]*"|'[^'+]*'|\x60[^\x60$]*\x60)\s*\)?\s*;?\s*$`)
	// reDynamic flags concatenation, interpolation, formatting or direct
	// request input on a line.
	reDynamic = regexp.MustCompile(`(?i)(?:["'\x60]\s*\+|\+\s*["'\x60A-Za-z_$]|\$\{|#\{|\bf["']|\.format\s*\(|["']\s*%\s*[\w(]|\bsprintf\s*\(|\breq\.(?:query|params|body)|\brequest\.(?:args|get|post|form|params|data)|\$_(?:get|post|request|cookie)|\bargv\b|\binput\s*\()`)
	reUntrustedPath = regexp.MustCompile(`(?i)(?:\breq\.(?:query|params|body)|\brequest\.(?:args|get|post|form|params|files)|\$_(?:get|post|request|files)|\bparams\[|\.url\.query\(\)|formvalue\s*\(|\buser_?input\b)`)
	rePathSafe      = regexp.MustCompile(`(?i)(?:secure_filename|path\.basename|filepath\.base|os\.path\.basename|path\.normalize\([^)]*\)\.startswith|isSubPath|within_root|filepath\.IsLocal|securejoin)`)
	reSafeYAML      = regexp.MustCompile(`(?i)(?:safeloader|csafeloader|safe_load|loader\s*=\s*yaml\.safe)`)
	// reShellArg matches a non-literal argument handed to `sh -c`.
	reShellArg = regexp.MustCompile(`"-c"\s*,\s*[A-Za-z_]`)
)

func codeSig(id, name string, cat Category, kind types.Kind, sev types.Severity, re string) Signature {
	return Signature{
		ID:       id,
		Name:     name,
		Category: cat,
		Kind:     kind,
		Matcher:  regexp.MustCompile(re),
		Severity: sev,
	}
}

// sqlLiteral matches a string literal holding a SQL keyword, followed by
// tail. Each quote style is its own alternative so the body may contain the
// other quote characters, as in "... WHERE name='" + name. When closed is
// false tail must appear before the closing quote.
func sqlLiteral(closed bool, tail string) string {
	alts := make([]string, 0, 3)
	for _, q := range []string{`"`, `'`, `\x60`} {
		body := `[^` + q + `]*`
		end := tail
		if closed {
			end = q + tail
		}
		alts = append(alts, q+body+sqlWords+body+end)
	}
	return `(?:` + strings.Join(alts, "|") + `)`
}

func literalOnly(c Candidate) bool { return reStringLiteralOnly.MatchString(c.Value) }

func notDynamic(c Candidate) bool { return !reDynamic.MatchString(c.Line) }

func injectionSignatures() []Signature {
	sqlConcat := codeSig("sql_concat", "SQL query built by concatenation", CategoryInjection, types.KindSQLInjection, types.SevHigh,
		`(?i)\b`+sqlSinks+`\s*\(\s*(?:f|\$)?`+sqlLiteral(true, `\s*(?:\+|\.\s*format\s*\(|%\s*[\w(])`))
	sqlConcat.Keywords = []string{"select", "insert", "update", "delete", "drop", "union", "where", "from"}
	sqlConcat.Exclude = func(c Candidate) bool { return reSQLEscaped.MatchString(c.Line) }

	sqlInterp := codeSig("sql_interpolation", "SQL query built by string interpolation", CategoryInjection, types.KindSQLInjection, types.SevHigh,
		`(?i)\b`+sqlSinks+`\s*\(\s*(?:f|\$)?`+sqlLiteral(false, `(?:\$\{|#\{|\{[A-Za-z_][\w.]*\})`))
	sqlInterp.Keywords = sqlConcat.Keywords
	sqlInterp.Exclude = sqlConcat.Exclude

	sqlFormat := codeSig("sql_format", "SQL query built with a format function", CategoryInjection, types.KindSQLInjection, types.SevHigh,
		`(?i)\b`+sqlSinks+`\s*\(\s*(?:ctx\s*,\s*)?(?:fmt\.sprintf|string\.format|sprintf|format)\s*\(\s*`+sqlLiteral(false, `%[sdvq]`))
	sqlFormat.Keywords = sqlConcat.Keywords
	sqlFormat.Exclude = sqlConcat.Exclude

	for _, s := range []*Signature{&sqlConcat, &sqlInterp, &sqlFormat} {
		s.Description = "User-controlled data may reach a SQL statement without parameterization."
		s.Recommendation = "Use parameterized queries or prepared statements and pass values as bind arguments."
		s.OWASP = owaspInjection
		s.CWE = "CWE-89"
		s.CVSS = 8.6
	}

	innerHTML := codeSig("xss_inner_html", "Dynamic content assigned to innerHTML", CategoryInjection, types.KindXSS, types.SevMed,
		`\.(?:inner|outer)HTML\s*\+?=\s*([^;]+)`)
	innerHTML.ValueGroup = 1
	innerHTML.Keywords = []string{"innerhtml", "outerhtml"}
	innerHTML.Exclude = func(c Candidate) bool { return literalOnly(c) || reHTMLEscaped.MatchString(c.Window) }

	docWrite := codeSig("xss_document_write", "Dynamic content passed to document.write", CategoryInjection, types.KindXSS, types.SevMed,
		`document\.write(?:ln)?\s*\(([^;]*)`)
	docWrite.ValueGroup = 1
	docWrite.Keywords = []string{"document.write"}
	docWrite.Exclude = innerHTML.Exclude

	reactHTML := codeSig("xss_dangerously_set_html", "dangerouslySetInnerHTML without sanitization", CategoryInjection, types.KindXSS, types.SevMed,
		`dangerouslySetInnerHTML\s*=\s*\{\s*\{\s*__html\s*:\s*([^}]+)`)
	reactHTML.ValueGroup = 1
	reactHTML.Keywords = []string{"dangerouslysetinnerhtml"}
	reactHTML.Exclude = innerHTML.Exclude

	unescaped := codeSig("xss_unescaped_template", "Unescaped template output", CategoryInjection, types.KindXSS, types.SevMed,
		`(?:\{\{\{\s*[\w.]+\s*\}\}\}|<%-\s*[\w.]+|\|\s*safe\s*\}\}|\btemplate\.HTML\(\s*[A-Za-z_]|\bv-html\s*=|\bHtml\.Raw\(\s*[A-Za-z_]|\bmark_safe\(\s*[A-Za-z_])`)
	unescaped.Exclude = func(c Candidate) bool { return reHTMLEscaped.MatchString(c.Line) }

	reflected := codeSig("xss_reflected_response", "Request input written to the response", CategoryInjection, types.KindXSS, types.SevHigh,
		`(?i)\b(?:res|response|w)\.(?:send|write|end)\s*\([^)]*(?:\breq\.(?:query|params|body)|\brequest\.(?:args|form|get|post)|\.url\.query\(\)|formvalue\()`)
	reflected.Exclude = func(c Candidate) bool { return reHTMLEscaped.MatchString(c.Line) }

	for _, s := range []*Signature{&innerHTML, &docWrite, &reactHTML, &unescaped, &reflected} {
		s.Description = "Untrusted content may be rendered as HTML without escaping."
		s.Recommendation = "Escape output for the HTML context, prefer textContent or auto-escaping templates, or sanitize with a vetted library."
		s.OWASP = owaspInjection
		s.CWE = "CWE-79"
		s.CVSS = 6.1
	}

	return []Signature{sqlConcat, sqlInterp, sqlFormat, innerHTML, docWrite, reactHTML, unescaped, reflected}
}

func owaspSignatures() []Signature {
	weakHash := codeSig("weak_hash", "Weak hash algorithm", CategoryOWASP, types.KindWeakCrypto, types.SevMed,
		`(?i)(?:\bhashlib\.(?:md5|sha1)\s*\(|\bcreateHash\(\s*["'](?:md5|sha1)["']|MessageDigest\.getInstance\(\s*"(?:MD5|SHA-?1)"|\b(?:md5|sha1)\.(?:New|Sum)\s*\(|\bDigest::(?:MD5|SHA1)\b|\b(?:md5|sha1)\s*\(\s*\$)`)
	weakHash.Description = "MD5 and SHA-1 are broken for collision resistance and unsuitable for security decisions or password storage."
	weakHash.Recommendation = "Use SHA-256 or stronger for integrity, and bcrypt, scrypt or Argon2 for passwords."
	weakHash.OWASP = owaspCrypto
	weakHash.CWE = "CWE-328"
	weakHash.CVSS = 5.3

	weakCipher := codeSig("weak_cipher", "Weak or broken cipher", CategoryOWASP, types.KindWeakCrypto, types.SevHigh,
		`(?i)(?:\b(?:des|rc4)\.New(?:TripleDES)?Cipher\s*\(|Cipher\.getInstance\(\s*"(?:DES|DESede|RC4|RC2|Blowfish|AES/ECB)[^"]*"|\bAES\.MODE_ECB\b|\bDES\.new\s*\(|\bARC4\.new\s*\(|createCipheriv?\(\s*["'](?:des|rc4|bf|aes-\d+-ecb)[^"']*["'])`)
	weakCipher.Description = "DES, RC4, Blowfish and ECB mode do not provide adequate confidentiality."
	weakCipher.Recommendation = "Use an authenticated cipher such as AES-GCM or ChaCha20-Poly1305."
	weakCipher.OWASP = owaspCrypto
	weakCipher.CWE = "CWE-327"
	weakCipher.CVSS = 7.4

	weakRandom := codeSig("insecure_random", "Non-cryptographic RNG used for secrets", CategoryOWASP, types.KindWeakCrypto, types.SevMed,
		`(?:\bMath\.random\s*\(\s*\)|\brandom\.(?:random|randint|choice)\s*\(|\bmath/rand\b|\brand\.(?:Intn|Int63|Read)\s*\(|\bnew Random\s*\(|\bmt_rand\s*\()`)
	weakRandom.Keywords = []string{"token", "password", "secret", "nonce", "salt", "session", "otp"}
	weakRandom.Description = "A predictable random number generator is used near security-sensitive values."
	weakRandom.Recommendation = "Generate tokens, salts and nonces with a CSPRNG (crypto/rand, secrets, crypto.randomBytes)."
	weakRandom.OWASP = owaspCrypto
	weakRandom.CWE = "CWE-338"

	tlsOff := codeSig("tls_verification_disabled", "TLS certificate verification disabled", CategoryOWASP, types.KindWeakCrypto, types.SevHigh,
		`(?i)(?:InsecureSkipVerify\s*:\s*true|\bverify\s*=\s*False\b|rejectUnauthorized\s*:\s*false|NODE_TLS_REJECT_UNAUTHORIZED\s*=\s*["']?0|CURLOPT_SSL_VERIFYPEER\s*,\s*(?:false|0)|ssl\._create_unverified_context)`)
	tlsOff.Description = "Disabling certificate verification allows man-in-the-middle interception."
	tlsOff.Recommendation = "Keep verification enabled and trust the specific CA bundle the service needs."
	tlsOff.OWASP = owaspMisconfigured
	tlsOff.CWE = "CWE-295"
	tlsOff.CVSS = 7.4

	deser := codeSig("insecure_deserialization", "Unsafe deserialization call", CategoryOWASP, types.KindInsecureDeserialization, types.SevHigh,
		`(?:\b(?:c?[pP]ickle|dill|shelve)\.loads?\s*\(|\byaml\.(?:unsafe_)?load\s*\(|\bmarshal\.loads\s*\(|\bjsonpickle\.decode\s*\(|\bnew\s+ObjectInputStream\s*\(|\.readObject\s*\(\s*\)|\bunserialize\s*\(|\bBinaryFormatter\b|\bMarshal\.load\s*\(|\bYAML\.load\s*\(|\bserialize\.unserialize\s*\()`)
	deser.Exclude = func(c Candidate) bool { return reSafeYAML.MatchString(c.Line) }
	deser.Description = "Deserializing untrusted data with these APIs can execute attacker-controlled code."
	deser.Recommendation = "Deserialize only trusted data, or switch to a data-only format such as JSON or yaml.safe_load."
	deser.OWASP = owaspIntegrity
	deser.CWE = "CWE-502"
	deser.CVSS = 8.1

	traversal := codeSig("path_traversal", "File access with caller-controlled path", CategoryOWASP, types.KindPathTraversal, types.SevHigh,
		`(?i)(?:\bopen|\breadfile(?:sync)?|\bcreatereadstream|\bsendfile|\bos\.(?:open|openfile|readfile)|\bioutil\.readfile|\bnew\s+file(?:inputstream)?|\bfopen|\bfile_get_contents|\binclude|\brequire|\bpath\.join|\bfilepath\.join|\bos\.path\.join)\s*\(([^;]*)`)
	traversal.ValueGroup = 1
	traversal.Exclude = func(c Candidate) bool {
		return !reUntrustedPath.MatchString(c.Value) || rePathSafe.MatchString(c.Window)
	}
	traversal.Description = "A file path built from request data can escape the intended directory via ../ sequences."
	traversal.Recommendation = "Resolve the path, then verify it stays inside an allow-listed base directory before opening it."
	traversal.OWASP = owaspBrokenAccess
	traversal.CWE = "CWE-22"
	traversal.CVSS = 7.5

	cmd := codeSig("command_injection", "Shell command built from dynamic input", CategoryOWASP, types.KindCommandInjection, types.SevCritical,
		`(?:\bos\.system\s*\(|\bos\.popen\s*\(|\bsubprocess\.(?:call|run|Popen|check_output|check_call)\s*\([^)]*shell\s*=\s*True|\bchild_process\.exec(?:Sync)?\s*\(|\bexecSync\s*\(|\bRuntime\.getRuntime\(\)\.exec\s*\(|\b(?:shell_exec|passthru|proc_open|popen)\s*\(|\bsystem\s*\(|\bexec\.Command(?:Context)?\s*\([^)]*"(?:ba|z)?sh"\s*,\s*"-c")`)
	cmd.Exclude = func(c Candidate) bool { return notDynamic(c) && !reShellArg.MatchString(c.Line) }
	cmd.Description = "Passing concatenated or interpolated input to a shell lets attackers inject extra commands."
	cmd.Recommendation = "Invoke the program directly with an argument list and validate inputs against an allow-list."
	cmd.OWASP = owaspInjection
	cmd.CWE = "CWE-78"
	cmd.CVSS = 9.8

	codeEval := codeSig("code_eval", "Dynamic code evaluation", CategoryOWASP, types.KindCommandInjection, types.SevHigh,
		`(?:\beval\s*\(|\bnew\s+Function\s*\(|\bsetTimeout\s*\(\s*["'\x60]|\bexec\s*\(\s*compile\s*\()`)
	codeEval.Exclude = notDynamic
	codeEval.Description = "Evaluating strings built from input allows arbitrary code execution."
	codeEval.Recommendation = "Replace eval with a parser or dispatch table for the specific inputs you expect."
	codeEval.OWASP = owaspInjection
	codeEval.CWE = "CWE-95"
	codeEval.CVSS = 8.8

	return []Signature{weakHash, weakCipher, weakRandom, tlsOff, deser, traversal, cmd, codeEval}
}

var builtinCatalog = sync.OnceValue(func() []Signature {
	var out []Signature
	out = append(out, secretSignatures()...)
	out = append(out, injectionSignatures()...)
	out = append(out, owaspSignatures()...)
	return out
})

// Builtin returns a copy of the built-in catalog, secrets first, then
// injection heuristics, then OWASP checks. Matchers are compiled once.
func Builtin() []Signature {
	cat := builtinCatalog()
	out := make([]Signature, len(cat))
	copy(out, cat)
	return out
}
