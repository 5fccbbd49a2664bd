package patterns

import (
	"regexp"
	"strings"

	"github.com/varalys/vulnlens/internal/types"
	v "github.com/varalys/vulnlens/internal/validate"
)

const (
	owaspAuthFailures = "A07:2021-Identification and Authentication Failures"
	cweHardcodedCreds = "CWE-798"
	recRotateSecret   = "Remove the value from source, rotate it, and load it from a secret manager or environment variable."
)

var weakLiteralPasswords = map[string]bool{
	"password": true, "passwd": true, "pass": true, "pwd": true, "secret": true,
}

func secretSig(id, name string, sev types.Severity, re string, group int, desc string) Signature {
	return Signature{
		ID:             id,
		Name:           name,
		Category:       CategorySecret,
		Kind:           types.KindSecret,
		Matcher:        regexp.MustCompile(re),
		ValueGroup:     group,
		Severity:       sev,
		Description:    desc,
		Recommendation: recRotateSecret,
		OWASP:          owaspAuthFailures,
		CWE:            cweHardcodedCreds,
	}
}

func secretSignatures() []Signature {
	awsAccess := secretSig("aws_access_key", "AWS access key ID", types.SevCritical,
		`\b((?:AKIA|ASIA)[0-9A-Z]{16})\b`, 1,
		"Hardcoded AWS access key ID.")
	awsAccess.Exclude = func(c Candidate) bool { return !v.LooksLikeAWSAccessKey(c.Value) }

	awsSecret := secretSig("aws_secret_key", "AWS secret access key", types.SevCritical,
		`(?i)(?:aws_secret_access_key|aws_secret_key|secretaccesskey)["'\s:=]+([A-Za-z0-9/+=]{40})`, 1,
		"Hardcoded AWS secret access key.")
	awsSecret.Keywords = []string{"aws_secret", "secretaccesskey"}
	awsSecret.Exclude = func(c Candidate) bool { return !v.LooksLikeAWSSecretKey(c.Value) }

	github := secretSig("github_token", "GitHub token", types.SevCritical,
		`\b(gh[pousr]_[A-Za-z0-9]{36})\b`, 1,
		"Hardcoded GitHub personal access, OAuth, or app token.")
	github.Exclude = func(c Candidate) bool { return !v.LooksLikeGitHubToken(c.Value) }

	githubFine := secretSig("github_fine_grained_pat", "GitHub fine-grained PAT", types.SevCritical,
		`\b(github_pat_[A-Za-z0-9_]{82})\b`, 1,
		"Hardcoded GitHub fine-grained personal access token.")

	gitlab := secretSig("gitlab_token", "GitLab personal access token", types.SevHigh,
		`\b(glpat-[A-Za-z0-9_-]{20})\b`, 1,
		"Hardcoded GitLab personal access token.")

	slack := secretSig("slack_token", "Slack token", types.SevHigh,
		`\b(xox[baprs]-[0-9]{10,13}-[0-9A-Za-z-]{10,72})\b`, 1,
		"Hardcoded Slack bot, user, or app token.")

	slackHook := secretSig("slack_webhook", "Slack webhook URL", types.SevMed,
		`(https://hooks\.slack\.com/services/T[A-Z0-9]{8,}/B[A-Z0-9]{8,}/[A-Za-z0-9]{24})`, 1,
		"Incoming webhook URL that allows posting to a Slack channel.")

	stripe := secretSig("stripe_secret_key", "Stripe secret key", types.SevCritical,
		`\b((?:sk|rk)_live_[0-9a-zA-Z]{24,99})\b`, 1,
		"Live-mode Stripe secret or restricted key.")

	google := secretSig("google_api_key", "Google API key", types.SevHigh,
		`\b(AIza[0-9A-Za-z_-]{35})`, 1,
		"Hardcoded Google Cloud API key.")

	openai := secretSig("openai_api_key", "OpenAI API key", types.SevCritical,
		`\b(sk-(?:proj-[A-Za-z0-9_-]{32,}|[A-Za-z0-9]{32,}))`, 1,
		"Hardcoded OpenAI API key.")

	anthropic := secretSig("anthropic_api_key", "Anthropic API key", types.SevCritical,
		`\b(sk-ant-(?:api|admin)\d{2}-[A-Za-z0-9_-]{32,})`, 1,
		"Hardcoded Anthropic API key.")

	sendgrid := secretSig("sendgrid_api_key", "SendGrid API key", types.SevHigh,
		`\b(SG\.[A-Za-z0-9_-]{22}\.[A-Za-z0-9_-]{43})\b`, 1,
		"Hardcoded SendGrid API key.")

	twilio := secretSig("twilio_api_key", "Twilio API key", types.SevHigh,
		`\b(SK[0-9a-f]{32})\b`, 1,
		"Hardcoded Twilio API key SID.")

	npm := secretSig("npm_token", "npm access token", types.SevHigh,
		`\b(npm_[A-Za-z0-9]{36})\b`, 1,
		"Hardcoded npm automation or publish token.")

	jwt := secretSig("jwt", "JSON Web Token", types.SevMed,
		`\b(eyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,})`, 1,
		"Embedded JSON Web Token; it may grant access until it expires.")
	jwt.Exclude = func(c Candidate) bool { return !v.IsJWTStructure(c.Value) }

	privateKey := secretSig("private_key", "Private key block", types.SevCritical,
		`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----`, 0,
		"PEM or OpenSSH private key material committed to source.")

	dbURI := secretSig("db_uri_credentials", "Database URI with credentials", types.SevHigh,
		`(?i)\b(?:postgres(?:ql)?|mysql|mariadb|mongodb(?:\+srv)?|redis|rediss|amqps?|mssql|sqlserver)://[^:\s/"'@]+:([^@\s/"']+)@[^\s"']+`, 1,
		"Connection string with an embedded password.")
	dbURI.Exclude = func(c Candidate) bool { return weakLiteralPasswords[strings.ToLower(c.Value)] }

	generic := secretSig("hardcoded_password", "Hardcoded password or API key", types.SevHigh,
		`(?i)(?:password|passwd|pwd|secret|api[_-]?key|apikey|access[_-]?token|auth[_-]?token|client[_-]?secret)["']?\s*[:=]\s*["']([^"'\s]{8,})["']`, 1,
		"Credential-like identifier assigned a string literal.")
	generic.Keywords = []string{"pass", "pwd", "secret", "key", "token"}
	generic.Exclude = func(c Candidate) bool { return weakLiteralPasswords[strings.ToLower(c.Value)] }

	entropy := secretSig("high_entropy_secret", "High-entropy value near secret keyword", types.SevMed,
		`(?i)(?:secret|token|password|api[_-]?key|authorization|bearer|credential)[\w.-]*["']?\s*[:=]\s*["']?([A-Za-z0-9+/=_-]{20,200})`, 1,
		"Random-looking value assigned to a secret-like name.")
	entropy.Keywords = []string{"secret", "token", "password", "key", "authorization", "bearer", "credential"}
	entropy.Exclude = func(c Candidate) bool { return v.Entropy(c.Value) < 4.0 }

	structured := secretSig("structured_secret", "Secret value in structured config", types.SevHigh,
		`(?i)(?:^|[._-])(?:password|passwd|secret|token|api[_-]?key|apikey|private[_-]?key|client[_-]?secret|credentials?)$`, 0,
		"JSON or YAML key with a secret-like name holds a literal value.")
	structured.Structured = true
	structured.Extensions = []string{".json", ".yml", ".yaml"}
	structured.Exclude = func(c Candidate) bool {
		val := strings.Trim(strings.TrimSpace(c.Value), `"',`)
		return len(val) < 8 || weakLiteralPasswords[strings.ToLower(val)] || strings.ContainsAny(val, "{[")
	}

	return []Signature{
		awsAccess, awsSecret, github, githubFine, gitlab, slack, slackHook, stripe,
		google, openai, anthropic, sendgrid, twilio, npm, jwt, privateKey, dbURI,
		generic, entropy, structured,
	}
}
