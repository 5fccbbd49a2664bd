// Package validate holds cheap shape checks used to confirm or suppress
// candidate secret matches.
package validate

import (
	"encoding/base64"
	"math"
	"strings"
)

const (
	base62     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b64like    = base62 + "+/="
)

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsBase64URLNoPad reports whether s is valid base64url (no padding) for JWT segments.
func IsBase64URLNoPad(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// IsJWTStructure verifies 3 segments with base64url-decodable header and payload.
func IsJWTStructure(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	return IsBase64URLNoPad(parts[0]) && IsBase64URLNoPad(parts[1])
}

// LooksLikeGitHubToken accepts ghp_, gho_, ghu_, ghs_, ghr_ followed by 36 base62 chars.
func LooksLikeGitHubToken(s string) bool {
	if len(s) != 40 {
		return false
	}
	switch s[:4] {
	case "ghp_", "gho_", "ghu_", "ghs_", "ghr_":
	default:
		return false
	}
	return IsAlphabet(s[4:], base62)
}

// LooksLikeAWSAccessKey checks for AKIA/ASIA + 16 uppercase alnum.
func LooksLikeAWSAccessKey(s string) bool {
	if !(strings.HasPrefix(s, "AKIA") || strings.HasPrefix(s, "ASIA")) {
		return false
	}
	return len(s) == 20 && IsAlphabet(s[4:], upperAlnum)
}

// LooksLikeAWSSecretKey checks base64-like alphabet and exact length 40.
func LooksLikeAWSSecretKey(s string) bool {
	return len(s) == 40 && IsAlphabet(s, b64like)
}

// Entropy returns the Shannon entropy of s in bits per character.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	for _, r := range s {
		count[r]++
	}
	h := 0.0
	n := float64(len(s))
	for _, c := range count {
		p := float64(c) / n
		h += -p * math.Log2(p)
	}
	return h
}

var placeholderWords = []string{
	"placeholder",
	"your_key_here", "your-key-here", "yourkeyhere",
	"your_api_key", "your-api-key", "your_token", "your_secret", "your_password",
	"insert_key", "insert-key", "replace_me", "replace-me", "replaceme",
	"changeme", "change_me", "change-me",
	"example", "dummy", "sample", "redacted", "notasecret", "not_a_secret",
	"<secret>", "<token>", "<password>",
}

// IsPlaceholder reports whether v is obviously not a real credential:
// documented placeholders, masked values (xxxx, ****), template references
// (${VAR}, {{ .Value }}, %(name)s) and single-character repetitions.
func IsPlaceholder(v string) bool {
	s := strings.Trim(strings.TrimSpace(v), `"'`+"`")
	if s == "" {
		return true
	}
	lower := strings.ToLower(s)
	for _, w := range placeholderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	if IsTemplateReference(s) {
		return true
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return true
	}
	if strings.Contains(lower, "xxxx") || strings.Contains(s, "****") || strings.Contains(s, "....") {
		return true
	}
	return repeatsOneChar(s)
}

// IsTemplateReference reports whether s is a variable reference rather than
// a literal value.
func IsTemplateReference(s string) bool {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		return true
	case strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}"):
		return true
	case strings.HasPrefix(s, "%(") && strings.HasSuffix(s, ")s"):
		return true
	case strings.HasPrefix(s, "$") && IsAlphabet(s[1:], upperAlnum+"_"):
		return true
	case strings.HasPrefix(s, "process.env."), strings.HasPrefix(s, "os.environ"), strings.HasPrefix(s, "os.Getenv("):
		return true
	}
	return false
}

func repeatsOneChar(s string) bool {
	if len(s) < 4 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
