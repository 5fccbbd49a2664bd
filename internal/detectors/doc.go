// Package detectors implements the built-in checks: hardcoded secrets,
// injection heuristics and OWASP-category weaknesses. Each check consumes
// the signatures of its category from a compiled patterns.Set and reports
// raw findings for one file.
package detectors
