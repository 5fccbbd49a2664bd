// Package ignore evaluates gitignore-style exclusion files
// (.vulnlensignore and, optionally, .gitignore) against root-relative paths.
package ignore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the project-level ignore file read from the scan root.
const FileName = ".vulnlensignore"

// Matcher holds parsed patterns. The zero value matches nothing.
type Matcher struct {
	patterns []gitignore.Pattern
	m        gitignore.Matcher
}

// Load parses a single ignore file whose patterns apply from the root. A
// missing file yields an empty matcher and no error.
func Load(path string) (Matcher, error) {
	var m Matcher
	err := m.AddFile(path, nil)
	return m, err
}

// Parse reads patterns from r. domain is the directory, as path components
// relative to the root, that the patterns are anchored to.
func Parse(r io.Reader, domain []string) ([]gitignore.Pattern, error) {
	var ps []gitignore.Pattern
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	return ps, sc.Err()
}

// AddFile appends the patterns from path, anchored at domain.
func (m *Matcher) AddFile(path string, domain []string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	ps, err := Parse(f, domain)
	if err != nil {
		return err
	}
	m.Add(ps...)
	return nil
}

// Add appends already parsed patterns.
func (m *Matcher) Add(ps ...gitignore.Pattern) {
	if len(ps) == 0 {
		return
	}
	m.patterns = append(m.patterns, ps...)
	m.m = gitignore.NewMatcher(m.patterns)
}

// Len reports the number of loaded patterns.
func (m Matcher) Len() int { return len(m.patterns) }

// Match reports whether rel (slash or OS separated, relative to the root)
// is ignored. Later patterns win, so negations work as in git.
func (m Matcher) Match(rel string, isDir bool) bool {
	if m.m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		return false
	}
	return m.m.Match(strings.Split(rel, "/"), isDir)
}

// Split turns a relative directory path into gitignore domain components.
func Split(rel string) []string {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}

// Append adds pattern to the .vulnlensignore file in root, creating it when
// missing. It reports whether the file changed; existing patterns are left
// alone.
func Append(root, pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false, errors.New("empty pattern")
	}
	path := filepath.Join(root, FileName)
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	for _, line := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(line) == pattern {
			return false, nil
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if len(b) > 0 && b[len(b)-1] != '\n' {
		pattern = "\n" + pattern
	}
	if _, err := f.WriteString(pattern + "\n"); err != nil {
		return false, err
	}
	return true, nil
}
