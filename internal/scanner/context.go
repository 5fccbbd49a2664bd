package scanner

import (
	"path/filepath"
	"strings"
)

// FileContext is everything a check needs to know about one file. It is
// built per invocation and never shared between workers.
type FileContext struct {
	// Path is relative to the scan root and uses forward slashes.
	Path     string
	Content  []byte
	Ext      string
	Language string
	Size     int64
}

// NewFileContext normalizes path and detects the language from its name.
func NewFileContext(path string, content []byte) FileContext {
	p := filepath.ToSlash(path)
	return FileContext{
		Path:     p,
		Content:  content,
		Ext:      strings.ToLower(filepath.Ext(p)),
		Language: DetectLanguage(p),
		Size:     int64(len(content)),
	}
}

var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".ps1":   "powershell",
	".sql":   "sql",
	".html":  "html",
	".htm":   "html",
	".vue":   "vue",
	".erb":   "ruby",
	".ejs":   "javascript",
	".jinja": "python",
	".j2":    "python",
	".tf":    "terraform",
	".json":  "json",
	".yml":   "yaml",
	".yaml":  "yaml",
	".toml":  "toml",
	".ini":   "ini",
	".env":   "dotenv",
	".xml":   "xml",
	".md":    "markdown",
}

var languageByName = map[string]string{
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
	".env":       "dotenv",
	"gemfile":    "ruby",
	"rakefile":   "ruby",
}

// DetectLanguage guesses a language from the file name. It returns
// "unknown" when nothing matches.
func DetectLanguage(path string) string {
	base := strings.ToLower(filepath.Base(filepath.ToSlash(path)))
	if l, ok := languageByName[base]; ok {
		return l
	}
	if strings.HasPrefix(base, ".env.") {
		return "dotenv"
	}
	if l, ok := languageByExt[strings.ToLower(filepath.Ext(base))]; ok {
		return l
	}
	return "unknown"
}

// Lines splits content into lines without trailing "\r". A final empty line
// produced by a trailing newline is dropped.
func (fc FileContext) Lines() []string {
	if len(fc.Content) == 0 {
		return nil
	}
	lines := strings.Split(string(fc.Content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Window joins lines[i-radius : i+radius] (clamped) with newlines.
func Window(lines []string, i, radius int) string {
	lo, hi := i-radius, i+radius+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	if lo >= hi {
		return ""
	}
	return strings.Join(lines[lo:hi], "\n")
}
