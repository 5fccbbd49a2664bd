package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "go source", path: "cmd/main.go", expected: "go"},
		{name: "upper-case ext", path: "App.JS", expected: "javascript"},
		{name: "tsx", path: "web/src/App.tsx", expected: "typescript"},
		{name: "dockerfile", path: "deploy/Dockerfile", expected: "dockerfile"},
		{name: "dotenv variant", path: ".env.production", expected: "dotenv"},
		{name: "windows separators", path: `src\app.py`, expected: "python"},
		{name: "no extension", path: "LICENSE", expected: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectLanguage(tt.path))
		})
	}
}

func TestNewFileContext(t *testing.T) {
	fc := NewFileContext("src/Config.YAML", []byte("a: b\n"))
	assert.Equal(t, "src/Config.YAML", fc.Path)
	assert.Equal(t, ".yaml", fc.Ext)
	assert.Equal(t, "yaml", fc.Language)
	assert.Equal(t, int64(5), fc.Size)
}

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{name: "empty", content: "", expected: nil},
		{name: "trailing newline", content: "a\nb\n", expected: []string{"a", "b"}},
		{name: "no trailing newline", content: "a\nb", expected: []string{"a", "b"}},
		{name: "crlf", content: "a\r\nb\r\n", expected: []string{"a", "b"}},
		{name: "blank lines kept", content: "a\n\nb\n", expected: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := NewFileContext("f.txt", []byte(tt.content))
			assert.Equal(t, tt.expected, fc.Lines())
		})
	}
}

func TestWindow(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5", "l6"}
	assert.Equal(t, "l1\nl2\nl3", Window(lines, 0, 2))
	assert.Equal(t, "l2\nl3\nl4\nl5\nl6", Window(lines, 3, 2))
	assert.Equal(t, "l5\nl6", Window(lines, 5, 1))
	assert.Equal(t, "", Window(nil, 0, 2))
}
