// Package ctxparse flattens JSON and YAML documents into dotted key/value
// pairs with line numbers so checks can reason about config keys.
package ctxparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Field is one scalar leaf. Line is 1-based.
type Field struct {
	Key   string
	Value string
	Line  int
}

// Fields dispatches on the file extension. It returns nil for anything that
// is not JSON or YAML, or that fails to parse.
func Fields(path string, b []byte) []Field {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONFields(b)
	case ".yml", ".yaml":
		return YAMLFields(b)
	}
	return nil
}

type jsonFrame struct {
	object  bool
	wantKey bool
	key     string
	index   int
}

// JSONFields walks the token stream and records every scalar leaf with the
// line its token ends on. Invalid JSON yields nil.
func JSONFields(b []byte) []Field {
	if !json.Valid(b) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var (
		out   []Field
		stack []*jsonFrame
	)
	keyPath := func() string {
		parts := make([]string, 0, len(stack))
		for _, f := range stack {
			if f.object {
				parts = append(parts, f.key)
			}
		}
		return strings.Join(parts, ".")
	}
	// called after a complete value has been consumed in the current frame
	advance := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.wantKey = true
		} else {
			top.index++
		}
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil
		}
		var top *jsonFrame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				stack = append(stack, &jsonFrame{object: true, wantKey: true})
			case '[':
				stack = append(stack, &jsonFrame{})
			default:
				stack = stack[:len(stack)-1]
				advance()
			}
			continue
		case string:
			if top != nil && top.object && top.wantKey {
				top.key = t
				top.wantKey = false
				continue
			}
			out = appendLeaf(out, keyPath(), t, lineAt(b, dec.InputOffset()))
		default:
			out = appendLeaf(out, keyPath(), fmt.Sprint(t), lineAt(b, dec.InputOffset()))
		}
		advance()
	}
	return out
}

func appendLeaf(out []Field, key, val string, line int) []Field {
	if key == "" {
		return out
	}
	return append(out, Field{Key: key, Value: val, Line: line})
}

func lineAt(b []byte, off int64) int {
	if off > int64(len(b)) {
		off = int64(len(b))
	}
	return bytes.Count(b[:off], []byte{'\n'}) + 1
}

// YAMLFields flattens scalar leaves using the node positions yaml.v3 keeps.
// Sequence items share their parent key.
func YAMLFields(b []byte) []Field {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil
	}
	var out []Field
	var walk func(n *yaml.Node, path []string)
	walk = func(n *yaml.Node, path []string) {
		switch n.Kind {
		case yaml.DocumentNode, yaml.SequenceNode:
			for _, c := range n.Content {
				walk(c, path)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				next := append(append([]string(nil), path...), n.Content[i].Value)
				walk(n.Content[i+1], next)
			}
		case yaml.ScalarNode:
			if len(path) > 0 && n.Tag != "!!null" {
				out = append(out, Field{Key: strings.Join(path, "."), Value: n.Value, Line: n.Line})
			}
		}
	}
	walk(&root, nil)
	return out
}
