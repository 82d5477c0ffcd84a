package parser

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.py", LangPython},
		{"types.pyi", LangPython},
		{"gui.pyw", LangPython},
		{"server.go", LangGo},
		{"app.rb", LangRuby},
		{"build.rake", LangRuby},
		{"index.js", LangJavaScript},
		{"mod.mjs", LangJavaScript},
		{"legacy.cjs", LangJavaScript},
		{"view.jsx", LangJavaScript},
		{"api.ts", LangTypeScript},
		{"view.tsx", LangTypeScript},
		{"UPPER.PY", LangPython},
		{"README.md", LangUnknown},
		{"noext", LangUnknown},
		{"/deep/path/to/script.py", LangPython},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, DetectLanguage(tt.path), "path %q", tt.path)
	}
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyGrammar, FamilyOf(LangPython))
	assert.Equal(t, FamilyGrammar, FamilyOf(LangGo))
	assert.Equal(t, FamilyGrammar, FamilyOf(LangRuby))
	assert.Equal(t, FamilyHeuristic, FamilyOf(LangJavaScript))
	assert.Equal(t, FamilyHeuristic, FamilyOf(LangTypeScript))
}

func TestGrammarFor(t *testing.T) {
	for _, lang := range []Language{LangPython, LangGo, LangRuby} {
		g, err := GrammarFor(lang)
		require.NoError(t, err)
		assert.NotNil(t, g)
	}

	_, err := GrammarFor(LangJavaScript)
	assert.Error(t, err)
	_, err = GrammarFor(LangUnknown)
	assert.Error(t, err)
}

func TestParseAndWalk(t *testing.T) {
	src := []byte("def greet():\n    return \"hi\"\n")

	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), src, LangPython)
	require.NoError(t, err)
	require.NotNil(t, result.Tree)

	var types []string
	Walk(result.Tree.RootNode(), src, func(node *sitter.Node, source []byte) bool {
		types = append(types, node.Type())
		return true
	})
	assert.Contains(t, types, "function_definition")
}

func TestNodeText(t *testing.T) {
	src := []byte("def f():\n    pass\n")

	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), src, LangPython)
	require.NoError(t, err)

	root := result.Tree.RootNode()
	assert.Equal(t, string(src), NodeText(root, src))
	assert.Equal(t, "", NodeText(nil, src))
	// Offsets beyond the source yield empty text.
	assert.Equal(t, "", NodeText(root, src[:2]))
}
