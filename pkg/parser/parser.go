// Package parser wraps tree-sitter for the languages fathom parses
// structurally, and classifies every supported language into a family:
// grammar-parsed (a tree-sitter grammar is in scope) or heuristic-matched
// (function boundaries are approximated lexically by pkg/extract).
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRuby       Language = "ruby"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// Family indicates how function boundaries for a language are obtained.
type Family string

const (
	// FamilyGrammar means spans and calls come from a structural parse.
	FamilyGrammar Family = "grammar_parsed"
	// FamilyHeuristic means spans and calls come from lexical matching.
	FamilyHeuristic Family = "heuristic_matched"
)

// FamilyOf returns the extraction family for a language. JavaScript and
// TypeScript are handled lexically; everything else has a grammar.
func FamilyOf(lang Language) Family {
	switch lang {
	case LangJavaScript, LangTypeScript:
		return FamilyHeuristic
	default:
		return FamilyGrammar
	}
}

// Parser wraps a tree-sitter parser. Not safe for concurrent use;
// allocate one per worker goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and the source it was parsed from.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source code with the grammar for the given language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*ParseResult, error) {
	tsLang, err := GrammarFor(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", lang, err)
	}

	return &ParseResult{Tree: tree, Language: lang, Source: source}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// GrammarFor returns the tree-sitter grammar for a grammar-parsed language.
func GrammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	case LangRuby:
		return ruby.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("no grammar for language: %s", lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return LangPython
	case ".go":
		return LangGo
	case ".rb", ".rake":
		return LangRuby
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LangTypeScript
	default:
		return LangUnknown
	}
}

// NodeVisitor is called for every node during a tree walk. Returning
// false stops descent into the node's children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the tree depth-first, parents before children, children
// in declaration order. The order is complete and deterministic for
// identical input.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// NodeText extracts the source text for a node. Returns empty string if
// the node is nil or its byte offsets are out of bounds.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
