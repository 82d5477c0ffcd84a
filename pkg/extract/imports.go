package extract

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/quillco/fathom/pkg/parser"
)

// Imports extracts the modules a file imports. This is prompt context
// for report generation only; it plays no part in grouping. Failures
// degrade to an empty list.
func Imports(ctx context.Context, lang parser.Language, source []byte) []string {
	if len(source) == 0 {
		return nil
	}

	var imports []string
	switch parser.FamilyOf(lang) {
	case parser.FamilyHeuristic:
		imports = lexicalImports(source)
	default:
		imports = grammarImports(ctx, lang, source)
	}

	seen := make(map[string]struct{}, len(imports))
	var unique []string
	for _, imp := range imports {
		if imp == "" {
			continue
		}
		if _, dup := seen[imp]; dup {
			continue
		}
		seen[imp] = struct{}{}
		unique = append(unique, imp)
	}
	sort.Strings(unique)
	return unique
}

// importNodeTypes per grammar-parsed language.
func importNodeTypes(lang parser.Language) map[string]struct{} {
	switch lang {
	case parser.LangPython:
		return map[string]struct{}{
			"import_statement":      {},
			"import_from_statement": {},
		}
	case parser.LangGo:
		return map[string]struct{}{"import_spec": {}}
	case parser.LangRuby:
		// require/require_relative/load are plain method calls.
		return map[string]struct{}{"call": {}}
	default:
		return nil
	}
}

func grammarImports(ctx context.Context, lang parser.Language, source []byte) []string {
	p := parser.New()
	defer p.Close()

	result, err := p.Parse(ctx, source, lang)
	if err != nil || result.Tree == nil {
		return nil
	}

	nodeTypes := importNodeTypes(lang)
	var imports []string

	parser.Walk(result.Tree.RootNode(), source, func(node *sitter.Node, src []byte) bool {
		if _, ok := nodeTypes[node.Type()]; !ok {
			return true
		}
		if imp := importPath(node, src, lang); imp != "" {
			imports = append(imports, imp)
		}
		return true
	})

	return imports
}

// importPath extracts the imported module name from an import node.
func importPath(node *sitter.Node, source []byte, lang parser.Language) string {
	switch lang {
	case parser.LangPython:
		if modNode := node.ChildByFieldName("module_name"); modNode != nil {
			return parser.NodeText(modNode, source)
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			return parser.NodeText(nameNode, source)
		}

	case parser.LangGo:
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			return unquote(parser.NodeText(pathNode, source))
		}

	case parser.LangRuby:
		method := parser.NodeText(node.ChildByFieldName("method"), source)
		if method != "require" && method != "require_relative" && method != "load" {
			return ""
		}
		args := node.ChildByFieldName("arguments")
		if args == nil {
			return ""
		}
		for i := range int(args.ChildCount()) {
			child := args.Child(i)
			if child.Type() == "string" {
				return unquote(parser.NodeText(child, source))
			}
		}
	}

	return ""
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// lexicalImports scans JS/TS source for import-from and require forms.
func lexicalImports(source []byte) []string {
	var imports []string
	s := &lexScanner{src: source}

	for s.pos < len(s.src) {
		if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"' || s.src[s.pos] == '`') {
			s.skipString(s.src[s.pos])
			continue
		}
		if s.skipNonCode() {
			continue
		}
		if !isIdentStart(s.src[s.pos]) {
			s.pos++
			continue
		}

		switch s.readIdent() {
		case "import":
			// import ... from 'mod'  |  import 'mod'
			if mod := s.readImportSource(); mod != "" {
				imports = append(imports, mod)
			}
		case "require":
			s.skipSpace()
			if s.peek() != '(' {
				continue
			}
			s.pos++
			s.skipSpace()
			if mod := s.readStringLiteral(); mod != "" {
				imports = append(imports, mod)
			}
		}
	}

	return imports
}

// readImportSource consumes up to the end of the import statement's
// source string, stopping at a newline or semicolon that ends a bare
// import without one.
func (s *lexScanner) readImportSource() string {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\'' || ch == '"':
			return s.readStringLiteral()
		case ch == ';' || ch == '\n':
			return ""
		default:
			s.pos++
		}
	}
	return ""
}

// readStringLiteral consumes a quoted string at the cursor and returns
// its contents, or "" if the cursor is not at a quote.
func (s *lexScanner) readStringLiteral() string {
	if s.pos >= len(s.src) {
		return ""
	}
	quote := s.src[s.pos]
	if quote != '\'' && quote != '"' {
		return ""
	}
	start := s.pos + 1
	s.skipString(quote)
	end := s.pos - 1
	if end < start {
		return ""
	}
	return string(s.src[start:end])
}
