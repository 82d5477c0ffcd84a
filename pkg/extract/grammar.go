package extract

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/quillco/fathom/pkg/parser"
)

// functionNodeTypes lists the tree-sitter node types that define a named
// function in each grammar-parsed language. Async variants parse to the
// same node types (tree-sitter keeps the async keyword as a child).
func functionNodeTypes(lang parser.Language) map[string]struct{} {
	switch lang {
	case parser.LangPython:
		return map[string]struct{}{"function_definition": {}}
	case parser.LangGo:
		return map[string]struct{}{
			"function_declaration": {},
			"method_declaration":   {},
		}
	case parser.LangRuby:
		return map[string]struct{}{
			"method":           {},
			"singleton_method": {},
		}
	default:
		return nil
	}
}

// callNodeTypes lists node types for call expressions per language.
func callNodeTypes(lang parser.Language) map[string]struct{} {
	switch lang {
	case parser.LangPython, parser.LangRuby:
		return map[string]struct{}{"call": {}}
	case parser.LangGo:
		return map[string]struct{}{"call_expression": {}}
	default:
		return nil
	}
}

// grammarFile extracts functions from a grammar-parsed language by
// walking the full syntax tree, nested definitions included. A parse
// failure yields an empty map.
func grammarFile(ctx context.Context, lang parser.Language, source []byte) map[string]FunctionRecord {
	p := parser.New()
	defer p.Close()

	result, err := p.Parse(ctx, source, lang)
	if err != nil || result.Tree == nil {
		return map[string]FunctionRecord{}
	}

	funcTypes := functionNodeTypes(lang)
	callTypes := callNodeTypes(lang)

	records := make(map[string]FunctionRecord)

	parser.Walk(result.Tree.RootNode(), source, func(node *sitter.Node, src []byte) bool {
		if _, ok := funcTypes[node.Type()]; !ok {
			return true
		}

		name := functionName(node, src, lang)
		if name == "" {
			return true
		}

		record := FunctionRecord{
			Name:       name,
			Family:     parser.FamilyGrammar,
			StartLine:  int(node.StartPoint().Row) + 1,
			EndLine:    int(node.EndPoint().Row) + 1,
			Source:     nodeSpanText(node, src),
			RawCallees: harvestCalls(node, src, lang, callTypes),
			startByte:  int(node.StartByte()),
		}

		if existing, ok := records[name]; ok {
			records[name] = preferOutermost(existing, record)
		} else {
			records[name] = record
		}

		// Keep walking: nested definitions get their own records.
		return true
	})

	return records
}

// functionName extracts the declared name of a function-defining node.
func functionName(node *sitter.Node, source []byte, lang parser.Language) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.NodeText(nameNode, source)
	}
	if lang == parser.LangRuby && node.Type() == "singleton_method" {
		// def self.foo parses the name into a method field on some
		// grammar versions; fall back to scanning children.
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			if child.Type() == "identifier" {
				return parser.NodeText(child, source)
			}
		}
	}
	return ""
}

// nodeSpanText returns the exact source text covered by a node, falling
// back to a line slice when the byte offsets are out of bounds.
func nodeSpanText(node *sitter.Node, source []byte) string {
	if text := parser.NodeText(node, source); text != "" {
		return text
	}

	lines := strings.Split(string(source), "\n")
	start := int(node.StartPoint().Row)
	end := int(node.EndPoint().Row) + 1
	if start < 0 || start >= len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// harvestCalls collects raw callee names from every call expression in a
// function's subtree. A bare-name call contributes that name; a member or
// attribute call contributes only the trailing attribute name. Receivers
// are never resolved: obj.process() and process() share a callee identity,
// and the grouping semantics depend on that.
func harvestCalls(fn *sitter.Node, source []byte, lang parser.Language, callTypes map[string]struct{}) map[string]struct{} {
	callees := make(map[string]struct{})

	parser.Walk(fn, source, func(node *sitter.Node, src []byte) bool {
		if _, ok := callTypes[node.Type()]; !ok {
			return true
		}
		if name := calleeName(node, src, lang); name != "" {
			callees[name] = struct{}{}
		}
		return true
	})

	return callees
}

// calleeName resolves the textual callee identifier of one call node.
func calleeName(call *sitter.Node, source []byte, lang parser.Language) string {
	switch lang {
	case parser.LangPython:
		fn := call.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return parser.NodeText(fn, source)
		case "attribute":
			return parser.NodeText(fn.ChildByFieldName("attribute"), source)
		}

	case parser.LangGo:
		fn := call.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		switch fn.Type() {
		case "identifier":
			return parser.NodeText(fn, source)
		case "selector_expression":
			return parser.NodeText(fn.ChildByFieldName("field"), source)
		}

	case parser.LangRuby:
		// Ruby's call node covers both bare and receiver calls; the
		// method field is the trailing name either way.
		return parser.NodeText(call.ChildByFieldName("method"), source)
	}

	return ""
}
