package extract

import (
	"github.com/quillco/fathom/pkg/parser"
)

// The heuristic path trades correctness for coverage: lexical patterns
// plus bracket balancing approximate function boundaries for JS/TS
// source. False positives (non-function brace blocks) and false
// negatives (functions no pattern matches) are accepted, not bugs to fix
// by guessing language semantics.

// headerDenylist holds keywords that can never name a function. The
// generic "ident(params) {" pattern would otherwise match control-flow
// statements.
var headerDenylist = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
	"do": {}, "else": {}, "return": {}, "function": {},
}

// callDenylist holds keyword tokens that syntactically resemble calls
// and are excluded during callee harvesting.
var callDenylist = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {},
	"return": {}, "function": {},
}

// lexScanner walks source bytes once, tracking whether the cursor sits
// in code, a string, or a comment. It is the explicit state machine
// behind the heuristic extractor and its call harvester.
type lexScanner struct {
	src []byte
	pos int
}

// skipNonCode advances past strings and comments starting at the cursor.
// Returns true if anything was consumed.
func (s *lexScanner) skipNonCode() bool {
	if s.pos >= len(s.src) {
		return false
	}
	switch ch := s.src[s.pos]; {
	case ch == '\'' || ch == '"' || ch == '`':
		s.skipString(ch)
		return true
	case ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
		s.skipLineComment()
		return true
	case ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
		s.skipBlockComment()
		return true
	}
	return false
}

func (s *lexScanner) skipString(quote byte) {
	s.pos++ // opening quote
	escaped := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.pos++
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == quote:
			return
		}
	}
}

func (s *lexScanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *lexScanner) skipBlockComment() {
	s.pos += 2
	for s.pos+1 < len(s.src) {
		if s.src[s.pos] == '*' && s.src[s.pos+1] == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.src)
}

func (s *lexScanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// readIdent consumes an identifier at the cursor, returning "" if the
// cursor is not at an identifier start.
func (s *lexScanner) readIdent() string {
	if s.pos >= len(s.src) || !isIdentStart(s.src[s.pos]) {
		return ""
	}
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *lexScanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// heuristicFile extracts functions from JS/TS-family source. Patterns are
// tried in fixed priority at each identifier boundary:
//
//	(a) function name(...) {        (async prefix allowed)
//	(b) const|let|var name = (...) => {
//	(c) const|let|var name = function (...) {
//	(d) name(params) {              (method pattern, denylist-filtered)
//
// Each match's span runs from the pattern start to the brace matched by
// MatchBracket. Name collisions keep the longest span.
func heuristicFile(source []byte) map[string]FunctionRecord {
	records := make(map[string]FunctionRecord)
	s := &lexScanner{src: source}

	for s.pos < len(s.src) {
		if s.skipNonCode() {
			continue
		}
		if !isIdentStart(s.src[s.pos]) {
			s.pos++
			continue
		}

		start := s.pos
		ident := s.readIdent()

		var candidate *FunctionRecord
		switch ident {
		case "async":
			candidate = s.matchAsyncFunction(start)
		case "function":
			candidate = s.matchFunctionDecl(start)
		case "const", "let", "var":
			candidate = s.matchBoundFunction(start)
		default:
			candidate = s.matchMethodPattern(start, ident)
		}

		if candidate == nil {
			continue
		}
		if existing, ok := records[candidate.Name]; ok {
			records[candidate.Name] = preferLongest(existing, *candidate)
		} else {
			records[candidate.Name] = *candidate
		}
	}

	return records
}

// matchAsyncFunction handles "async function name(...)". The cursor is
// just past "async"; on failure it stays there so the identifier after
// async is still scanned.
func (s *lexScanner) matchAsyncFunction(start int) *FunctionRecord {
	resume := s.pos
	s.skipSpace()
	if s.readIdent() != "function" {
		s.pos = resume
		return nil
	}
	if rec := s.matchFunctionDecl(start); rec != nil {
		return rec
	}
	s.pos = resume
	return nil
}

// matchFunctionDecl handles "function name(...) { ... }". The cursor is
// just past the function keyword.
func (s *lexScanner) matchFunctionDecl(start int) *FunctionRecord {
	resume := s.pos
	s.skipSpace()
	if s.peek() == '*' { // generator
		s.pos++
		s.skipSpace()
	}
	name := s.readIdent()
	if name == "" {
		s.pos = resume
		return nil
	}
	s.skipSpace()
	closeParen := s.matchParamList()
	if closeParen == NotFound {
		s.pos = resume
		return nil
	}
	// The first brace after the parameter list opens the body. A TS
	// return annotation between them is tolerated; annotations that
	// themselves contain braces are an accepted miss.
	if rec := s.capture(start, name, indexByteFrom(s.src, closeParen+1, '{')); rec != nil {
		return rec
	}
	s.pos = resume
	return nil
}

// matchBoundFunction handles a variable bound to an arrow or anonymous
// function expression. The cursor is just past const/let/var.
func (s *lexScanner) matchBoundFunction(start int) *FunctionRecord {
	resume := s.pos
	s.skipSpace()
	name := s.readIdent()
	if name == "" {
		s.pos = resume
		return nil
	}
	s.skipSpace()
	if s.peek() != '=' || (s.pos+1 < len(s.src) && s.src[s.pos+1] == '=') {
		s.pos = resume
		return nil
	}
	s.pos++ // '='
	s.skipSpace()

	mark := s.pos
	if s.readIdent() == "async" {
		s.skipSpace()
	} else {
		s.pos = mark
	}

	// const name = function (...) { ... }
	mark = s.pos
	if s.readIdent() == "function" {
		s.skipSpace()
		if s.peek() == '*' {
			s.pos++
			s.skipSpace()
		}
		closeParen := s.matchParamList()
		if closeParen != NotFound {
			if rec := s.capture(start, name, indexByteFrom(s.src, closeParen+1, '{')); rec != nil {
				return rec
			}
		}
		s.pos = resume
		return nil
	}
	s.pos = mark

	// const name = (...) => { ... }
	closeParen := s.matchParamList()
	if closeParen == NotFound {
		s.pos = resume
		return nil
	}
	s.pos = closeParen + 1
	s.skipSpace()
	if s.pos+1 >= len(s.src) || s.src[s.pos] != '=' || s.src[s.pos+1] != '>' {
		s.pos = resume
		return nil
	}
	s.pos += 2
	s.skipSpace()
	// Only block-bodied arrows have a brace span to capture;
	// expression-bodied arrows are an accepted miss.
	if s.peek() != '{' {
		s.pos = resume
		return nil
	}
	if rec := s.capture(start, name, s.pos); rec != nil {
		return rec
	}
	s.pos = resume
	return nil
}

// matchMethodPattern handles "ident(params) {", the pattern that also
// matches object and class methods. The cursor is just past ident.
func (s *lexScanner) matchMethodPattern(start int, name string) *FunctionRecord {
	if _, denied := headerDenylist[name]; denied {
		return nil
	}
	resume := s.pos
	s.skipSpace()
	closeParen := s.matchParamList()
	if closeParen == NotFound {
		s.pos = resume
		return nil
	}
	after := closeParen + 1
	for after < len(s.src) && isSpace(s.src[after]) {
		after++
	}
	if after >= len(s.src) || s.src[after] != '{' {
		s.pos = resume
		return nil
	}
	if rec := s.capture(start, name, after); rec != nil {
		return rec
	}
	s.pos = resume
	return nil
}

// matchParamList matches a parenthesized parameter list at the cursor,
// returning the index of the closing paren, or NotFound without moving
// the cursor.
func (s *lexScanner) matchParamList() int {
	if s.peek() != '(' {
		return NotFound
	}
	return MatchBracket(s.src, s.pos)
}

// capture matches the body brace at index brace and builds the record.
// An unterminated body skips the candidate. On success the cursor lands
// just inside the body so nested definitions still scan.
func (s *lexScanner) capture(start int, name string, brace int) *FunctionRecord {
	if brace == NotFound {
		return nil
	}
	end := MatchBracket(s.src, brace)
	if end == NotFound {
		return nil
	}

	body := s.src[brace : end+1]
	record := &FunctionRecord{
		Name:       name,
		Family:     parser.FamilyHeuristic,
		StartLine:  lineAt(s.src, start),
		EndLine:    lineAt(s.src, end),
		Source:     string(s.src[start : end+1]),
		RawCallees: harvestLexicalCalls(body),
		startByte:  start,
	}

	s.pos = brace + 1
	return record
}

func indexByteFrom(src []byte, from int, ch byte) int {
	for i := from; i < len(src); i++ {
		if src[i] == ch {
			return i
		}
	}
	return NotFound
}

// harvestLexicalCalls scans a function body for "identifier(" candidate
// call sites, skipping strings and comments and excluding keyword tokens
// that merely resemble calls.
func harvestLexicalCalls(body []byte) map[string]struct{} {
	callees := make(map[string]struct{})
	s := &lexScanner{src: body}

	for s.pos < len(s.src) {
		if s.skipNonCode() {
			continue
		}
		if !isIdentStart(s.src[s.pos]) {
			s.pos++
			continue
		}
		ident := s.readIdent()
		s.skipSpace()
		if s.peek() != '(' {
			continue
		}
		if _, denied := callDenylist[ident]; denied {
			continue
		}
		callees[ident] = struct{}{}
	}

	return callees
}
