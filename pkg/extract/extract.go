// Package extract turns raw source text into per-file function records:
// each function's name, exact source span, and the set of identifiers it
// textually calls. Grammar-parsed languages go through tree-sitter;
// the JS/TS family goes through a lexical scanner. Extraction is scoped
// to a single file and never fails: malformed input yields zero records.
package extract

import (
	"context"
	"sort"

	"github.com/quillco/fathom/pkg/parser"
)

// FunctionRecord describes one extracted function within one file.
type FunctionRecord struct {
	Name      string        `json:"name" toon:"name"`
	Family    parser.Family `json:"family" toon:"family"`
	StartLine int           `json:"start_line" toon:"start_line"`
	EndLine   int           `json:"end_line" toon:"end_line"`
	Source    string        `json:"-" toon:"-"`

	// RawCallees holds identifiers textually referenced as call targets
	// inside the body, before resolution against known local names.
	RawCallees map[string]struct{} `json:"-" toon:"-"`

	// startByte orders same-line candidates during collision resolution.
	startByte int
}

// spanBytes returns the source length covered by the record.
func (r FunctionRecord) spanBytes() int {
	return len(r.Source)
}

// CalleeNames returns the raw callee set in sorted order.
func (r FunctionRecord) CalleeNames() []string {
	names := make([]string, 0, len(r.RawCallees))
	for name := range r.RawCallees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File extracts all functions from one file's source text. The result
// maps function name to record; within one file at most one record per
// name survives (see the collision policies below). Empty or unreadable
// source yields an empty map. Grammar parse failures also yield an empty
// map, never an error: a file the parser rejects simply has no functions.
func File(ctx context.Context, lang parser.Language, source []byte) map[string]FunctionRecord {
	if len(source) == 0 {
		return map[string]FunctionRecord{}
	}

	switch parser.FamilyOf(lang) {
	case parser.FamilyHeuristic:
		return heuristicFile(source)
	default:
		return grammarFile(ctx, lang, source)
	}
}

// preferOutermost is the collision policy for the grammar path: when two
// definitions share a name, keep the one covering more source (the
// outermost definition), breaking ties toward the earlier declaration.
// Expressed as a pure function so the kept record does not depend on
// tree traversal order.
func preferOutermost(existing, candidate FunctionRecord) FunctionRecord {
	if candidate.spanBytes() > existing.spanBytes() {
		return candidate
	}
	if candidate.spanBytes() == existing.spanBytes() && candidate.startByte < existing.startByte {
		return candidate
	}
	return existing
}

// preferLongest is the collision policy for the heuristic path: keep
// whichever candidate spans more source text, a proxy for "more complete
// definition". Ties keep the earlier match.
func preferLongest(existing, candidate FunctionRecord) FunctionRecord {
	if candidate.spanBytes() > existing.spanBytes() {
		return candidate
	}
	return existing
}

// NameSet is an immutable, ordered set of the function names extracted
// from one file. It is the explicit "known name" lookup handed to the
// call-graph builder.
type NameSet struct {
	names  []string
	member map[string]struct{}
}

// NewNameSet builds a NameSet from the keys of an extraction result.
func NewNameSet(records map[string]FunctionRecord) NameSet {
	names := make([]string, 0, len(records))
	member := make(map[string]struct{}, len(records))
	for name := range records {
		names = append(names, name)
		member[name] = struct{}{}
	}
	sort.Strings(names)
	return NameSet{names: names, member: member}
}

// Contains reports whether name was extracted in this file.
func (s NameSet) Contains(name string) bool {
	_, ok := s.member[name]
	return ok
}

// Names returns the member names in sorted order. Callers must not
// mutate the returned slice.
func (s NameSet) Names() []string {
	return s.names
}

// Len returns the number of known names.
func (s NameSet) Len() int {
	return len(s.names)
}
