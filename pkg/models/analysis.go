// Package models defines the result structures shared between the
// analyzers, the output formatters, and report generation.
package models

import "github.com/quillco/fathom/pkg/parser"

// Member is one function inside a group: its record plus the resolved
// call relationships restricted to that group.
type Member struct {
	Name      string        `json:"name" toon:"name"`
	Family    parser.Family `json:"family" toon:"family"`
	StartLine int           `json:"start_line" toon:"start_line"`
	EndLine   int           `json:"end_line" toon:"end_line"`
	Source    string        `json:"-" toon:"-"`

	// Calls and CalledBy list group-internal relationships only;
	// edges leaving the group do not exist by construction.
	Calls    []string `json:"calls" toon:"calls"`
	CalledBy []string `json:"called_by" toon:"called_by"`
}

// Group is one connected component of a file's call graph, in the
// deterministic order report numbering depends on.
type Group struct {
	Index   int      `json:"index" toon:"index"`
	Members []Member `json:"members" toon:"members"`
}

// Names returns the member names in order.
func (g Group) Names() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}

// FileAnalysis is the complete per-file result: the ordered group
// partition plus file-level context for report generation.
type FileAnalysis struct {
	Path      string          `json:"path" toon:"path"`
	Language  parser.Language `json:"language" toon:"language"`
	Family    parser.Family   `json:"family" toon:"family"`
	Functions int             `json:"functions" toon:"functions"`
	Edges     int             `json:"edges" toon:"edges"`
	Imports   []string        `json:"imports,omitempty" toon:"imports,omitempty"`
	Groups    []Group         `json:"groups" toon:"groups"`
}

// ProjectAnalysis aggregates per-file results.
type ProjectAnalysis struct {
	Files   []FileAnalysis `json:"files" toon:"files"`
	Summary ProjectSummary `json:"summary" toon:"summary"`
}

// ProjectSummary holds aggregate counts.
type ProjectSummary struct {
	TotalFiles     int `json:"total_files" toon:"total_files"`
	TotalFunctions int `json:"total_functions" toon:"total_functions"`
	TotalEdges     int `json:"total_edges" toon:"total_edges"`
	TotalGroups    int `json:"total_groups" toon:"total_groups"`
}
