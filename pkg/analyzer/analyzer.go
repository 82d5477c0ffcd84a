// Package analyzer orchestrates per-file analysis: extract the functions,
// resolve the intra-file call graph, and partition the functions into
// groups. Files are independent units; a failure in one never aborts the
// batch.
package analyzer

import (
	"context"
	"os"

	"github.com/quillco/fathom/pkg/analyzer/callgraph"
	"github.com/quillco/fathom/pkg/extract"
	"github.com/quillco/fathom/pkg/models"
	"github.com/quillco/fathom/pkg/parser"
)

// Analyzer runs the extraction and grouping pipeline.
type Analyzer struct {
	maxFileSize int64
	workers     int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize caps the size of files read from disk; larger files are
// treated as unreadable (zero functions). Zero means no cap.
func WithMaxFileSize(limit int64) Option {
	return func(a *Analyzer) { a.maxFileSize = limit }
}

// WithWorkers sets the worker count for project analysis. Zero or
// negative means the default (2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeSource runs the full per-file pipeline on in-memory source:
// extraction, call resolution against the file's own names, grouping, and
// the group-restricted call annotations. Pure with respect to its inputs.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, lang parser.Language, source []byte) models.FileAnalysis {
	records := extract.File(ctx, lang, source)
	known := extract.NewNameSet(records)
	graph := callgraph.Build(records, known)
	components := callgraph.Components(known, graph)

	analysis := models.FileAnalysis{
		Path:      path,
		Language:  lang,
		Family:    parser.FamilyOf(lang),
		Functions: known.Len(),
		Edges:     graph.EdgeCount(),
		Imports:   extract.Imports(ctx, lang, source),
		Groups:    make([]models.Group, 0, len(components)),
	}

	for i, component := range components {
		group := models.Group{
			Index:   i + 1,
			Members: make([]models.Member, 0, component.Size()),
		}
		inGroup := make(map[string]struct{}, component.Size())
		for _, name := range component.Members {
			inGroup[name] = struct{}{}
		}

		for _, name := range component.Members {
			record := records[name]
			group.Members = append(group.Members, models.Member{
				Name:      name,
				Family:    record.Family,
				StartLine: record.StartLine,
				EndLine:   record.EndLine,
				Source:    record.Source,
				Calls:     restrict(graph.Callees[name], inGroup),
				CalledBy:  restrict(graph.Callers[name], inGroup),
			})
		}
		analysis.Groups = append(analysis.Groups, group)
	}

	return analysis
}

// AnalyzeFile reads one file from disk and analyzes it. An unreadable or
// oversized file yields a zero-function analysis, not an error.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) models.FileAnalysis {
	lang := parser.DetectLanguage(path)

	if a.maxFileSize > 0 {
		if info, err := os.Stat(path); err != nil || info.Size() > a.maxFileSize {
			return a.AnalyzeSource(ctx, path, lang, nil)
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		source = nil
	}

	return a.AnalyzeSource(ctx, path, lang, source)
}

// AnalyzeProject analyzes files in parallel and aggregates the results.
// Output order follows the input file order regardless of which worker
// finished first.
func (a *Analyzer) AnalyzeProject(ctx context.Context, files []string, onProgress ProgressFunc) models.ProjectAnalysis {
	results := MapFilesN(files, a.workers, func(path string) (models.FileAnalysis, error) {
		return a.AnalyzeFile(ctx, path), nil
	}, onProgress)

	byPath := make(map[string]models.FileAnalysis, len(results))
	for _, fa := range results {
		byPath[fa.Path] = fa
	}

	project := models.ProjectAnalysis{
		Files: make([]models.FileAnalysis, 0, len(files)),
	}
	for _, path := range files {
		fa, ok := byPath[path]
		if !ok {
			continue
		}
		project.Files = append(project.Files, fa)
		project.Summary.TotalFiles++
		project.Summary.TotalFunctions += fa.Functions
		project.Summary.TotalEdges += fa.Edges
		project.Summary.TotalGroups += len(fa.Groups)
	}

	return project
}

// restrict filters a sorted adjacency slice to names inside the group,
// copying out of the shared graph. Edges never cross groups by
// construction.
func restrict(names []string, inGroup map[string]struct{}) []string {
	var kept []string
	for _, name := range names {
		if _, ok := inGroup[name]; ok {
			kept = append(kept, name)
		}
	}
	return kept
}
