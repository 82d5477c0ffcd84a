// Package deepdive generates per-group Markdown reports: each file is
// analyzed into related-function groups, and every group gets its own
// model-written deep dive under <out>/<file-stem>/group_N.md.
package deepdive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quillco/fathom/internal/cache"
	"github.com/quillco/fathom/internal/llm"
	"github.com/quillco/fathom/pkg/analyzer"
	"github.com/quillco/fathom/pkg/models"
	"github.com/quillco/fathom/pkg/parser"
)

// Options configures a deep-dive run.
type Options struct {
	Root          string
	OutDir        string
	Workers       int
	MaxFileSize   int64
	SnippetBudget int
	TargetWords   int
	Pause         time.Duration
	DryRun        bool
}

// Service runs the analysis-and-generate pipeline.
type Service struct {
	analyzer *analyzer.Analyzer
	client   llm.Completer
	cache    *cache.Cache
	opts     Options
}

// New creates a Service. client may be nil only for dry runs.
func New(client llm.Completer, reportCache *cache.Cache, opts Options) *Service {
	return &Service{
		analyzer: analyzer.New(analyzer.WithMaxFileSize(opts.MaxFileSize)),
		client:   client,
		cache:    reportCache,
		opts:     opts,
	}
}

// Result describes one file's outcome.
type Result struct {
	Path    string
	Reports []string
	Err     error
}

// Run analyzes each file and writes one Markdown report per group.
// Files run in parallel; per-file failures are reported in the results,
// never aborting the batch. Returned results follow the input file order.
func (s *Service) Run(ctx context.Context, files []string, onProgress analyzer.ProgressFunc) []Result {
	results := analyzer.MapFilesN(files, s.opts.Workers, func(path string) (Result, error) {
		return s.runFile(ctx, path), nil
	}, onProgress)

	byPath := make(map[string]Result, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}

	ordered := make([]Result, 0, len(files))
	for _, path := range files {
		if r, ok := byPath[path]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

// runFile generates all group reports for one file.
func (s *Service) runFile(ctx context.Context, path string) Result {
	result := Result{Path: path}

	analysis := s.analyzer.AnalyzeFile(ctx, path)
	if analysis.Functions == 0 {
		return result
	}

	baseDir := filepath.Join(s.opts.OutDir, fileStem(path))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		result.Err = fmt.Errorf("creating report dir: %w", err)
		return result
	}

	source, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("rereading source: %w", err)
		return result
	}
	sourceHash := cache.HashBytes(source)

	relPath := path
	if rel, err := filepath.Rel(s.opts.Root, path); err == nil {
		relPath = rel
	}

	for _, group := range analysis.Groups {
		mdPath := filepath.Join(baseDir, fmt.Sprintf("group_%d.md", group.Index))

		content, err := s.groupReport(ctx, relPath, analysis, group, sourceHash)
		if err != nil {
			// Write a stub so the failure is visible in the output tree.
			stub := fmt.Sprintf("# ERROR for %s group %d\n\n%v\n", filepath.Base(path), group.Index, err)
			if werr := os.WriteFile(mdPath, []byte(stub), 0644); werr != nil {
				result.Err = werr
				return result
			}
			result.Reports = append(result.Reports, mdPath)
			continue
		}

		if err := os.WriteFile(mdPath, []byte(content), 0644); err != nil {
			result.Err = err
			return result
		}
		result.Reports = append(result.Reports, mdPath)
	}

	return result
}

// groupReport produces the Markdown content for one group, from the dry-run
// stub, the cache, or a fresh completion, in that order.
func (s *Service) groupReport(ctx context.Context, relPath string, analysis models.FileAnalysis, group models.Group, sourceHash string) (string, error) {
	if s.opts.DryRun {
		names := group.Names()
		sort.Strings(names)
		return fmt.Sprintf("# DRY RUN: %s / group %d\n\nFunctions: %s\n",
			filepath.Base(relPath), group.Index, strings.Join(names, ", ")), nil
	}

	key := cache.ReportKey(analysis.Path, group.Index, s.client.Model())
	if cached, ok := s.cache.Get(key, sourceHash); ok {
		return string(cached), nil
	}

	sysPrompt, userPrompt := buildPrompt(relPath, analysis.Language, analysis.Imports, group, s.opts.TargetWords, s.opts.SnippetBudget)

	content, err := s.client.Complete(ctx, sysPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	// Cache write failures are not fatal; the report is already in hand.
	_ = s.cache.Set(key, sourceHash, []byte(content))

	if s.opts.Pause > 0 {
		// Throttle between calls so parallel workers do not trip the
		// provider rate limits.
		select {
		case <-ctx.Done():
		case <-time.After(s.opts.Pause):
		}
	}

	return content, nil
}

// fileStem returns the base name without its extension, matching the
// report directory naming.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SupportedLanguage reports whether deep dives are generated for a path.
func SupportedLanguage(path string) bool {
	return parser.DetectLanguage(path) != parser.LangUnknown
}
