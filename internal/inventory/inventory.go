// Package inventory builds per-repository summary reports: symbol counts
// per file, dependency manifests, and a CSV index across repositories.
package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/quillco/fathom/internal/manifest"
	"github.com/quillco/fathom/pkg/analyzer"
	"github.com/quillco/fathom/pkg/models"
)

// FileSummary is one file's row in the inventory.
type FileSummary struct {
	Path      string   `json:"path" toon:"path"`
	Lines     int      `json:"lines" toon:"lines"`
	Functions []string `json:"functions" toon:"functions"`
	Imports   []string `json:"imports,omitempty" toon:"imports,omitempty"`
}

// Inventory is the full summary for one repository.
type Inventory struct {
	Name          string              `json:"name" toon:"name"`
	Root          string              `json:"root" toon:"root"`
	Remote        string              `json:"remote,omitempty" toon:"remote,omitempty"`
	DefaultBranch string              `json:"default_branch,omitempty" toon:"default_branch,omitempty"`
	TotalFiles    int                 `json:"total_files" toon:"total_files"`
	TotalLines    int                 `json:"total_lines" toon:"total_lines"`
	TotalFuncs    int                 `json:"total_functions" toon:"total_functions"`
	TotalGroups   int                 `json:"total_groups" toon:"total_groups"`
	Files         []FileSummary       `json:"files" toon:"files"`
	Manifests     []manifest.Manifest `json:"manifests" toon:"manifests"`
}

// Builder assembles inventories.
type Builder struct {
	analyzer *analyzer.Analyzer
}

// NewBuilder creates a Builder.
func NewBuilder(maxFileSize int64, workers int) *Builder {
	return &Builder{
		analyzer: analyzer.New(
			analyzer.WithMaxFileSize(maxFileSize),
			analyzer.WithWorkers(workers),
		),
	}
}

// Build analyzes the given files and assembles the repository inventory.
func (b *Builder) Build(ctx context.Context, root string, files []string, onProgress analyzer.ProgressFunc) *Inventory {
	project := b.analyzer.AnalyzeProject(ctx, files, onProgress)

	inv := &Inventory{
		Name:        filepath.Base(root),
		Root:        root,
		TotalFiles:  project.Summary.TotalFiles,
		TotalFuncs:  project.Summary.TotalFunctions,
		TotalGroups: project.Summary.TotalGroups,
		Manifests:   manifest.Sniff(root),
	}
	inv.Remote, inv.DefaultBranch = gitFacts(root)

	for _, fa := range project.Files {
		summary := FileSummary{
			Path:      relTo(root, fa.Path),
			Lines:     countLines(fa.Path),
			Functions: functionNames(fa),
			Imports:   fa.Imports,
		}
		inv.TotalLines += summary.Lines
		inv.Files = append(inv.Files, summary)
	}

	sort.Slice(inv.Files, func(i, j int) bool {
		return inv.Files[i].Path < inv.Files[j].Path
	})

	return inv
}

// gitFacts returns the origin remote URL and the current branch name,
// both best-effort.
func gitFacts(root string) (remote, branch string) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", ""
	}

	if origin, err := repo.Remote("origin"); err == nil {
		if urls := origin.Config().URLs; len(urls) > 0 {
			remote = urls[0]
		}
	}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	return remote, branch
}

// WriteReport writes the inventory as Markdown to <outdir>/<name>.md.
func (inv *Inventory) WriteReport(outdir string) (string, error) {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", inv.Name)
	fmt.Fprintf(&b, "- **Path:** `%s`\n", inv.Root)
	if inv.Remote != "" {
		fmt.Fprintf(&b, "- **Remote:** `%s`\n", inv.Remote)
	}
	if inv.DefaultBranch != "" {
		fmt.Fprintf(&b, "- **Branch:** `%s`\n", inv.DefaultBranch)
	}

	b.WriteString("\n## Summary\n")
	fmt.Fprintf(&b, "- Files analyzed: **%d**\n", inv.TotalFiles)
	fmt.Fprintf(&b, "- Total LOC (approx): **%d**\n", inv.TotalLines)
	fmt.Fprintf(&b, "- Functions found: **%d**\n", inv.TotalFuncs)
	fmt.Fprintf(&b, "- Function groups: **%d**\n", inv.TotalGroups)

	b.WriteString("\n## Dependency manifests\n")
	if len(inv.Manifests) == 0 {
		b.WriteString("_none found_\n")
	}
	for _, m := range inv.Manifests {
		fmt.Fprintf(&b, "- `%s` (xxh64 %s)\n", m.Name, m.Fingerprint)
	}

	b.WriteString("\n## Files\n")
	for _, f := range inv.Files {
		fmt.Fprintf(&b, "### `%s`\n", f.Path)
		fmt.Fprintf(&b, "- ~%d lines\n", f.Lines)
		if len(f.Functions) > 0 {
			fmt.Fprintf(&b, "- Functions: %s\n", symbolList(f.Functions, 20))
		}
		if len(f.Imports) > 0 {
			fmt.Fprintf(&b, "- Imports: %s\n", symbolList(f.Imports, 20))
		}
		b.WriteString("\n")
	}

	if len(inv.Manifests) > 0 {
		b.WriteString("## Manifest Contents (truncated)\n")
		for _, m := range inv.Manifests {
			fmt.Fprintf(&b, "### `%s`\n```\n%s\n```\n", m.Name, truncate(m.Content, 4000))
		}
	}

	path := filepath.Join(outdir, inv.Name+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteIndex appends one CSV row per inventory to <outdir>/index.csv.
func WriteIndex(outdir string, inventories []*Inventory, reportPaths []string) (string, error) {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outdir, "index.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "root", "remote", "default_branch", "files", "lines", "functions", "groups", "report"}); err != nil {
		return "", err
	}

	for i, inv := range inventories {
		report := ""
		if i < len(reportPaths) {
			report = reportPaths[i]
		}
		row := []string{
			inv.Name,
			inv.Root,
			inv.Remote,
			inv.DefaultBranch,
			strconv.Itoa(inv.TotalFiles),
			strconv.Itoa(inv.TotalLines),
			strconv.Itoa(inv.TotalFuncs),
			strconv.Itoa(inv.TotalGroups),
			report,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func functionNames(fa models.FileAnalysis) []string {
	var names []string
	for _, g := range fa.Groups {
		names = append(names, g.Names()...)
	}
	sort.Strings(names)
	return names
}

func countLines(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return strings.Count(string(data), "\n") + 1
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

func symbolList(symbols []string, maxShow int) string {
	if len(symbols) <= maxShow {
		return strings.Join(symbols, ", ")
	}
	shown := strings.Join(symbols[:maxShow], ", ")
	return fmt.Sprintf("%s ...(+%d)", shown, len(symbols)-maxShow)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
