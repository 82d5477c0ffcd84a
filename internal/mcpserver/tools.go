package mcpserver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/quillco/fathom/pkg/analyzer"
	"github.com/quillco/fathom/pkg/analyzer/callgraph"
	"github.com/quillco/fathom/pkg/config"
	"github.com/quillco/fathom/pkg/extract"
	"github.com/quillco/fathom/pkg/parser"
	"github.com/quillco/fathom/pkg/scanner"
)

// AnalyzeInput is the base input for the analysis tools.
type AnalyzeInput struct {
	Paths []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
}

// CallgraphInput adds call-graph options.
type CallgraphInput struct {
	AnalyzeInput
	IncludeMetrics bool `json:"include_metrics,omitempty" jsonschema:"Include PageRank and degree metrics per function."`
}

// fileCallgraph is one file's call graph in tool output.
type fileCallgraph struct {
	Path     string              `json:"path" toon:"path"`
	Language parser.Language     `json:"language" toon:"language"`
	Callees  map[string][]string `json:"callees" toon:"callees"`
	Callers  map[string][]string `json:"callers" toon:"callers"`
	Metrics  *callgraph.Metrics  `json:"metrics,omitempty" toon:"metrics,omitempty"`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

// scanPaths expands files and directories into the analyzable file list.
func scanPaths(paths []string) ([]string, error) {
	cfg := config.LoadOrDefault()
	sc := scanner.NewScanner(cfg)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := sc.ScanDir(path)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		if ok, _ := sc.ScanFile(path); ok {
			files = append(files, path)
		}
	}
	return files, nil
}

func toolResult(data any) (*mcp.CallToolResult, any, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(out)},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleAnalyzeGroups(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	files, err := scanPaths(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	a := analyzer.New()
	project := a.AnalyzeProject(ctx, files, nil)

	return toolResult(project)
}

func handleAnalyzeCallgraph(ctx context.Context, req *mcp.CallToolRequest, input CallgraphInput) (*mcp.CallToolResult, any, error) {
	files, err := scanPaths(getPaths(input.AnalyzeInput))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	var graphs []fileCallgraph
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		lang := parser.DetectLanguage(path)
		records := extract.File(ctx, lang, source)
		if len(records) == 0 {
			continue
		}
		known := extract.NewNameSet(records)
		graph := callgraph.Build(records, known)

		fg := fileCallgraph{
			Path:     filepath.ToSlash(path),
			Language: lang,
			Callees:  graph.Callees,
			Callers:  graph.Callers,
		}
		if input.IncludeMetrics {
			fg.Metrics = callgraph.CalculateMetrics(graph)
		}
		graphs = append(graphs, fg)
	}

	out := struct {
		Files []fileCallgraph `json:"files" toon:"files"`
	}{graphs}
	return toolResult(out)
}
