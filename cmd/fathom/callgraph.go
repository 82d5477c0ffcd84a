package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/quillco/fathom/internal/output"
	"github.com/quillco/fathom/internal/progress"
	"github.com/quillco/fathom/pkg/analyzer/callgraph"
	"github.com/quillco/fathom/pkg/extract"
	"github.com/quillco/fathom/pkg/parser"
)

func callgraphCmd() *cli.Command {
	return &cli.Command{
		Name:      "callgraph",
		Aliases:   []string{"cg"},
		Usage:     "Show the intra-file call graph of each file",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Include PageRank and degree metrics per function",
			},
		},
		Action: runCallgraphCmd,
	}
}

// fileGraph is one file's call graph in command output.
type fileGraph struct {
	Path     string              `json:"path" toon:"path"`
	Language parser.Language     `json:"language" toon:"language"`
	Callees  map[string][]string `json:"callees" toon:"callees"`
	Callers  map[string][]string `json:"callers" toon:"callers"`
	Metrics  *callgraph.Metrics  `json:"metrics,omitempty" toon:"metrics,omitempty"`
}

func runCallgraphCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(cfg, getPaths(c))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	includeMetrics := c.Bool("metrics")

	tracker := progress.NewTracker("Building call graphs...", len(files))
	var graphs []fileGraph
	for _, path := range files {
		tracker.Tick()

		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		lang := parser.DetectLanguage(path)
		records := extract.File(c.Context, lang, source)
		if len(records) == 0 {
			continue
		}
		known := extract.NewNameSet(records)
		graph := callgraph.Build(records, known)

		fg := fileGraph{
			Path:     path,
			Language: lang,
			Callees:  graph.Callees,
			Callers:  graph.Callers,
		}
		if includeMetrics {
			fg.Metrics = callgraph.CalculateMetrics(graph)
		}
		graphs = append(graphs, fg)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	data := struct {
		Files []fileGraph `json:"files" toon:"files"`
	}{graphs}

	if includeMetrics {
		var rows [][]string
		for _, fg := range graphs {
			for _, nm := range fg.Metrics.NodeMetrics {
				rows = append(rows, []string{
					fg.Path,
					nm.Name,
					fmt.Sprintf("%.4f", nm.PageRank),
					strconv.Itoa(nm.InDegree),
					strconv.Itoa(nm.OutDegree),
				})
			}
		}
		table := output.NewTable(
			"Call Graph Metrics",
			[]string{"File", "Function", "Pagerank", "In", "Out"},
			rows,
			nil,
			data,
		)
		return formatter.Output(table)
	}

	var rows [][]string
	for _, fg := range graphs {
		names := make([]string, 0, len(fg.Callees))
		for name := range fg.Callees {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			callees := fg.Callees[name]
			if len(callees) == 0 {
				continue
			}
			rows = append(rows, []string{
				fg.Path,
				name,
				truncate(strings.Join(callees, ", "), 80),
			})
		}
	}
	table := output.NewTable(
		"Call Graph",
		[]string{"File", "Function", "Calls"},
		rows,
		nil,
		data,
	)
	return formatter.Output(table)
}
