package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/quillco/fathom/internal/output"
	"github.com/quillco/fathom/internal/progress"
	"github.com/quillco/fathom/pkg/analyzer"
)

func groupsCmd() *cli.Command {
	return &cli.Command{
		Name:      "groups",
		Aliases:   []string{"g"},
		Usage:     "Partition each file's functions into related groups",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show-calls",
				Usage: "Include per-member call relationships in text output",
			},
		},
		Action: runGroupsCmd,
	}
}

func runGroupsCmd(c *cli.Context) error {
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

	a := analyzer.New(
		analyzer.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		analyzer.WithWorkers(cfg.Analysis.Workers),
	)

	tracker := progress.NewTracker("Analyzing files...", len(files))
	project := a.AnalyzeProject(c.Context, files, tracker.Tick)
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	showCalls := c.Bool("show-calls")

	var rows [][]string
	for _, fa := range project.Files {
		for _, group := range fa.Groups {
			members := make([]string, len(group.Members))
			for i, m := range group.Members {
				if showCalls && len(m.Calls) > 0 {
					members[i] = fmt.Sprintf("%s -> (%s)", m.Name, strings.Join(m.Calls, ", "))
				} else {
					members[i] = m.Name
				}
			}
			rows = append(rows, []string{
				fa.Path,
				strconv.Itoa(group.Index),
				strconv.Itoa(len(group.Members)),
				truncate(strings.Join(members, ", "), 100),
			})
		}
	}

	footer := []string{
		fmt.Sprintf("%d files", project.Summary.TotalFiles),
		"",
		fmt.Sprintf("%d groups", project.Summary.TotalGroups),
		fmt.Sprintf("%d functions", project.Summary.TotalFunctions),
	}

	table := output.NewTable(
		"Function Groups",
		[]string{"File", "Group", "Size", "Members"},
		rows,
		footer,
		project,
	)

	return formatter.Output(table)
}
