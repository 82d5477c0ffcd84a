package main

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/quillco/fathom/internal/inventory"
	"github.com/quillco/fathom/internal/progress"
)

func inventoryCmd() *cli.Command {
	return &cli.Command{
		Name:      "inventory",
		Aliases:   []string{"inv"},
		Usage:     "Summarize repositories: symbols per file, manifests, CSV index",
		ArgsUsage: "[repo-root...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Value: "./repo_reports",
				Usage: "Output directory for reports and the index",
			},
		},
		Action: runInventoryCmd,
	}
}

func runInventoryCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	outDir := c.String("out")
	builder := inventory.NewBuilder(cfg.Analysis.MaxFileSize, cfg.Analysis.Workers)

	var inventories []*inventory.Inventory
	var reportPaths []string

	for _, arg := range getPaths(c) {
		root, err := filepath.Abs(arg)
		if err != nil {
			color.Red("[error] %s: %v", arg, err)
			continue
		}

		files, err := collectFiles(cfg, []string{root})
		if err != nil {
			color.Red("[error] %s: %v", root, err)
			continue
		}

		tracker := progress.NewTracker("Inventorying "+root, len(files))
		inv := builder.Build(c.Context, root, files, tracker.Tick)
		tracker.FinishSuccess()

		report, err := inv.WriteReport(outDir)
		if err != nil {
			color.Red("[error] %s: %v", root, err)
			continue
		}

		inventories = append(inventories, inv)
		reportPaths = append(reportPaths, report)
		color.Green("[report] %s -> %s", inv.Name, report)
	}

	if len(inventories) == 0 {
		color.Yellow("No repositories inventoried")
		return nil
	}

	indexPath, err := inventory.WriteIndex(outDir, inventories, reportPaths)
	if err != nil {
		return err
	}

	color.Green("Done. Index: %s", indexPath)
	return nil
}
