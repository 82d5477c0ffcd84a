package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/quillco/fathom/internal/cache"
	"github.com/quillco/fathom/internal/deepdive"
	"github.com/quillco/fathom/internal/llm"
	"github.com/quillco/fathom/internal/progress"
)

func deepdiveCmd() *cli.Command {
	return &cli.Command{
		Name:      "deepdive",
		Aliases:   []string{"dd"},
		Usage:     "Generate per-group Markdown deep-dive reports via OpenAI",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Value: "./deep_reports",
				Usage: "Output directory for per-file group reports",
			},
			&cli.StringFlag{
				Name:    "model",
				Usage:   "OpenAI model name (default from config or OPENAI_MODEL)",
				EnvVars: []string{"OPENAI_MODEL"},
			},
			&cli.IntFlag{
				Name:  "max-workers",
				Usage: "Max concurrent OpenAI calls (default from config)",
			},
			&cli.IntFlag{
				Name:  "max-snippet-chars",
				Usage: "Max chars of code to embed per group (default from config)",
			},
			&cli.IntFlag{
				Name:  "group-word-target",
				Usage: "Target words per group report (default from config)",
			},
			&cli.Float64Flag{
				Name:  "rate-limit-sleep",
				Value: -1,
				Usage: "Seconds to sleep between API calls (default from config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse and group only; write stub reports without calling OpenAI",
			},
		},
		Action: runDeepdiveCmd,
	}
}

func runDeepdiveCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	paths := getPaths(c)
	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	dryRun := c.Bool("dry-run")

	model := cfg.ResolveModel()
	if m := c.String("model"); m != "" {
		model = m
	}
	workers := cfg.Generate.Workers
	if c.IsSet("max-workers") {
		workers = c.Int("max-workers")
	}
	snippetBudget := cfg.Generate.SnippetBudget
	if c.IsSet("max-snippet-chars") {
		snippetBudget = c.Int("max-snippet-chars")
	}
	targetWords := cfg.Generate.TargetWords
	if c.IsSet("group-word-target") {
		targetWords = c.Int("group-word-target")
	}
	pause := time.Duration(cfg.Generate.PauseSeconds) * time.Second
	if sleep := c.Float64("rate-limit-sleep"); sleep >= 0 {
		pause = time.Duration(sleep * float64(time.Second))
	}

	var client llm.Completer
	if !dryRun {
		cl, err := llm.New(model)
		if err != nil {
			return err
		}
		client = cl
	}

	cacheEnabled := cfg.Cache.Enabled && !c.Bool("no-cache") && !dryRun
	reportCache, err := cache.New(cfg.Cache.Dir, cacheEnabled)
	if err != nil {
		return fmt.Errorf("opening report cache: %w", err)
	}

	root, err := filepath.Abs(paths[0])
	if err != nil {
		return err
	}

	svc := deepdive.New(client, reportCache, deepdive.Options{
		Root:          root,
		OutDir:        c.String("out"),
		Workers:       workers,
		MaxFileSize:   cfg.Analysis.MaxFileSize,
		SnippetBudget: snippetBudget,
		TargetWords:   targetWords,
		Pause:         pause,
		DryRun:        dryRun,
	})

	tracker := progress.NewTracker("Generating deep dives...", len(files))
	results := svc.Run(c.Context, files, tracker.Tick)
	tracker.FinishSuccess()

	written := 0
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			color.Red("[error] %s: %v", r.Path, r.Err)
			continue
		}
		written += len(r.Reports)
		if c.Bool("verbose") && len(r.Reports) > 0 {
			color.Green("[ok] %s: wrote %d group reports", r.Path, len(r.Reports))
		}
	}

	color.Green("Done. Wrote %d Markdown files to %s", written, c.String("out"))
	if failed > 0 {
		color.Yellow("%d files failed", failed)
	}
	return nil
}
