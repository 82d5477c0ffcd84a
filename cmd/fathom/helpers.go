package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/quillco/fathom/pkg/config"
	"github.com/quillco/fathom/pkg/scanner"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig loads the config named by --config, or searches the standard
// locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// collectFiles expands paths (files or directories) into the analyzable
// file list, applying the config's exclusion rules.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	scan := scanner.NewScanner(cfg)

	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := scan.ScanDir(absPath)
			if err != nil {
				return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
			}
			files = append(files, found...)
			continue
		}

		if ok, _ := scan.ScanFile(absPath); ok {
			files = append(files, absPath)
		}
	}

	filtered, _ := scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)
	return filtered, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
