package inventory

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInventory(t *testing.T) {
	root := t.TempDir()
	py := filepath.Join(root, "app.py")
	require.NoError(t, os.WriteFile(py, []byte("def load():\n    return parse()\n\ndef parse():\n    return 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("requests\n"), 0o644))

	b := NewBuilder(0, 1)
	inv := b.Build(context.Background(), root, []string{py}, nil)

	assert.Equal(t, filepath.Base(root), inv.Name)
	assert.Equal(t, 1, inv.TotalFiles)
	assert.Equal(t, 2, inv.TotalFuncs)
	assert.Equal(t, 1, inv.TotalGroups)
	require.Len(t, inv.Files, 1)
	assert.Equal(t, "app.py", inv.Files[0].Path)
	assert.Equal(t, []string{"load", "parse"}, inv.Files[0].Functions)
	assert.Equal(t, 6, inv.Files[0].Lines)
	require.Len(t, inv.Manifests, 1)
	assert.Equal(t, "requirements.txt", inv.Manifests[0].Name)
}

func TestWriteReport(t *testing.T) {
	root := t.TempDir()
	py := filepath.Join(root, "tool.py")
	require.NoError(t, os.WriteFile(py, []byte("def run():\n    pass\n"), 0o644))

	b := NewBuilder(0, 1)
	inv := b.Build(context.Background(), root, []string{py}, nil)

	outdir := filepath.Join(root, "reports")
	path, err := inv.WriteReport(outdir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outdir, inv.Name+".md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(content)
	assert.Contains(t, md, "# "+inv.Name)
	assert.Contains(t, md, "## Summary")
	assert.Contains(t, md, "Functions found: **1**")
	assert.Contains(t, md, "### `tool.py`")
	assert.Contains(t, md, "Functions: run")
}

func TestWriteIndex(t *testing.T) {
	outdir := t.TempDir()

	inventories := []*Inventory{
		{Name: "alpha", Root: "/r/alpha", Remote: "git@host:alpha.git", DefaultBranch: "main",
			TotalFiles: 3, TotalLines: 120, TotalFuncs: 9, TotalGroups: 4},
		{Name: "beta", Root: "/r/beta", TotalFiles: 1, TotalLines: 10, TotalFuncs: 2, TotalGroups: 1},
	}

	path, err := WriteIndex(outdir, inventories, []string{"alpha.md", "beta.md"})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"name", "root", "remote", "default_branch", "files", "lines", "functions", "groups", "report"}, rows[0])
	assert.Equal(t, []string{"alpha", "/r/alpha", "git@host:alpha.git", "main", "3", "120", "9", "4", "alpha.md"}, rows[1])
	assert.Equal(t, []string{"beta", "/r/beta", "", "", "1", "10", "2", "1", "beta.md"}, rows[2])
}

func TestSymbolList(t *testing.T) {
	assert.Equal(t, "a, b", symbolList([]string{"a", "b"}, 20))
	assert.Equal(t, "a, b ...(+2)", symbolList([]string{"a", "b", "c", "d"}, 2))
}

func TestGitFactsOutsideRepo(t *testing.T) {
	remote, branch := gitFacts(t.TempDir())
	assert.Empty(t, remote)
	assert.Empty(t, branch)
}
