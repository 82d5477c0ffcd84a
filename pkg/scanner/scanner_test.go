package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillco/fathom/pkg/config"
	"github.com/quillco/fathom/pkg/parser"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func TestScanDirFindsSupportedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def f():\n    pass\n")
	writeFile(t, root, "src/app.js", "function f() {}\n")
	writeFile(t, root, "src/util.ts", "function g() {}\n")
	writeFile(t, root, "lib/core.rb", "def h\nend\n")
	writeFile(t, root, "pkg/x.go", "package x\n")
	writeFile(t, root, "README.md", "# docs\n")
	writeFile(t, root, "data.csv", "a,b\n")

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	rels := relPaths(t, root, files)
	assert.ElementsMatch(t, []string{"main.py", "src/app.js", "src/util.ts", "lib/core.rb", "pkg/x.go"}, rels)
}

func TestScanDirSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js", "function f() {}\n")
	writeFile(t, root, "node_modules/dep/index.js", "function g() {}\n")
	writeFile(t, root, "vendor/lib.go", "package lib\n")
	writeFile(t, root, "__pycache__/m.py", "x = 1\n")

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.js"}, relPaths(t, root, files))
}

func TestScanDirHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	writeFile(t, root, ".gitignore", "generated/\n*.gen.js\n")
	writeFile(t, root, "app.js", "function f() {}\n")
	writeFile(t, root, "api.gen.js", "function g() {}\n")
	writeFile(t, root, "generated/out.py", "def h():\n    pass\n")

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.js"}, relPaths(t, root, files))
}

func TestScanDirConfigPatterns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*_generated.py")

	root := t.TempDir()
	writeFile(t, root, "main.py", "def f():\n    pass\n")
	writeFile(t, root, "schema_generated.py", "def g():\n    pass\n")

	s := NewScanner(cfg)
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.py"}, relPaths(t, root, files))
}

func TestScanDirSymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "secret.py", "def leak():\n    pass\n")

	root := t.TempDir()
	writeFile(t, root, "app.py", "def f():\n    pass\n")
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	for _, f := range files {
		assert.False(t, strings.Contains(f, "secret.py"), "escaped root via symlink: %s", f)
	}
}

func TestScanFile(t *testing.T) {
	root := t.TempDir()
	js := writeFile(t, root, "app.js", "function f() {}\n")
	md := writeFile(t, root, "README.md", "# docs\n")

	s := NewScanner(config.DefaultConfig())

	ok, err := s.ScanFile(js)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ScanFile(md)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ScanFile(root)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ScanFile(filepath.Join(root, "missing.js"))
	assert.Error(t, err)
}

func TestGroupByLanguage(t *testing.T) {
	s := NewScanner(nil)
	groups := s.GroupByLanguage([]string{"a.py", "b.js", "c.py", "d.txt"})

	assert.Equal(t, []string{"a.py", "c.py"}, groups[parser.LangPython])
	assert.Equal(t, []string{"b.js"}, groups[parser.LangJavaScript])
	assert.NotContains(t, groups, parser.LangUnknown)
}

func TestFilterBySize(t *testing.T) {
	root := t.TempDir()
	small := writeFile(t, root, "small.js", "function f() {}")
	big := writeFile(t, root, "big.js", strings.Repeat("x", 100))

	filtered, skipped := FilterBySize([]string{small, big}, 50)
	assert.Equal(t, []string{small}, filtered)
	assert.Equal(t, 1, skipped)

	filtered, skipped = FilterBySize([]string{small, big}, 0)
	assert.Len(t, filtered, 2)
	assert.Equal(t, 0, skipped)
}
