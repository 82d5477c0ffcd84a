package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillco/fathom/pkg/parser"
)

const jsSample = `import { db } from "./db";

function load(id) {
  return parse(db.get(id));
}

function parse(raw) {
  return JSON.parse(raw);
}

function report() {
  return render();
}

function render() {
  return "ok";
}
`

func TestAnalyzeSourceGroups(t *testing.T) {
	a := New()
	fa := a.AnalyzeSource(context.Background(), "app.js", parser.LangJavaScript, []byte(jsSample))

	assert.Equal(t, "app.js", fa.Path)
	assert.Equal(t, parser.LangJavaScript, fa.Language)
	assert.Equal(t, parser.FamilyHeuristic, fa.Family)
	assert.Equal(t, 4, fa.Functions)
	require.Len(t, fa.Groups, 2)

	// Groups of equal size: lexicographically smallest member first.
	assert.Equal(t, 1, fa.Groups[0].Index)
	assert.Equal(t, []string{"load", "parse"}, fa.Groups[0].Names())
	assert.Equal(t, []string{"render", "report"}, fa.Groups[1].Names())
}

func TestAnalyzeSourceGroupRestrictedCalls(t *testing.T) {
	a := New()
	fa := a.AnalyzeSource(context.Background(), "app.js", parser.LangJavaScript, []byte(jsSample))

	require.Len(t, fa.Groups, 2)
	for _, g := range fa.Groups {
		inGroup := make(map[string]bool)
		for _, m := range g.Members {
			inGroup[m.Name] = true
		}
		for _, m := range g.Members {
			for _, callee := range m.Calls {
				assert.Truef(t, inGroup[callee], "%s calls %s outside its group", m.Name, callee)
			}
			for _, caller := range m.CalledBy {
				assert.Truef(t, inGroup[caller], "%s called by %s outside its group", m.Name, caller)
			}
		}
	}

	calls := map[string][]string{}
	for _, m := range fa.Groups[0].Members {
		calls[m.Name] = m.Calls
	}
	assert.Equal(t, []string{"parse"}, calls["load"])
}

func TestAnalyzeSourceEmpty(t *testing.T) {
	a := New()
	fa := a.AnalyzeSource(context.Background(), "empty.py", parser.LangPython, nil)

	assert.Equal(t, 0, fa.Functions)
	assert.Empty(t, fa.Groups)
}

func TestAnalyzeFileOversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.js")
	require.NoError(t, os.WriteFile(path, []byte("function f() { return 1; }"), 0o644))

	a := New(WithMaxFileSize(5))
	fa := a.AnalyzeFile(context.Background(), path)
	assert.Equal(t, 0, fa.Functions)
}

func TestAnalyzeFileMissing(t *testing.T) {
	a := New()
	fa := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.py"))
	assert.Equal(t, 0, fa.Functions)
}

func TestAnalyzeProjectPreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"c.js", "a.js", "b.js"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("function f() { return g(); }\nfunction g() {}\n"), 0o644))
		files = append(files, path)
	}

	a := New(WithWorkers(4))
	var progressed atomic.Int32
	project := a.AnalyzeProject(context.Background(), files, func() { progressed.Add(1) })

	require.Len(t, project.Files, 3)
	for i, path := range files {
		assert.Equal(t, path, project.Files[i].Path)
	}
	assert.Equal(t, int32(3), progressed.Load())
	assert.Equal(t, 3, project.Summary.TotalFiles)
	assert.Equal(t, 6, project.Summary.TotalFunctions)
	assert.Equal(t, 3, project.Summary.TotalGroups)
}
