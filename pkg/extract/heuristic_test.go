package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillco/fathom/pkg/parser"
)

func TestHeuristicFunctionDeclaration(t *testing.T) {
	src := []byte(`
function greet(name) {
  return "hi " + name;
}
`)
	records := heuristicFile(src)
	require.Contains(t, records, "greet")

	rec := records["greet"]
	assert.Equal(t, parser.FamilyHeuristic, rec.Family)
	assert.Equal(t, 2, rec.StartLine)
	assert.Equal(t, 4, rec.EndLine)
	assert.Contains(t, rec.Source, `return "hi " + name;`)
}

func TestHeuristicAsyncAndGenerator(t *testing.T) {
	src := []byte(`
async function fetchData(url) {
  return load(url);
}
function* gen() {
  yield step();
}
`)
	records := heuristicFile(src)
	require.Contains(t, records, "fetchData")
	require.Contains(t, records, "gen")
	assert.Contains(t, records["fetchData"].RawCallees, "load")
}

func TestHeuristicBoundFunctions(t *testing.T) {
	src := []byte(`
const add = (a, b) => {
  return a + b;
};
let mul = function (a, b) {
  return a * b;
};
var div = async (a, b) => {
  return a / b;
};
`)
	records := heuristicFile(src)
	assert.Contains(t, records, "add")
	assert.Contains(t, records, "mul")
	assert.Contains(t, records, "div")
}

func TestHeuristicExpressionArrowSkipped(t *testing.T) {
	// Expression-bodied arrows have no brace span to capture.
	src := []byte(`const double = (x) => x * 2;`)
	records := heuristicFile(src)
	assert.NotContains(t, records, "double")
}

func TestHeuristicMethodPattern(t *testing.T) {
	src := []byte(`
class Store {
  save(record) {
    this.validate(record);
  }
  validate(record) {
    return record != null;
  }
}
`)
	records := heuristicFile(src)
	require.Contains(t, records, "save")
	require.Contains(t, records, "validate")
	assert.Contains(t, records["save"].RawCallees, "validate")
}

func TestHeuristicControlFlowNotAFunction(t *testing.T) {
	src := []byte(`
function run(items) {
  if (items.length) {
    for (let i = 0; i < items.length; i++) {
      while (busy()) {
        wait();
      }
    }
  }
  switch (mode) {
    default:
      break;
  }
}
`)
	records := heuristicFile(src)
	assert.Contains(t, records, "run")
	for _, kw := range []string{"if", "for", "while", "switch", "catch"} {
		assert.NotContains(t, records, kw)
	}
}

func TestHeuristicCallDenylist(t *testing.T) {
	src := []byte(`
function handler(x) {
  if (x) {
    return process(x);
  }
  for (const y of x) {
    emit(y);
  }
}
`)
	records := heuristicFile(src)
	rec := records["handler"]
	assert.Contains(t, rec.RawCallees, "process")
	assert.Contains(t, rec.RawCallees, "emit")
	assert.NotContains(t, rec.RawCallees, "if")
	assert.NotContains(t, rec.RawCallees, "for")
	assert.NotContains(t, rec.RawCallees, "return")
}

func TestHeuristicCollisionKeepsLongestSpan(t *testing.T) {
	src := []byte(`
function setup() {
  init();
}
function setup() {
  init();
  configure();
  start();
}
`)
	records := heuristicFile(src)
	require.Contains(t, records, "setup")
	assert.Contains(t, records["setup"].RawCallees, "configure")
}

func TestHeuristicIgnoresStringsAndComments(t *testing.T) {
	src := []byte(`
// function fake() {
/* function alsoFake() { */
const s = "function stringy() {";
function real() {
  return s;
}
`)
	records := heuristicFile(src)
	assert.Contains(t, records, "real")
	assert.NotContains(t, records, "fake")
	assert.NotContains(t, records, "alsoFake")
	assert.NotContains(t, records, "stringy")
}

func TestHeuristicNestedFunctions(t *testing.T) {
	src := []byte(`
function outer() {
  function inner() {
    return 1;
  }
  return inner();
}
`)
	records := heuristicFile(src)
	assert.Contains(t, records, "outer")
	assert.Contains(t, records, "inner")
}

func TestHeuristicBraceInParamDefault(t *testing.T) {
	src := []byte(`
function merge({a, b} = {}) {
  return combine(a, b);
}
`)
	records := heuristicFile(src)
	require.Contains(t, records, "merge")
	assert.Contains(t, records["merge"].RawCallees, "combine")
}

func TestHeuristicUnterminatedBodySkipped(t *testing.T) {
	src := []byte(`function broken() { if (x) {`)
	records := heuristicFile(src)
	assert.Empty(t, records)
}

func TestHarvestLexicalCalls(t *testing.T) {
	body := []byte(`{
  const r = compute(x);
  log("call in string: notACall()");
  // comment: alsoNot()
  obj.method(r);
}`)
	callees := harvestLexicalCalls(body)
	assert.Contains(t, callees, "compute")
	assert.Contains(t, callees, "method")
	assert.NotContains(t, callees, "notACall")
	assert.NotContains(t, callees, "alsoNot")
}
