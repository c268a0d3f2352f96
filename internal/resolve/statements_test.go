package resolve

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/fs"
	"github.com/hassan/veyra/internal/module"
)

// memFS is a tiny map-backed fs.FileSystem for exercising the full
// lex-parse-reduce-load-resolve pipeline over source text, mirroring
// internal/module's own fakeFS (unexported there, so not reusable from this
// package without an import cycle).
type memFS struct{ files map[string]string }

func newMemFS(files map[string]string) *memFS {
	clean := make(map[string]string, len(files))
	for path, content := range files {
		clean[filepath.Clean(path)] = content
	}
	return &memFS{files: clean}
}

func (f *memFS) Exists(path string) bool {
	_, ok := f.files[filepath.Clean(path)]
	return ok
}

func (f *memFS) IsDirectory(path string) bool { return false }

func (f *memFS) Read(path string) ([]byte, error) {
	content, ok := f.files[filepath.Clean(path)]
	if !ok {
		return nil, &noSuchFileError{path}
	}
	return []byte(content), nil
}

type noSuchFileError struct{ path string }

func (e *noSuchFileError) Error() string { return "memFS: no such file " + e.path }

var _ fs.FileSystem = (*memFS)(nil)

// load runs the full pipeline (lex, parse, reduce, precedence-resolve, module
// load) over one main file's source and returns the graph plus the resolved
// type diagnostics — failing the test immediately if loading itself produced
// diagnostics, since every case here is meant to be syntactically valid.
func load(t *testing.T, src string) *diag.Bag {
	t.Helper()
	filesystem := newMemFS(map[string]string{"/main.vey": src})
	loader := module.NewLoader(filesystem)
	graph, loadBag := loader.Load("/main.vey")
	require.NotNil(t, graph, "%v", loadBag.Items())
	require.Equal(t, 0, loadBag.Len(), "load/parse diagnostics: %v", loadBag.Items())
	return Resolve(graph)
}

func TestWhileLoopAndVarDeclaration(t *testing.T) {
	bag := load(t, ""+
		"func sum(n: int) -> int = {\n"+
		"  let total: int = 0\n"+
		"  let i: int = 0\n"+
		"  while (i < n) {\n"+
		"    total = total + i\n"+
		"    i = i + 1\n"+
		"  }\n"+
		"  return total\n"+
		"}\n")
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
}

func TestForInLoopLambdaAndTryCatch(t *testing.T) {
	bag := load(t, ""+
		"func run() -> int = {\n"+
		"  let xs = [1, 2, 3]\n"+
		"  let total: int = 0\n"+
		"  for (x in xs) {\n"+
		"    total = total + x\n"+
		"  }\n"+
		"  let double = (n: int) => n * 2\n"+
		"  let doubled = double(total)\n"+
		"  try {\n"+
		"    throw \"boom\"\n"+
		"  } catch (err) {\n"+
		"    total = 0\n"+
		"  }\n"+
		"  return doubled\n"+
		"}\n")
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
}

func TestForStmt_NonArrayIterableIsError(t *testing.T) {
	bag := load(t, ""+
		"func run() -> int = {\n"+
		"  let n: int = 5\n"+
		"  for (x in n) {\n"+
		"    n = x\n"+
		"  }\n"+
		"  return n\n"+
		"}\n")
	require.Greater(t, bag.Len(), 0)
	require.True(t, anyMessageHasPrefix(bag, "not-array"), "%v", bag.Items())
}

func TestWhileStmt_NonBoolConditionIsError(t *testing.T) {
	bag := load(t, ""+
		"func run() -> int = {\n"+
		"  let n: int = 5\n"+
		"  while (n) {\n"+
		"    n = 0\n"+
		"  }\n"+
		"  return n\n"+
		"}\n")
	require.Greater(t, bag.Len(), 0)
	require.True(t, anyMessageHasPrefix(bag, "type-mismatch: while-condition must be bool"), "%v", bag.Items())
}

func TestTryCatchStmt_CatchParamBoundAsString(t *testing.T) {
	bag := load(t, ""+
		"func run() -> int = {\n"+
		"  try {\n"+
		"    throw \"boom\"\n"+
		"  } catch (err) {\n"+
		"    let len: int = 0\n"+
		"    let msg: string = err\n"+
		"  }\n"+
		"  return 0\n"+
		"}\n")
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
}

func anyMessageHasPrefix(bag *diag.Bag, prefix string) bool {
	for _, d := range bag.Items() {
		if strings.HasPrefix(d.Message, prefix) {
			return true
		}
	}
	return false
}
