package module

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/srcpos"
)

// TestResolveImportPath_WalksPackagesUpward verifies that, given
// /a/index.vey, /a/m.vey, /a/nested/n.vey, /a/packages/p.vey, an import
// from /a/nested/n.vey of "." resolves to the nearest directory's index,
// and "p" walks up to find /a/packages/p.vey.
func TestResolveImportPath_WalksPackagesUpward(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/a/index.vey":      "const x = 1\n",
		"/a/m.vey":          "const x = 1\n",
		"/a/nested/n.vey":   "const x = 1\n",
		"/a/packages/p.vey": "const x = 1\n",
	})
	loader := NewLoader(filesystem)

	resolved, ok := loader.resolvedImportPath("/a/nested/n.vey", ".")
	require.True(t, ok)
	require.Equal(t, "/a/index.vey", resolved)

	resolved, ok = loader.resolvedImportPath("/a/nested/n.vey", "p")
	require.True(t, ok)
	require.Equal(t, "/a/packages/p.vey", resolved)

	_, ok = loader.resolvedImportPath("/a/nested/n.vey", "./impossible")
	require.False(t, ok)
}

func TestLoad_SingleModuleNoImports(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/main.vey": "const answer = 42\n",
	})
	loader := NewLoader(filesystem)
	graph, bag := loader.Load("/main.vey")
	require.NotNil(t, graph)
	require.Equal(t, 0, bag.Len())
	require.Contains(t, graph.Main.Consts, "answer")
}

func TestLoad_ImportAndExport(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/lib.vey":  "export const greeting = 1\n",
		"/main.vey": "import { greeting } from \"./lib\"\nconst twice = greeting\n",
	})
	loader := NewLoader(filesystem)
	graph, bag := loader.Load("/main.vey")
	require.NotNil(t, graph)
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())

	main := graph.Main
	require.Contains(t, main.Consts, "greeting")
	require.True(t, main.Consts["greeting"].Imported)
	require.Equal(t, "greeting", main.Consts["greeting"].FromName)
}

func TestProcessImport_MissingExportReported(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/lib.vey":  "const hidden = 1\n",
		"/main.vey": "import { hidden } from \"./lib\"\n",
	})
	loader := NewLoader(filesystem)
	graph, _ := loader.Load("/main.vey")
	require.NotNil(t, graph)
	require.Greater(t, graph.Diagnostics().Len(), 0)
}

func TestProcessExportForward_Wildcard(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/base.vey":   "export const a = 1\nexport const b = 2\n",
		"/bridge.vey": "export * from \"./base\"\n",
		"/main.vey":   "import { a, b } from \"./bridge\"\nconst sum = a\n",
	})
	loader := NewLoader(filesystem)
	graph, bag := loader.Load("/main.vey")
	require.NotNil(t, graph)
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
	require.Contains(t, graph.Main.Consts, "a")
	require.Contains(t, graph.Main.Consts, "b")
}

func TestProcessExport_DuplicateExportNameIsError(t *testing.T) {
	filesystem := newFakeFS(map[string]string{
		"/main.vey": "const a = 1\nexport { a }\nexport { a }\n",
	})
	loader := NewLoader(filesystem)
	graph, _ := loader.Load("/main.vey")
	require.NotNil(t, graph)
	require.Greater(t, graph.Diagnostics().Len(), 0)
}

func TestInstallType_NameClashReportsSecondSpan(t *testing.T) {
	mod := newModule("/m.vey", &ast.File{})
	first := &ast.TypeDecl{Name: "T"}
	second := &ast.TypeDecl{Name: "T"}
	second.SetSpan(srcpos.Span{
		Start: srcpos.Position{Filename: "/m.vey", Offset: 10, Line: 2, Column: 1},
		End:   srcpos.Position{Filename: "/m.vey", Offset: 20, Line: 2, Column: 11},
	})
	installType(mod, first)
	installType(mod, second)
	require.Equal(t, first, mod.Types["T"].Decl)
	require.Equal(t, 1, len(mod.diagnostics))
	require.Equal(t, second.Span(), mod.diagnostics[0].Span)
}
