// Package module implements the module loader: path resolution, the
// transitive graph build, and processDeclarations.
//
// Load builds the transitive closure of reachable modules from a main
// module path, and processDeclarations installs each module's
// imports/types/functions/constants/exports/export-forwards into five
// name-keyed tables, in that fixed order, following a "declare all names,
// then check bodies" two-pass shape.
package module

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/cst"
	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/fs"
	"github.com/hassan/veyra/internal/lexer"
	"github.com/hassan/veyra/internal/precedence"
	"github.com/hassan/veyra/internal/srcpos"
	"github.com/hassan/veyra/internal/token"
)

// Ext is the fixed source file extension.
const Ext = ".vey"

// SymbolKind tags which of a Module's four kind-specific tables an entry
// belongs to.
type SymbolKind int

const (
	KindType SymbolKind = iota
	KindFunc
	KindConst
	KindNamespace
)

func (k SymbolKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindFunc:
		return "function"
	case KindConst:
		return "constant"
	case KindNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// Entry is one binding in a Module's symbol tables: either a locally
// declared type/function/constant, or an imported alias pointing at another
// module's export.
type Entry struct {
	Name     string
	Kind     SymbolKind
	Decl     ast.Decl // nil for imported/namespace entries
	Imported bool
	From     *Module // set when Imported is true
	FromName string  // the name this alias refers to in From
	Span     srcpos.Span

	// Resolving/Type are the type resolver's cycle-detection and caching
	// fields; module only allocates them, internal/resolve reads and
	// mutates them.
	Resolving bool
	Type      any
}

// Module is one loaded, processed source file: its AST plus the five
// name-keyed tables processDeclarations populates.
type Module struct {
	Path       string // canonical absolute path, the module cache key
	File       *ast.File
	Types      map[string]*Entry
	Funcs      map[string]*Entry
	Consts     map[string]*Entry
	Namespaces map[string]*Entry
	Exports    map[string]*Entry // exportName -> the export's own entry (possibly aliasing one of the tables above)

	diagnostics []diag.Diagnostic
}

func newModule(path string, file *ast.File) *Module {
	return &Module{
		Path:       path,
		File:       file,
		Types:      make(map[string]*Entry),
		Funcs:      make(map[string]*Entry),
		Consts:     make(map[string]*Entry),
		Namespaces: make(map[string]*Entry),
		Exports:    make(map[string]*Entry),
	}
}

// Diagnostics returns every diagnostic processDeclarations recorded for this
// module, so callers can inspect per-module problems in addition to the
// graph-wide combined error.
func (m *Module) Diagnostics() []diag.Diagnostic { return m.diagnostics }

func (m *Module) errorf(span srcpos.Span, format string, args ...any) {
	m.diagnostics = append(m.diagnostics, diag.Diagnostic{
		Kind: diag.Semantic, File: m.Path, Span: span,
		Message: fmt.Sprintf(format, args...),
	})
}

// Graph is the full transitive closure of modules reachable from a main
// module, keyed by canonical absolute path — no two modules share an
// absolute path.
type Graph struct {
	Main    *Module
	Modules map[string]*Module
}

// Diagnostics flattens every module's diagnostics into one combined Bag,
// ready for Bag.Err() at the end of check().
func (g *Graph) Diagnostics() *diag.Bag {
	bag := &diag.Bag{}
	paths := make([]string, 0, len(g.Modules))
	for p := range g.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		for _, d := range g.Modules[p].Diagnostics() {
			bag.Add(d)
		}
	}
	return bag
}

// Loader builds a Graph from a main module path, caching modules by
// canonical path so each physical file is parsed and processed exactly once.
type Loader struct {
	filesystem fs.FileSystem
	cache      map[string]*Module
	loading    map[string]bool // cycle guard: a module currently mid-load
}

// NewLoader creates a Loader over filesystem, the injected filesystem
// collaborator.
func NewLoader(filesystem fs.FileSystem) *Loader {
	return &Loader{filesystem: filesystem, cache: make(map[string]*Module), loading: make(map[string]bool)}
}

// Load parses mainPath and every module it transitively imports, then runs
// processDeclarations on each in an order where every module's dependencies
// are already processed first (a reverse topological / post-order walk),
// before returning the assembled Graph.
func (l *Loader) Load(mainPath string) (*Graph, *diag.Bag) {
	bag := &diag.Bag{}
	canon, err := l.canonicalize(mainPath)
	if err != nil {
		bag.Addf(mainPath, srcpos.Span{}, "cannot resolve main module: %v", err)
		return nil, bag
	}
	main, loadErr := l.loadFile(canon, bag)
	if loadErr != nil {
		return nil, bag
	}

	order := l.postOrder(canon)
	processed := make(map[string]bool, len(order))
	for _, path := range order {
		mod := l.cache[path]
		if mod == nil || processed[path] {
			continue
		}
		l.processDeclarations(mod)
		processed[path] = true
	}

	return &Graph{Main: main, Modules: l.cache}, bag
}

// canonicalize resolves a (possibly relative) path argument to the absolute
// path used as the module cache key.
func (l *Loader) canonicalize(path string) (string, error) {
	return filepath.Abs(path)
}

// postOrder walks the import graph from root depth-first and returns every
// reachable module's canonical path with dependencies before dependents,
// which is the order processDeclarations must run in so that imported names
// are already installed in their source module's tables.
func (l *Loader) postOrder(root string) []string {
	var order []string
	visited := make(map[string]bool)
	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		mod := l.cache[path]
		if mod == nil {
			return
		}
		for _, imp := range append(imports(mod.File), forwardsAsImports(mod.File)...) {
			target, ok := l.resolvedImportPath(mod.Path, imp.ModulePath)
			if ok {
				visit(target)
			}
		}
		order = append(order, path)
	}
	visit(root)
	return order
}

// imports returns every ImportDecl in file, in source order. Export-forward
// declarations are not included; forwardsAsImports adapts those separately.
func imports(file *ast.File) []*ast.ImportDecl {
	var out []*ast.ImportDecl
	for _, d := range file.Declarations {
		if imp, ok := d.(*ast.ImportDecl); ok {
			out = append(out, imp)
		}
	}
	return out
}

func exportForwards(file *ast.File) []*ast.ExportForwardDecl {
	var out []*ast.ExportForwardDecl
	for _, d := range file.Declarations {
		if fwd, ok := d.(*ast.ExportForwardDecl); ok {
			out = append(out, fwd)
		}
	}
	return out
}

// loadFile reads, lexes, parses, reduces and caches the module at canon (a
// canonical absolute path already), recursing into its imports and
// export-forwards before returning. The module is cached before recursing
// so that a cyclic import resolves to the same (partially built) Module
// value rather than infinitely reloading.
func (l *Loader) loadFile(canon string, bag *diag.Bag) (*Module, error) {
	if mod, ok := l.cache[canon]; ok {
		return mod, nil
	}
	if l.loading[canon] {
		return nil, nil // cycle: the in-progress load higher on the stack owns this module
	}
	l.loading[canon] = true
	defer delete(l.loading, canon)

	resolved, err := resolveCandidate(l.filesystem, canon)
	if err != nil {
		bag.Addf(canon, srcpos.Span{}, "module not found: %v", err)
		return nil, err
	}

	src, err := l.filesystem.Read(resolved)
	if err != nil {
		bag.Addf(resolved, srcpos.Span{}, "cannot read module: %v", err)
		return nil, err
	}

	file, err := parseSource(string(src), resolved)
	if err != nil {
		bag.Add(*err)
		return nil, err
	}
	precedenceBag := precedence.Resolve(file, precedence.NewTable())
	for _, d := range precedenceBag.Items() {
		bag.Add(d)
	}

	mod := newModule(resolved, file)
	l.cache[canon] = mod
	l.cache[resolved] = mod

	for _, imp := range append(append([]*ast.ImportDecl{}, imports(file)...), forwardsAsImports(file)...) {
		target, ok := l.resolvedImportPath(resolved, imp.ModulePath)
		if !ok {
			bag.Addf(resolved, imp.Span(), "module not found: %q", imp.ModulePath)
			continue
		}
		if _, loadErr := l.loadFile(target, bag); loadErr != nil {
			bag.Addf(resolved, imp.Span(), "importing %q: %v", imp.ModulePath, loadErr)
		}
	}

	return mod, nil
}

// forwardsAsImports adapts export-forward declarations to ImportDecl shape
// purely so the graph walk can treat them uniformly with real imports — the
// module they name must be loaded either way.
func forwardsAsImports(file *ast.File) []*ast.ImportDecl {
	var out []*ast.ImportDecl
	for _, fwd := range exportForwards(file) {
		out = append(out, &ast.ImportDecl{Names: fwd.Names, ModulePath: fwd.ModulePath})
	}
	return out
}

func parseSource(src, path string) (*ast.File, *diag.Diagnostic) {
	lx := lexer.New(src, path)
	lx.SetIgnoreMode(false)
	var toks []token.Token
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	state := cst.NewState(cst.SkipTrivia(toks), path)
	result := cst.Program()(state)
	if !result.OK {
		if result.Err != nil {
			return nil, result.Err
		}
		return nil, &diag.Diagnostic{Kind: diag.Syntactic, File: path, Message: "parse failed"}
	}
	file, reduceErr := ast.ReduceSafe(result.Node, path)
	if reduceErr != nil {
		return nil, reduceErr
	}
	return file, nil
}
