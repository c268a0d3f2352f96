package module

import (
	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/srcpos"
)

// processDeclarations processes, for each module, all
// imports, then types, then functions, then constants, then exports, then
// export-forwards, installing an entry in the appropriate table for each and
// reporting name clashes with precise locations. Callers must have already
// processed every module mod imports (the loader's post-order walk
// guarantees this) so that imported names resolve against already-populated
// source-module tables.
func (l *Loader) processDeclarations(mod *Module) {
	for _, imp := range imports(mod.File) {
		l.processImport(mod, imp)
	}
	for _, d := range mod.File.Declarations {
		if td, ok := d.(*ast.TypeDecl); ok {
			installType(mod, td)
		}
	}
	for _, d := range mod.File.Declarations {
		if fd, ok := d.(*ast.FuncDecl); ok {
			installFunc(mod, fd)
		}
	}
	for _, d := range mod.File.Declarations {
		if cd, ok := d.(*ast.ConstDecl); ok {
			installConst(mod, cd)
		}
	}
	for _, d := range mod.File.Declarations {
		if ed, ok := d.(*ast.ExportDecl); ok {
			l.processExport(mod, ed)
		}
	}
	for _, fwd := range exportForwards(mod.File) {
		l.processExportForward(mod, fwd)
	}
}

func installType(mod *Module, d *ast.TypeDecl) {
	if _, ok := mod.Types[d.Name]; ok {
		mod.errorf(d.Span(), "name-clash: %q declared more than once", d.Name)
		return
	}
	mod.Types[d.Name] = &Entry{Name: d.Name, Kind: KindType, Decl: d, Span: d.Span()}
}

func installFunc(mod *Module, d *ast.FuncDecl) {
	if _, ok := mod.Funcs[d.Name]; ok {
		mod.errorf(d.Span(), "name-clash: %q declared more than once", d.Name)
		return
	}
	mod.Funcs[d.Name] = &Entry{Name: d.Name, Kind: KindFunc, Decl: d, Span: d.Span()}
}

func installConst(mod *Module, d *ast.ConstDecl) {
	if _, ok := mod.Consts[d.Name]; ok {
		mod.errorf(d.Span(), "name-clash: %q declared more than once", d.Name)
		return
	}
	mod.Consts[d.Name] = &Entry{Name: d.Name, Kind: KindConst, Decl: d, Span: d.Span()}
}

// processImport installs one alias per imported name. "*" creates a
// namespace alias bound to the whole target
// module; any other name must be one of the target's exports, and the alias
// is installed in the table matching that export's kind, with Imported set
// so the resolver knows to defer to From/FromName instead of Decl.
func (l *Loader) processImport(mod *Module, imp *ast.ImportDecl) {
	target := l.moduleFor(mod, imp)
	if target == nil {
		mod.errorf(imp.Span(), "module-not-found: %q", imp.ModulePath)
		return
	}
	for _, name := range imp.Names {
		if name == "*" {
			if l.bound(mod, name) {
				mod.errorf(imp.Span(), "name-clash: %q already bound in this module", name)
				continue
			}
			mod.Namespaces[name] = &Entry{Name: name, Kind: KindNamespace, Imported: true, From: target, Span: imp.Span()}
			continue
		}
		export, ok := target.Exports[name]
		if !ok {
			mod.errorf(imp.Span(), "module-does-not-export: %q does not export %q", imp.ModulePath, name)
			continue
		}
		if l.bound(mod, name) {
			mod.errorf(imp.Span(), "name-clash: %q already bound in this module", name)
			continue
		}
		entry := &Entry{Name: name, Kind: export.Kind, Imported: true, From: target, FromName: name, Span: imp.Span()}
		switch export.Kind {
		case KindType:
			mod.Types[name] = entry
		case KindFunc:
			mod.Funcs[name] = entry
		case KindConst:
			mod.Consts[name] = entry
		case KindNamespace:
			mod.Namespaces[name] = entry
		}
	}
}

// bound reports whether name is already present in any of mod's four
// kind-specific tables.
func (l *Loader) bound(mod *Module, name string) bool {
	if _, ok := mod.Types[name]; ok {
		return true
	}
	if _, ok := mod.Funcs[name]; ok {
		return true
	}
	if _, ok := mod.Consts[name]; ok {
		return true
	}
	if _, ok := mod.Namespaces[name]; ok {
		return true
	}
	return false
}

func (l *Loader) moduleFor(mod *Module, imp *ast.ImportDecl) *Module {
	target, ok := l.resolvedImportPath(mod.Path, imp.ModulePath)
	if !ok {
		return nil
	}
	return l.cache[target]
}

// processExport handles an export declaration: an inline export installs
// its wrapped declaration locally first, then registers the
// export; a bare-name export must already resolve in the type, function,
// constant or namespace table (imported names live in those tables too),
// inheriting that table's kind.
func (l *Loader) processExport(mod *Module, d *ast.ExportDecl) {
	if d.Inline != nil {
		switch inline := d.Inline.(type) {
		case *ast.TypeDecl:
			installType(mod, inline)
			l.registerExport(mod, inline.Name, inline.Name, KindType, d.Span())
		case *ast.FuncDecl:
			installFunc(mod, inline)
			l.registerExport(mod, inline.Name, inline.Name, KindFunc, d.Span())
		case *ast.ConstDecl:
			installConst(mod, inline)
			l.registerExport(mod, inline.Name, inline.Name, KindConst, d.Span())
		}
		return
	}
	for _, name := range d.Names {
		kind, ok := l.lookupKind(mod, name)
		if !ok {
			mod.errorf(d.Span(), "value-not-defined: %q is not an import, type, function or constant in this module", name)
			continue
		}
		l.registerExport(mod, name, name, kind, d.Span())
	}
}

// lookupKind resolves name against the type, function, constant and
// namespace tables, in that order; imported names are found in whichever of
// those tables their kind placed them.
func (l *Loader) lookupKind(mod *Module, name string) (SymbolKind, bool) {
	if e, ok := mod.Types[name]; ok {
		return e.Kind, true
	}
	if e, ok := mod.Funcs[name]; ok {
		return e.Kind, true
	}
	if e, ok := mod.Consts[name]; ok {
		return e.Kind, true
	}
	if e, ok := mod.Namespaces[name]; ok {
		return e.Kind, true
	}
	return 0, false
}

func (l *Loader) registerExport(mod *Module, exportName, valueName string, kind SymbolKind, span srcpos.Span) {
	if _, ok := mod.Exports[exportName]; ok {
		mod.errorf(span, "export-clash: %q already exported from this module", exportName)
		return
	}
	mod.Exports[exportName] = &Entry{Name: valueName, Kind: kind, Span: span}
}

// processExportForward handles export-forward declarations: sugar for
// "import then export", re-exporting either every export of the target
// module (ModulePath with Names == nil, the "export * from" form) or a
// specific name list.
func (l *Loader) processExportForward(mod *Module, fwd *ast.ExportForwardDecl) {
	resolved, ok := l.resolvedImportPath(mod.Path, fwd.ModulePath)
	if !ok {
		mod.errorf(fwd.Span(), "module-not-found: %q", fwd.ModulePath)
		return
	}
	target := l.cache[resolved]
	if target == nil {
		mod.errorf(fwd.Span(), "module-not-found: %q", fwd.ModulePath)
		return
	}
	if fwd.Names == nil {
		for name, export := range target.Exports {
			l.registerExport(mod, name, name, export.Kind, fwd.Span())
		}
		return
	}
	for _, name := range fwd.Names {
		export, ok := target.Exports[name]
		if !ok {
			mod.errorf(fwd.Span(), "module-does-not-export: %q does not export %q", fwd.ModulePath, name)
			continue
		}
		l.registerExport(mod, name, name, export.Kind, fwd.Span())
	}
}
