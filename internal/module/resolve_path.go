package module

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hassan/veyra/internal/fs"
)

// resolvedImportPath resolves an import specifier spec relative to the
// importing module's own canonical path importerPath: a specifier starting
// with "." resolves against the importer's directory, otherwise the
// importer's directory and each of its ancestors are tried in turn via a
// "packages/<spec>" subdirectory. It returns the file path that
// resolveCandidate settles on (after its index/extension disambiguation) and
// whether any candidate resolved.
func (l *Loader) resolvedImportPath(importerPath, spec string) (string, bool) {
	importerDir := filepath.Dir(importerPath)

	if strings.HasPrefix(spec, ".") {
		candidate := filepath.Clean(filepath.Join(importerDir, spec))
		resolved, err := resolveCandidate(l.filesystem, candidate)
		if err != nil {
			return "", false
		}
		return resolved, true
	}

	dir := importerDir
	for {
		candidate := filepath.Join(dir, "packages", spec)
		if resolved, err := resolveCandidate(l.filesystem, candidate); err == nil {
			return resolved, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// resolveCandidate disambiguates a resolved candidate path: C resolves to
// C/index.vey if C is a directory containing it; otherwise C itself if it
// exists and is not a directory; otherwise C.vey if that file exists;
// otherwise unresolved.
func resolveCandidate(filesystem fs.FileSystem, candidate string) (string, error) {
	if filesystem.IsDirectory(candidate) {
		index := filepath.Join(candidate, "index"+Ext)
		if filesystem.Exists(index) {
			return index, nil
		}
		return "", fmt.Errorf("%s is a directory with no index%s", candidate, Ext)
	}
	if filesystem.Exists(candidate) {
		return candidate, nil
	}
	withExt := candidate + Ext
	if filesystem.Exists(withExt) {
		return withExt, nil
	}
	return "", fmt.Errorf("%s: no such module", candidate)
}
