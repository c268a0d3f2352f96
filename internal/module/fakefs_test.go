package module

import (
	"fmt"
	"path/filepath"
)

// fakeFS is a map-backed fs.FileSystem for module-loader tests, keyed by
// cleaned absolute path. Directories are inferred from any file path that
// has the directory as a proper prefix, so callers only need to populate
// file contents, not directory markers.
type fakeFS struct {
	files map[string]string
}

func newFakeFS(files map[string]string) *fakeFS {
	clean := make(map[string]string, len(files))
	for path, content := range files {
		clean[filepath.Clean(path)] = content
	}
	return &fakeFS{files: clean}
}

func (f *fakeFS) Exists(path string) bool {
	path = filepath.Clean(path)
	if _, ok := f.files[path]; ok {
		return true
	}
	return f.IsDirectory(path)
}

func (f *fakeFS) IsDirectory(path string) bool {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for file := range f.files {
		if len(file) > len(prefix) && file[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func (f *fakeFS) Read(path string) ([]byte, error) {
	path = filepath.Clean(path)
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("fakeFS: no such file %s", path)
	}
	return []byte(content), nil
}
