package backend_test

import (
	"testing"

	"github.com/hassan/veyra/internal/backend"
	"github.com/hassan/veyra/internal/module"
)

// fakeTranslator exercises the Translator seam without shipping a real
// code generator: it just records that it was handed a graph.
type fakeTranslator struct {
	called bool
	graph  *module.Graph
}

func (f *fakeTranslator) Translate(graph *module.Graph) error {
	f.called = true
	f.graph = graph
	return nil
}

func TestTranslatorSeamIsSatisfiable(t *testing.T) {
	var tr backend.Translator = &fakeTranslator{}
	graph := &module.Graph{Modules: map[string]*module.Module{}}

	if err := tr.Translate(graph); err != nil {
		t.Fatalf("Translate: unexpected error: %v", err)
	}
	f := tr.(*fakeTranslator)
	if !f.called {
		t.Fatal("Translate was not invoked")
	}
	if f.graph != graph {
		t.Fatal("Translate did not receive the graph it was handed")
	}
}
