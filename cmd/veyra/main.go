// Command veyra drives the front end end to end: load the module graph
// rooted at a main source file, resolve every type, and report diagnostics.
// It stops at the typed module graph — the back-end translator that would
// consume it is a separate collaborator, attached below through the
// backend.Translator seam rather than built into this command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hassan/veyra/internal/backend"
	"github.com/hassan/veyra/internal/fs"
	"github.com/hassan/veyra/internal/module"
	"github.com/hassan/veyra/internal/resolve"
)

var verbose bool

// translator is the backend.Translator a code generator or interpreter
// would install here to run after a clean type-check. Left nil: no
// production implementation ships in this repository.
var translator backend.Translator

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "veyra <main-file>",
		Short: "Load, parse and type-check a veyra module graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print each loaded module's path")
	return cmd
}

// runCheck parses arguments, invokes check(main_ast, main_path), prints
// diagnostics, and exits non-zero on any type-check error.
func runCheck(cmd *cobra.Command, args []string) error {
	mainPath := args[0]

	loader := module.NewLoader(fs.OSFileSystem{})
	graph, loadDiags := loader.Load(mainPath)
	if graph == nil {
		for _, d := range loadDiags.Items() {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return loadDiags.Err()
	}

	if verbose {
		for path := range graph.Modules {
			fmt.Fprintln(os.Stderr, "loaded:", path)
		}
	}

	bag := graph.Diagnostics()
	for _, d := range loadDiags.Items() {
		bag.Add(d)
	}
	typeDiags := resolve.Resolve(graph)
	for _, d := range typeDiags.Items() {
		bag.Add(d)
	}

	if bag.Len() == 0 {
		if translator != nil {
			return translator.Translate(graph)
		}
		return nil
	}
	for _, d := range bag.Items() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	return bag.Err()
}
