// Package backend defines the boundary between the front end and whatever
// consumes its typed module graph — a back-end translator, interpreter or
// code generator. The collaborator itself is out of scope for this module,
// so the package is deliberately named-only: a single interface a future
// implementation attaches to, with no production implementation here.
package backend

import "github.com/hassan/veyra/internal/module"

// Translator consumes a fully type-resolved module graph. No production
// implementation exists in this repository; it is the seam a future code
// generator, interpreter, or transpiler attaches to.
type Translator interface {
	Translate(graph *module.Graph) error
}
