package compiler

import (
	"github.com/chal-lang/chal/ast"
	"github.com/chal-lang/chal/bytecode"
	"github.com/rs/zerolog"
)

// ScanFunctions walks the whole tree, including nested function bodies,
// and mints one label per function definition. The result maps each
// function name to its label so that calls resolve regardless of whether
// they appear before or after the definition.
//
// When two functions share a name the later definition (in source order)
// wins. The collision is logged at debug level.
func ScanFunctions(node ast.Node, ids *IDGen, log zerolog.Logger) map[string]bytecode.Label {
	byName, _ := scanFunctions(node, ids, log)
	return byName
}

// scanFunctions also returns the label of every definition node. A
// shadowed definition keeps its own label so its body is still emitted
// under a unique marker, but no call site will reach it.
func scanFunctions(node ast.Node, ids *IDGen, log zerolog.Logger) (map[string]bytecode.Label, map[*ast.Function]bytecode.Label) {
	byName := map[string]bytecode.Label{}
	byNode := map[*ast.Function]bytecode.Label{}
	for n := range ast.Preorder(node) {
		fn, ok := n.(*ast.Function)
		if !ok {
			continue
		}
		label := ids.NextLabel()
		byNode[fn] = label
		if fn.Name == "" {
			continue
		}
		if previous, found := byName[fn.Name]; found {
			log.Debug().
				Str("function", fn.Name).
				Stringer("previous", previous).
				Stringer("label", label).
				Int("line", fn.Pos().LineNumber()).
				Msg("function redefined; last definition wins")
		}
		byName[fn.Name] = label
	}
	return byName, byNode
}
