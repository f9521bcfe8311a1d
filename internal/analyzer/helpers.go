package analyzer

import (
	"reflect"

	"github.com/forge-lang/forge/internal/ast"
)

func declsToNodes(decls []ast.Declaration) []ast.Node {
	out := make([]ast.Node, len(decls))
	for i, d := range decls {
		out[i] = d
	}
	return out
}

func typesToNodes(types []ast.Type) []ast.Node {
	out := make([]ast.Node, len(types))
	for i, t := range types {
		out[i] = t
	}
	return out
}

func valuesToNodes(values []ast.Value) []ast.Node {
	out := make([]ast.Node, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func statementsToNodes(stmts []ast.Statement) []ast.Node {
	out := make([]ast.Node, len(stmts))
	for i, s := range stmts {
		out[i] = s
	}
	return out
}

// isNilChild detects interface values wrapping a nil pointer, which count
// as missing children.
func isNilChild(n ast.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
