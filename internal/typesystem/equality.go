package typesystem

import (
	"github.com/forge-lang/forge/internal/ast"
)

// TypesEqual compares two types structurally. Const qualification is
// ignored; it never changes representation. Type symbols compare by the
// declaration they resolved to, falling back to name while unresolved.
func TypesEqual(a, b ast.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch at := a.(type) {
	case *ast.TypeBasic:
		bt, ok := b.(*ast.TypeBasic)
		return ok && at.BasicKind == bt.BasicKind
	case *ast.TypeWithBitWidth:
		bt, ok := b.(*ast.TypeWithBitWidth)
		return ok && at.NumericKind == bt.NumericKind && at.BitWidth == bt.BitWidth
	case *ast.TypeSymbol:
		bt, ok := b.(*ast.TypeSymbol)
		if !ok {
			return false
		}
		if at.ReferencedDeclaration != nil && bt.ReferencedDeclaration != nil {
			return at.ReferencedDeclaration == bt.ReferencedDeclaration
		}
		return at.Name == bt.Name
	case *ast.TypeUnary:
		bt, ok := b.(*ast.TypeUnary)
		return ok && at.UnaryKind == bt.UnaryKind && TypesEqual(at.OperandType, bt.OperandType)
	case *ast.TypeFunction:
		bt, ok := b.(*ast.TypeFunction)
		if !ok || len(at.ArgTypes) != len(bt.ArgTypes) {
			return false
		}
		if !TypesEqual(at.ReturnType, bt.ReturnType) {
			return false
		}
		for i := range at.ArgTypes {
			if !TypesEqual(at.ArgTypes[i], bt.ArgTypes[i]) {
				return false
			}
		}
		return true
	case *ast.TypeStructured:
		bt, ok := b.(*ast.TypeStructured)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for i := range at.Members {
			am, bm := at.Members[i], bt.Members[i]
			if am == nil || bm == nil {
				if am != bm {
					return false
				}
				continue
			}
			if am.DeclName() != bm.DeclName() || !TypesEqual(am.ResolvedType(), bm.ResolvedType()) {
				return false
			}
		}
		return true
	}

	return false
}

// EquivalentTypes compares after seeing through type symbols on both sides.
func EquivalentTypes(a, b ast.Type) bool {
	return TypesEqual(Underlying(a), Underlying(b))
}
