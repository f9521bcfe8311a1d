package typesystem

import (
	"github.com/forge-lang/forge/internal/ast"
)

// maxSymbolDepth bounds Underlying against alias cycles that survived
// resolution diagnostics.
const maxSymbolDepth = 64

// Underlying sees through resolved type symbols to the type they name.
// Unresolved symbols are returned as-is.
func Underlying(t ast.Type) ast.Type {
	for i := 0; i < maxSymbolDepth; i++ {
		sym, ok := t.(*ast.TypeSymbol)
		if !ok || sym == nil {
			return t
		}
		if sym.ReferencedDeclaration == nil || sym.ReferencedDeclaration.ResolvedType() == nil {
			return t
		}
		t = sym.ReferencedDeclaration.ResolvedType()
	}
	return t
}

func IsVoid(t ast.Type) bool {
	basic, ok := Underlying(t).(*ast.TypeBasic)
	return ok && basic != nil && basic.BasicKind == ast.TypeBasicVoid
}

func IsBool(t ast.Type) bool {
	basic, ok := Underlying(t).(*ast.TypeBasic)
	return ok && basic != nil && basic.BasicKind == ast.TypeBasicBool
}

func IsInteger(t ast.Type) bool {
	switch tt := Underlying(t).(type) {
	case *ast.TypeBasic:
		return tt.BasicKind == ast.TypeBasicISize || tt.BasicKind == ast.TypeBasicUSize
	case *ast.TypeWithBitWidth:
		return tt.NumericKind == ast.NumericSignedInt || tt.NumericKind == ast.NumericUnsignedInt
	}
	return false
}

func IsFloat(t ast.Type) bool {
	sized, ok := Underlying(t).(*ast.TypeWithBitWidth)
	return ok && sized != nil && sized.NumericKind == ast.NumericFloat
}

func IsNumber(t ast.Type) bool {
	return IsInteger(t) || IsFloat(t)
}

func IsPointer(t ast.Type) bool {
	unary, ok := Underlying(t).(*ast.TypeUnary)
	return ok && unary != nil && unary.UnaryKind == ast.TypeUnaryPointer
}

func IsFunction(t ast.Type) bool {
	_, ok := Underlying(t).(*ast.TypeFunction)
	return ok
}

func IsStructured(t ast.Type) bool {
	_, ok := Underlying(t).(*ast.TypeStructured)
	return ok
}

// AsStructured returns the underlying structured type, if any.
func AsStructured(t ast.Type) (*ast.TypeStructured, bool) {
	s, ok := Underlying(t).(*ast.TypeStructured)
	return s, ok && s != nil
}

// AsFunction returns the underlying function type, if any.
func AsFunction(t ast.Type) (*ast.TypeFunction, bool) {
	f, ok := Underlying(t).(*ast.TypeFunction)
	return f, ok && f != nil
}

// PointerElement returns the pointee type of a pointer type.
func PointerElement(t ast.Type) (ast.Type, bool) {
	unary, ok := Underlying(t).(*ast.TypeUnary)
	if !ok || unary == nil || unary.UnaryKind != ast.TypeUnaryPointer {
		return nil, false
	}
	return unary.OperandType, true
}

// IntegerSignedness reports whether an integer type is signed. ok is false
// for non-integer types.
func IntegerSignedness(t ast.Type) (signed bool, ok bool) {
	switch tt := Underlying(t).(type) {
	case *ast.TypeBasic:
		switch tt.BasicKind {
		case ast.TypeBasicISize:
			return true, true
		case ast.TypeBasicUSize:
			return false, true
		}
	case *ast.TypeWithBitWidth:
		switch tt.NumericKind {
		case ast.NumericSignedInt:
			return true, true
		case ast.NumericUnsignedInt:
			return false, true
		}
	}
	return false, false
}

// NumericBits returns the bit width of a numeric type, sizing isize/usize
// from the target pointer width.
func NumericBits(target Target, t ast.Type) (uint, bool) {
	switch tt := Underlying(t).(type) {
	case *ast.TypeBasic:
		if tt.BasicKind == ast.TypeBasicISize || tt.BasicKind == ast.TypeBasicUSize {
			return target.PointerBits, true
		}
	case *ast.TypeWithBitWidth:
		return tt.BitWidth, true
	}
	return 0, false
}
