package typesystem

import (
	"github.com/forge-lang/forge/internal/ast"
)

// CastingMode is the legality of converting one type to another.
type CastingMode int

const (
	CastingModeIllegal CastingMode = iota
	CastingModeExplicit
	CastingModeImplicit
)

func (m CastingMode) String() string {
	switch m {
	case CastingModeImplicit:
		return "implicit"
	case CastingModeExplicit:
		return "explicit"
	}
	return "illegal"
}

// GetCastingMode classifies a conversion from src to dst.
//
//   - identical types: implicit
//   - value-preserving numeric widening: implicit
//   - sign reinterpretation, narrowing, float<->int: explicit
//   - pointer<->pointer with equal pointee, pointer<->pointer-width
//     integer: explicit
//   - everything else: illegal
func GetCastingMode(target Target, src, dst ast.Type) CastingMode {
	if src == nil || dst == nil {
		return CastingModeIllegal
	}
	src = Underlying(src)
	dst = Underlying(dst)

	if TypesEqual(src, dst) {
		return CastingModeImplicit
	}

	if IsNumber(src) && IsNumber(dst) {
		return numericCastingMode(target, src, dst)
	}

	if IsPointer(src) && IsPointer(dst) {
		srcElem, _ := PointerElement(src)
		dstElem, _ := PointerElement(dst)
		if EquivalentTypes(srcElem, dstElem) {
			return CastingModeExplicit
		}
		return CastingModeIllegal
	}

	if IsPointer(src) && IsInteger(dst) {
		if bits, ok := NumericBits(target, dst); ok && bits == target.PointerBits {
			return CastingModeExplicit
		}
		return CastingModeIllegal
	}
	if IsInteger(src) && IsPointer(dst) {
		if bits, ok := NumericBits(target, src); ok && bits == target.PointerBits {
			return CastingModeExplicit
		}
		return CastingModeIllegal
	}

	return CastingModeIllegal
}

func numericCastingMode(target Target, src, dst ast.Type) CastingMode {
	srcShape, _ := shapeOf(target, src)
	dstShape, _ := shapeOf(target, dst)

	switch {
	case srcShape.isFloat && dstShape.isFloat:
		if dstShape.bits >= srcShape.bits {
			return CastingModeImplicit
		}
		return CastingModeExplicit

	case srcShape.isFloat != dstShape.isFloat:
		return CastingModeExplicit

	default:
		// integer -> integer: implicit only when every source value is
		// representable in the destination
		if srcShape.signed == dstShape.signed && dstShape.bits >= srcShape.bits {
			return CastingModeImplicit
		}
		if !srcShape.signed && dstShape.signed && dstShape.bits > srcShape.bits {
			return CastingModeImplicit
		}
		return CastingModeExplicit
	}
}
