package typesystem

import (
	"testing"

	"github.com/forge-lang/forge/internal/ast"
)

func pointer(elem ast.Type) ast.Type {
	return &ast.TypeUnary{UnaryKind: ast.TypeUnaryPointer, OperandType: elem}
}

func boolType() ast.Type { return &ast.TypeBasic{BasicKind: ast.TypeBasicBool} }

func TestCastingModeReflexive(t *testing.T) {
	types := []ast.Type{
		boolType(),
		signedInt(8), signedInt(64),
		unsignedInt(8), unsignedInt(32),
		float(32), float(64),
		isize(), usize(),
		pointer(signedInt(32)),
	}

	for _, typ := range types {
		if mode := GetCastingMode(target, typ, typ); mode != CastingModeImplicit {
			t.Errorf("casting_mode(%s, %s) = %s, want implicit",
				ast.FormatType(typ), ast.FormatType(typ), mode)
		}
	}
}

func TestCastingModes(t *testing.T) {
	cases := []struct {
		name     string
		src, dst ast.Type
		want     CastingMode
	}{
		{"unsigned widening", unsignedInt(8), unsignedInt(16), CastingModeImplicit},
		{"signed widening", signedInt(16), signedInt(64), CastingModeImplicit},
		{"unsigned into wider signed", unsignedInt(8), signedInt(16), CastingModeImplicit},
		{"float widening", float(32), float(64), CastingModeImplicit},

		{"same width sign change", unsignedInt(8), signedInt(8), CastingModeExplicit},
		{"signed to unsigned", signedInt(8), unsignedInt(16), CastingModeExplicit},
		{"narrowing", signedInt(64), signedInt(8), CastingModeExplicit},
		{"float narrowing", float(64), float(32), CastingModeExplicit},
		{"int to float", signedInt(32), float(64), CastingModeExplicit},
		{"float to int", float(32), signedInt(32), CastingModeExplicit},

		{"pointer same pointee", pointer(signedInt(32)), pointer(signedInt(32)), CastingModeImplicit},
		{"pointer to pointer-wide int", pointer(signedInt(8)), unsignedInt(64), CastingModeExplicit},
		{"pointer-wide int to pointer", usize(), pointer(signedInt(8)), CastingModeExplicit},
		{"pointer to narrow int", pointer(signedInt(8)), unsignedInt(32), CastingModeIllegal},

		{"bool to int", boolType(), signedInt(32), CastingModeIllegal},
		{"int to bool", signedInt(32), boolType(), CastingModeIllegal},
		{"pointer to float", pointer(signedInt(8)), float(64), CastingModeIllegal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetCastingMode(target, tc.src, tc.dst); got != tc.want {
				t.Errorf("casting_mode(%s, %s) = %s, want %s",
					ast.FormatType(tc.src), ast.FormatType(tc.dst), got, tc.want)
			}
		})
	}
}

func TestCastingSeesThroughAliases(t *testing.T) {
	alias := &ast.DeclarationTypeAlias{Name: "Byte", Type: unsignedInt(8)}
	alias.SetResolvedType(unsignedInt(8))
	symbol := &ast.TypeSymbol{Name: "Byte", ReferencedDeclaration: alias}

	if mode := GetCastingMode(target, symbol, unsignedInt(16)); mode != CastingModeImplicit {
		t.Errorf("expected alias to widen implicitly, got %s", mode)
	}
	if mode := GetCastingMode(target, symbol, unsignedInt(8)); mode != CastingModeImplicit {
		t.Errorf("expected alias identity to be implicit, got %s", mode)
	}
}

func TestNilTypesAreIllegal(t *testing.T) {
	if GetCastingMode(target, nil, signedInt(8)) != CastingModeIllegal {
		t.Error("nil source must be illegal")
	}
	if GetCastingMode(target, signedInt(8), nil) != CastingModeIllegal {
		t.Error("nil destination must be illegal")
	}
}

func TestPredicates(t *testing.T) {
	if !IsBool(boolType()) || IsBool(signedInt(8)) {
		t.Error("IsBool misclassifies")
	}
	if !IsInteger(signedInt(8)) || !IsInteger(usize()) || IsInteger(float(32)) {
		t.Error("IsInteger misclassifies")
	}
	if !IsFloat(float(64)) || IsFloat(isize()) {
		t.Error("IsFloat misclassifies")
	}
	if !IsNumber(float(32)) || !IsNumber(isize()) || IsNumber(boolType()) {
		t.Error("IsNumber misclassifies")
	}
	if !IsPointer(pointer(signedInt(8))) || IsPointer(signedInt(8)) {
		t.Error("IsPointer misclassifies")
	}

	if signed, ok := IntegerSignedness(isize()); !ok || !signed {
		t.Error("isize should be signed")
	}
	if signed, ok := IntegerSignedness(usize()); !ok || signed {
		t.Error("usize should be unsigned")
	}
	if _, ok := IntegerSignedness(float(32)); ok {
		t.Error("floats have no integer signedness")
	}

	if bits, ok := NumericBits(target, usize()); !ok || bits != target.PointerBits {
		t.Error("usize should have pointer width")
	}
}
