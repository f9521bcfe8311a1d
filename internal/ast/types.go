package ast

import (
	"fmt"
	"strings"

	"github.com/forge-lang/forge/internal/token"
)

// TypeBasicKind enumerates the primitive types.
type TypeBasicKind int

const (
	TypeBasicBool TypeBasicKind = iota
	TypeBasicVoid
	TypeBasicISize
	TypeBasicUSize
)

func (k TypeBasicKind) String() string {
	switch k {
	case TypeBasicBool:
		return "bool"
	case TypeBasicVoid:
		return "void"
	case TypeBasicISize:
		return "isize"
	case TypeBasicUSize:
		return "usize"
	}
	return "unknown"
}

// TypeBasic is a primitive type: bool, void, isize or usize.
type TypeBasic struct {
	Token     token.Token
	BasicKind TypeBasicKind
	Const     bool
}

func (t *TypeBasic) typeNode()            {}
func (t *TypeBasic) Kind() string         { return "type_basic" }
func (t *TypeBasic) ConstQualified() bool { return t.Const }
func (t *TypeBasic) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// NumericKind enumerates the sized numeric type families.
type NumericKind int

const (
	NumericSignedInt NumericKind = iota
	NumericUnsignedInt
	NumericFloat
)

// TypeWithBitWidth is a sized numeric type: i8..i64, u8..u64, f32, f64.
type TypeWithBitWidth struct {
	Token       token.Token
	NumericKind NumericKind
	BitWidth    uint
	Const       bool
}

func (t *TypeWithBitWidth) typeNode()            {}
func (t *TypeWithBitWidth) Kind() string         { return "type_with_bit_width" }
func (t *TypeWithBitWidth) ConstQualified() bool { return t.Const }
func (t *TypeWithBitWidth) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// Name returns the surface spelling, e.g. "u8" or "f64".
func (t *TypeWithBitWidth) Name() string {
	switch t.NumericKind {
	case NumericSignedInt:
		return fmt.Sprintf("i%d", t.BitWidth)
	case NumericUnsignedInt:
		return fmt.Sprintf("u%d", t.BitWidth)
	case NumericFloat:
		return fmt.Sprintf("f%d", t.BitWidth)
	}
	return "unknown"
}

// TypeSymbol is a reference to a named type. ReferencedDeclaration is a weak
// back-reference filled in by symbol resolution.
type TypeSymbol struct {
	Token                 token.Token
	Name                  string
	ReferencedDeclaration Declaration
	Const                 bool
}

func (t *TypeSymbol) typeNode()            {}
func (t *TypeSymbol) Kind() string         { return "type_symbol" }
func (t *TypeSymbol) ConstQualified() bool { return t.Const }
func (t *TypeSymbol) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// TypeUnaryKind enumerates unary type constructors.
type TypeUnaryKind int

const (
	TypeUnaryPointer TypeUnaryKind = iota
)

// TypeUnary is a type built from one operand type, currently only pointers.
type TypeUnary struct {
	Token       token.Token
	UnaryKind   TypeUnaryKind
	OperandType Type
	Const       bool
}

func (t *TypeUnary) typeNode()            {}
func (t *TypeUnary) Kind() string         { return "type_unary" }
func (t *TypeUnary) ConstQualified() bool { return t.Const }
func (t *TypeUnary) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// TypeFunction is a function type. Functions are not first-class values;
// this type only ever annotates function declarations and callees.
type TypeFunction struct {
	Token      token.Token
	ReturnType Type
	ArgTypes   []Type
	Const      bool
}

func (t *TypeFunction) typeNode()            {}
func (t *TypeFunction) Kind() string         { return "type_function" }
func (t *TypeFunction) ConstQualified() bool { return t.Const }
func (t *TypeFunction) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// TypeStructured is an anonymous record type. It is synthesized by type
// resolution for structured type declarations; members are variable
// declarations carrying the member types.
type TypeStructured struct {
	Token   token.Token
	Members []Declaration
	Const   bool
}

func (t *TypeStructured) typeNode()            {}
func (t *TypeStructured) Kind() string         { return "type_structured" }
func (t *TypeStructured) ConstQualified() bool { return t.Const }
func (t *TypeStructured) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

// FormatType renders a type for diagnostics.
func FormatType(t Type) string {
	switch tt := t.(type) {
	case nil:
		return "<unresolved>"
	case *TypeBasic:
		return tt.BasicKind.String()
	case *TypeWithBitWidth:
		return tt.Name()
	case *TypeSymbol:
		return tt.Name
	case *TypeUnary:
		return "*" + FormatType(tt.OperandType)
	case *TypeFunction:
		args := make([]string, len(tt.ArgTypes))
		for i, a := range tt.ArgTypes {
			args[i] = FormatType(a)
		}
		return fmt.Sprintf("func(%s) -> %s", strings.Join(args, ", "), FormatType(tt.ReturnType))
	case *TypeStructured:
		members := make([]string, 0, len(tt.Members))
		for _, m := range tt.Members {
			if m == nil {
				continue
			}
			members = append(members, m.DeclName()+": "+FormatType(m.ResolvedType()))
		}
		return "{ " + strings.Join(members, "; ") + " }"
	}
	return "<unknown>"
}
