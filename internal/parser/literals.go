package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/token"
)

// parseNumberLiteral converts the current NUMBER token into a typed
// literal. negative folds a directly preceding minus into the value so the
// range check sees the sign.
func (p *Parser) parseNumberLiteral(negative bool) ast.Value {
	tok, ok := p.expect(token.NUMBER)
	if !ok {
		return nil
	}

	numeric := strings.ReplaceAll(tok.Literal, "_", "")
	suffix := tok.Lexeme[len(tok.Literal):]

	isFloat := strings.HasPrefix(suffix, "f") ||
		(!strings.HasPrefix(numeric, "0x") && !strings.HasPrefix(numeric, "0X") &&
			(strings.ContainsAny(numeric, ".eE")))

	litType := literalType(tok, suffix, isFloat, p.ctx.Target.PointerBits)
	if litType == nil {
		p.errorf("malformed numeric literal %q", tok.Lexeme)
		return nil
	}

	lit := &ast.ValueLiteralNumber{Token: tok, Type: litType}

	if litType.NumericKind == ast.NumericFloat {
		value, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			p.errorf("malformed numeric literal %q", tok.Lexeme)
			return nil
		}
		if negative {
			value = -value
		}
		lit.Value.F = value
		return lit
	}

	magnitude, err := parseIntegerText(numeric)
	if err != nil {
		p.errorf("malformed numeric literal %q", tok.Lexeme)
		return nil
	}

	signed := litType.NumericKind == ast.NumericSignedInt
	parsed := magnitude
	if negative {
		parsed = uint64(-int64(magnitude))
	}

	truncated, fits := checkIntegerFits(parsed, litType.BitWidth, signed)
	if !fits {
		warning := diagnostics.NewWarning(diagnostics.WarnWSY001, tok,
			fmt.Sprintf("literal value does not fit in type %s", litType.Name()))
		warning.WithNote("was parsed as " + formatIntegerValue(parsed, signed))
		warning.WithNote("but got truncated to " + formatIntegerValue(truncated, signed))
		p.ctx.AddError(warning)
	}

	lit.Value.U = truncated
	return lit
}

func literalType(tok token.Token, suffix string, isFloat bool, pointerBits uint) *ast.TypeWithBitWidth {
	switch suffix {
	case "":
		if isFloat {
			return &ast.TypeWithBitWidth{Token: tok, NumericKind: ast.NumericFloat, BitWidth: 64}
		}
		return &ast.TypeWithBitWidth{Token: tok, NumericKind: ast.NumericSignedInt, BitWidth: 32}
	case "isize":
		return &ast.TypeWithBitWidth{Token: tok, NumericKind: ast.NumericSignedInt, BitWidth: pointerBits}
	case "usize":
		return &ast.TypeWithBitWidth{Token: tok, NumericKind: ast.NumericUnsignedInt, BitWidth: pointerBits}
	}

	var kind ast.NumericKind
	switch suffix[0] {
	case 'i':
		kind = ast.NumericSignedInt
	case 'u':
		kind = ast.NumericUnsignedInt
	case 'f':
		kind = ast.NumericFloat
	default:
		return nil
	}

	bits, err := strconv.Atoi(suffix[1:])
	if err != nil {
		return nil
	}

	if isFloat && kind != ast.NumericFloat {
		return nil
	}

	return &ast.TypeWithBitWidth{Token: tok, NumericKind: kind, BitWidth: uint(bits)}
}

func parseIntegerText(numeric string) (uint64, error) {
	switch {
	case strings.HasPrefix(numeric, "0x") || strings.HasPrefix(numeric, "0X"):
		return strconv.ParseUint(numeric[2:], 16, 64)
	case strings.HasPrefix(numeric, "0b") || strings.HasPrefix(numeric, "0B"):
		return strconv.ParseUint(numeric[2:], 2, 64)
	default:
		return strconv.ParseUint(numeric, 10, 64)
	}
}

// checkIntegerFits encodes parsed into a bit string of the literal's width
// and signedness and reads it back. The round trip is exact when the value
// fits; otherwise the decode yields the wrapped value the storage will hold.
func checkIntegerFits(parsed uint64, bits uint, signed bool) (truncated uint64, fits bool) {
	builder := funbit.NewBuilder()
	if signed {
		funbit.AddInteger(builder, int64(parsed), funbit.WithSize(bits), funbit.WithSigned(true))
	} else {
		funbit.AddInteger(builder, parsed, funbit.WithSize(bits))
	}

	bs, err := funbit.Build(builder)
	if err != nil {
		return parsed, true
	}

	if signed {
		var decoded int64
		matcher := funbit.NewMatcher()
		funbit.Integer(matcher, &decoded, funbit.WithSize(bits), funbit.WithSigned(true))
		if _, err := funbit.Match(matcher, bs); err != nil {
			return parsed, true
		}
		return uint64(decoded), decoded == int64(parsed)
	}

	var decoded uint64
	matcher := funbit.NewMatcher()
	funbit.Integer(matcher, &decoded, funbit.WithSize(bits))
	if _, err := funbit.Match(matcher, bs); err != nil {
		return parsed, true
	}
	return decoded, decoded == parsed
}

func formatIntegerValue(raw uint64, signed bool) string {
	if signed {
		return strconv.FormatInt(int64(raw), 10)
	}
	return strconv.FormatUint(raw, 10)
}
