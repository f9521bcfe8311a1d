package interp

import (
	"testing"

	"github.com/forge-lang/forge/internal/ir"
)

// buildCountdown builds: func countdown(n i32) i32 { while (n > 0) n = n - 1; return n }
func buildCountdown() *ir.Module {
	m := ir.NewModule("countdown.fg")
	n := &ir.Value{Name: "n", Type: ir.IntType(32)}
	f := m.NewFunc("countdown", ir.IntType(32), []*ir.Value{n})

	entry := f.NewBlock("entry")
	slot := f.NewReg(ir.PtrType(ir.IntType(32)))
	entry.Append(&ir.Instr{Op: ir.OpAlloca, Result: slot, Type: ir.IntType(32)})
	entry.Append(&ir.Instr{Op: ir.OpStore, Args: []*ir.Value{n, slot}})

	test := f.NewBlock("test")
	body := f.NewBlock("body")
	after := f.NewBlock("after")
	entry.SetTerm(&ir.Instr{Op: ir.OpBr, Then: test})

	cur := f.NewReg(ir.IntType(32))
	test.Append(&ir.Instr{Op: ir.OpLoad, Result: cur, Args: []*ir.Value{slot}})
	cond := f.NewReg(ir.IntType(1))
	test.Append(&ir.Instr{Op: ir.OpICmp, Pred: "sgt", Result: cond, Args: []*ir.Value{cur, ir.ConstInt(ir.IntType(32), 0)}})
	test.SetTerm(&ir.Instr{Op: ir.OpCondBr, Args: []*ir.Value{cond}, Then: body, Else: after})

	loaded := f.NewReg(ir.IntType(32))
	body.Append(&ir.Instr{Op: ir.OpLoad, Result: loaded, Args: []*ir.Value{slot}})
	dec := f.NewReg(ir.IntType(32))
	body.Append(&ir.Instr{Op: ir.OpSub, Result: dec, Args: []*ir.Value{loaded, ir.ConstInt(ir.IntType(32), 1)}})
	body.Append(&ir.Instr{Op: ir.OpStore, Args: []*ir.Value{dec, slot}})
	body.SetTerm(&ir.Instr{Op: ir.OpBr, Then: test})

	final := f.NewReg(ir.IntType(32))
	after.Append(&ir.Instr{Op: ir.OpLoad, Result: final, Args: []*ir.Value{slot}})
	after.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{final}})

	return m
}

func TestCountdownLoop(t *testing.T) {
	m := buildCountdown()
	result, err := New(m).Run("countdown", Value{Type: ir.IntType(32), I: 5})
	if err != nil {
		t.Fatal(err)
	}
	if result.I != 0 {
		t.Errorf("countdown(5) = %d, want 0", result.I)
	}
}

func TestUnknownFunction(t *testing.T) {
	m := ir.NewModule("empty.fg")
	if _, err := New(m).Run("missing"); err == nil {
		t.Fatal("expected an error for an unknown function")
	}
}

func TestIntegerWraparound(t *testing.T) {
	m := ir.NewModule("wrap.fg")
	f := m.NewFunc("inc", ir.IntType(8), []*ir.Value{{Name: "x", Type: ir.IntType(8)}})
	b := f.NewBlock("entry")
	sum := f.NewReg(ir.IntType(8))
	b.Append(&ir.Instr{Op: ir.OpAdd, Result: sum, Args: []*ir.Value{f.Params[0], ir.ConstInt(ir.IntType(8), 1)}})
	b.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{sum}})

	result, err := New(m).Run("inc", Value{Type: ir.IntType(8), I: 255})
	if err != nil {
		t.Fatal(err)
	}
	if result.I != 0 {
		t.Errorf("inc(255) = %d, want wraparound to 0", result.I)
	}
}

func TestDivisionByZero(t *testing.T) {
	m := ir.NewModule("div.fg")
	f := m.NewFunc("div", ir.IntType(32), nil)
	b := f.NewBlock("entry")
	q := f.NewReg(ir.IntType(32))
	b.Append(&ir.Instr{Op: ir.OpSDiv, Result: q, Args: []*ir.Value{
		ir.ConstInt(ir.IntType(32), 1), ir.ConstInt(ir.IntType(32), 0)}})
	b.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{q}})

	if _, err := New(m).Run("div"); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestPowIntrinsic(t *testing.T) {
	m := ir.NewModule("pow.fg")
	m.DeclareExtern("forge.pow.f64", ir.FloatType(64))
	f := m.NewFunc("p", ir.FloatType(64), nil)
	b := f.NewBlock("entry")
	r := f.NewReg(ir.FloatType(64))
	b.Append(&ir.Instr{Op: ir.OpCall, Callee: "forge.pow.f64", Result: r, Args: []*ir.Value{
		ir.ConstFloat(ir.FloatType(64), 2), ir.ConstFloat(ir.FloatType(64), 10)}})
	b.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{r}})

	result, err := New(m).Run("p")
	if err != nil {
		t.Fatal(err)
	}
	if result.F != 1024 {
		t.Errorf("pow(2, 10) = %g, want 1024", result.F)
	}
}
