package codegen

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/ir"
)

// genBlock threads the current basic block through each statement. A nil
// return means every path through the block terminated.
func (g *Generator) genBlock(f *ir.Func, b *ir.Block, fn *ast.DeclarationFunction, block *ast.StatementBlock) *ir.Block {
	current := b
	for _, stmt := range block.Statements {
		if current == nil {
			g.ctx.AddError(diagnostics.NewError(diagnostics.ErrISY000, stmt.GetToken(),
				"statement is unreachable; the previous statement always transfers control"))
			return nil
		}
		current = g.genStatement(f, current, fn, stmt)
	}
	return current
}

func (g *Generator) genStatement(f *ir.Func, b *ir.Block, fn *ast.DeclarationFunction, stmt ast.Statement) *ir.Block {
	switch s := stmt.(type) {
	case *ast.StatementBasic:
		switch s.BasicKind {
		case ast.StatementContinue:
			if g.loopTest == nil {
				diagnostics.Abort("codegen", "continue outside of a loop")
			}
			b.SetTerm(&ir.Instr{Op: ir.OpBr, Then: g.loopTest})
			return nil
		case ast.StatementBreak:
			if g.loopAfter == nil {
				diagnostics.Abort("codegen", "break outside of a loop")
			}
			b.SetTerm(&ir.Instr{Op: ir.OpBr, Then: g.loopAfter})
			return nil
		case ast.StatementReturnVoid:
			b.SetTerm(&ir.Instr{Op: ir.OpRetVoid})
			return nil
		}

	case *ast.StatementValue:
		switch s.ValueKind {
		case ast.StatementExecute:
			g.genValue(f, b, s.Value)
			return b
		case ast.StatementReturn:
			value := g.genValue(f, b, s.Value)
			value = g.implicitCast(f, b, value, s.Value.ResolvedType(), fn.ReturnType)
			b.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{value}})
			return nil
		}

	case *ast.StatementDeclaration:
		variable, ok := s.Declaration.(*ast.DeclarationVariable)
		if !ok {
			diagnostics.Abort("codegen",
				"statement declaration is not a variable; was the well-formed pass run?")
		}
		slotType := g.typeOf(variable.ResolvedType())
		slot := f.NewReg(ir.PtrType(slotType))
		b.Append(&ir.Instr{Op: ir.OpAlloca, Result: slot, Type: slotType})
		variable.CodegenValue = slot
		if variable.InitialValue != nil {
			value := g.genValue(f, b, variable.InitialValue)
			value = g.implicitCast(f, b, value, variable.InitialValue.ResolvedType(), variable.ResolvedType())
			b.Append(&ir.Instr{Op: ir.OpStore, Args: []*ir.Value{value, slot}})
		}
		return b

	case *ast.StatementBlock:
		return g.genBlock(f, b, fn, s)

	case *ast.StatementIf:
		return g.genIf(f, b, fn, s)

	case *ast.StatementWhile:
		return g.genWhile(f, b, fn, s)
	}

	diagnostics.Abort("codegen", "no lowering for statement kind %q", stmt.Kind())
	return nil
}

// genIf builds then/else/after blocks, emits each branch, and branches to
// after only from branches that did not terminate. An after block that no
// branch reaches is removed again.
func (g *Generator) genIf(f *ir.Func, b *ir.Block, fn *ast.DeclarationFunction, s *ast.StatementIf) *ir.Block {
	cond := g.genValue(f, b, s.Condition)

	thenBlock := f.NewBlock("then")
	afterBlock := f.NewBlock("after")

	elseTarget := afterBlock
	var elseBlock *ir.Block
	if s.Else != nil {
		elseBlock = f.NewBlock("else")
		elseTarget = elseBlock
	}

	b.SetTerm(&ir.Instr{Op: ir.OpCondBr, Args: []*ir.Value{cond}, Then: thenBlock, Else: elseTarget})

	thenEnd := g.genStatement(f, thenBlock, fn, s.Then)
	if thenEnd != nil {
		thenEnd.SetTerm(&ir.Instr{Op: ir.OpBr, Then: afterBlock})
	}

	if elseBlock != nil {
		elseEnd := g.genStatement(f, elseBlock, fn, s.Else)
		if elseEnd != nil {
			elseEnd.SetTerm(&ir.Instr{Op: ir.OpBr, Then: afterBlock})
		}
	}

	if afterBlock.Preds() == 0 {
		f.RemoveBlock(afterBlock)
		return nil
	}
	return afterBlock
}

// genWhile emits test/body/after blocks. A while loop enters at the test;
// a do-while enters at the body. continue re-tests, break exits.
func (g *Generator) genWhile(f *ir.Func, b *ir.Block, fn *ast.DeclarationFunction, s *ast.StatementWhile) *ir.Block {
	testBlock := f.NewBlock("test")
	bodyBlock := f.NewBlock("body")
	afterBlock := f.NewBlock("after")

	if s.IsDoWhile {
		b.SetTerm(&ir.Instr{Op: ir.OpBr, Then: bodyBlock})
	} else {
		b.SetTerm(&ir.Instr{Op: ir.OpBr, Then: testBlock})
	}

	cond := g.genValue(f, testBlock, s.Condition)
	testBlock.SetTerm(&ir.Instr{Op: ir.OpCondBr, Args: []*ir.Value{cond}, Then: bodyBlock, Else: afterBlock})

	prevTest, prevAfter := g.loopTest, g.loopAfter
	g.loopTest, g.loopAfter = testBlock, afterBlock
	bodyEnd := g.genStatement(f, bodyBlock, fn, s.Body)
	g.loopTest, g.loopAfter = prevTest, prevAfter

	if bodyEnd != nil {
		bodyEnd.SetTerm(&ir.Instr{Op: ir.OpBr, Then: testBlock})
	}

	return afterBlock
}
