package main

import (
	"fmt"
	"io"

	"github.com/samber/lo"
)

// codegen.go - Stack-machine code generation: walks the typed AST and
// emits x86-64 Intel-syntax (no-prefix dialect) assembly text directly
// to an io.Writer, one instruction per line. Grounded on the teacher's
// codegen.go (a push/pop "the stack is the expression stack" model) and
// control_flow.go (unique label counters per construct), generalised to
// the richer AST this parser builds and to the System V calling
// convention spec.md §4.3 requires.

// argRegs is the System V AMD64 integer argument register order.
var argRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Generator owns the output stream and the monotonic label counter used
// to keep every branch target in the program unique.
type Generator struct {
	w          io.Writer
	labelCount int
	curFunc    *FuncDef
}

// NewGenerator creates a Generator writing to w.
func NewGenerator(w io.Writer) *Generator {
	return &Generator{w: w}
}

func (g *Generator) emit(format string, args ...interface{}) {
	fmt.Fprintf(g.w, "  "+format+"\n", args...)
}

func (g *Generator) label(name string) {
	fmt.Fprintf(g.w, "%s:\n", name)
}

func (g *Generator) raw(line string) {
	fmt.Fprintln(g.w, line)
}

func (g *Generator) newLabel(prefix string) string {
	g.labelCount++
	return fmt.Sprintf(".L%s%d", prefix, g.labelCount)
}

// Generate emits a complete assembly file for the given top-level
// declarations and the scope's interned string table (spec.md §4.3).
func Generate(w io.Writer, decls []ASTNode, scope *Scope) {
	g := NewGenerator(w)
	g.raw(".intel_syntax noprefix")

	globals := lo.Filter(decls, func(d ASTNode, _ int) bool {
		_, ok := d.(*GlobalDef)
		return ok
	})
	funcs := lo.Filter(decls, func(d ASTNode, _ int) bool {
		_, ok := d.(*GlobalDef)
		return !ok
	})

	if len(globals) > 0 {
		g.raw(".bss")
		for _, d := range globals {
			g.genGlobal(d.(*GlobalDef))
		}
	}

	strs := scope.Strings()
	if len(strs) > 0 {
		g.raw(".section .rodata")
		for i, s := range strs {
			fmt.Fprintf(g.w, ".LC%d:\n  .string %q\n", i, s)
		}
	}

	g.raw(".text")
	for _, d := range funcs {
		if fd, ok := d.(*FuncDef); ok {
			g.raw(".globl " + fd.Name)
		}
	}
	for _, d := range funcs {
		g.genFuncDef(d.(*FuncDef))
	}
}

// genGlobal emits a zero-initialised .bss reservation for one global
// (spec.md §4.3: "GlobalDef: .bss / .zero N").
func (g *Generator) genGlobal(d *GlobalDef) {
	fmt.Fprintf(g.w, "%s:\n  .zero %d\n", d.Binding.Name, Size(d.Binding.Type))
}

// genFuncDef emits the prologue (push rbp / mov rbp,rsp / sub rsp,N),
// stores incoming register arguments into their parameter slots, walks
// the body, and emits the epilogue label every Return jumps to.
func (g *Generator) genFuncDef(fn *FuncDef) {
	g.curFunc = fn
	g.label(fn.Name)
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	if fn.FrameSize > 0 {
		g.emit("sub rsp, %d", fn.FrameSize)
	}

	for i, param := range fn.Params {
		if i >= len(argRegs) {
			break // spec.md §3.6: generator assumes no more than six arguments
		}
		g.emit("mov [rbp-%d], %s", param.Offset, argRegs[i])
	}

	for _, stmt := range fn.Body.Stmts {
		g.genStmt(stmt)
	}

	// Fallthrough return for a body with no trailing `return` (spec.md
	// §4.3's FuncDef contract: the epilogue is always reachable).
	g.label(".Lret_" + fn.Name)
	g.emit("mov rsp, rbp")
	g.emit("pop rbp")
	g.emit("ret")
	g.curFunc = nil
}

// genStmt emits a statement. Expression-statements (bare expr;) push
// their value like any other expression node, then must pop it back off
// since nothing consumes it (spec.md §4.3, "Driver sequencing").
func (g *Generator) genStmt(n ASTNode) {
	switch s := n.(type) {
	case *Return:
		g.genExpr(s.Value)
		g.emit("pop rax")
		g.emit("jmp .Lret_%s", g.curFunc.Name)

	case *Block:
		for _, stmt := range s.Stmts {
			g.genStmt(stmt)
		}

	case *If:
		g.genIf(s)

	case *While:
		g.genWhile(s)

	case *For:
		g.genFor(s)

	case *GlobalDef:
		// Top-level only; genGlobal already handled it.

	case *FuncDef:
		g.genFuncDef(s)

	default:
		// A bare expression statement (includes local declarations with
		// an initializer, which parser.go represents as Assign/LocalRef).
		g.genExpr(n)
		g.emit("pop rax")
	}
}

func (g *Generator) genIf(s *If) {
	g.genExpr(s.Cond)
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	if s.Else != nil {
		elseLabel := g.newLabel("else")
		endLabel := g.newLabel("end")
		g.emit("je %s", elseLabel)
		g.genStmt(s.Then)
		g.emit("jmp %s", endLabel)
		g.label(elseLabel)
		g.genStmt(s.Else)
		g.label(endLabel)
	} else {
		endLabel := g.newLabel("end")
		g.emit("je %s", endLabel)
		g.genStmt(s.Then)
		g.label(endLabel)
	}
}

func (g *Generator) genWhile(s *While) {
	beginLabel := g.newLabel("begin")
	endLabel := g.newLabel("end")
	g.label(beginLabel)
	g.genExpr(s.Cond)
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit("je %s", endLabel)
	g.genStmt(s.Body)
	g.emit("jmp %s", beginLabel)
	g.label(endLabel)
}

func (g *Generator) genFor(s *For) {
	beginLabel := g.newLabel("begin")
	endLabel := g.newLabel("end")

	g.genExprDiscard(s.Init)
	g.label(beginLabel)
	g.genExpr(s.Cond)
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit("je %s", endLabel)
	g.genStmt(s.Body)
	g.genExprDiscard(s.Inc)
	g.emit("jmp %s", beginLabel)
	g.label(endLabel)
}

// genExprDiscard evaluates an expression purely for side effect,
// discarding its pushed value (used for the for-loop init/inc clauses,
// which are never consumed).
func (g *Generator) genExprDiscard(n ASTNode) {
	g.genExpr(n)
	g.emit("pop rax")
}

// genExpr emits code that leaves exactly one value on the machine stack:
// the node's rvalue, except for arrays (spec.md §4.3: "an array-typed
// LocalRef/GlobalRef pushes its address, never its contents").
func (g *Generator) genExpr(n ASTNode) {
	switch e := n.(type) {
	case *Num:
		g.emit("push %d", e.Value)

	case *StringRef:
		g.emit("lea rax, [rip+.LC%d]", e.Index)
		g.emit("push rax")

	case *LocalRef:
		g.genAddr(e)
		if e.Binding.Type.Kind != KindArr {
			g.loadFromStackTop(e.Binding.Type)
		}

	case *GlobalRef:
		g.genAddr(e)
		if e.Binding.Type.Kind != KindArr {
			g.loadFromStackTop(e.Binding.Type)
		}

	case *Deref:
		g.genExpr(e.Lhs)
		if e.ResultType().Kind != KindArr {
			g.loadFromStackTop(e.ResultType())
		}

	case *Addr:
		g.genAddr(e.Lhs)

	case *Assign:
		g.genAddr(e.Lhs)
		g.genExpr(e.Rhs)
		g.emit("pop rdi") // rhs value
		g.emit("pop rax") // lhs address
		g.storeIndirect(e.ResultType())
		g.emit("push rdi")

	case *BinOp:
		g.genBinOp(e)

	case *Cmp:
		g.genCmp(e)

	case *Call:
		g.genCall(e)

	default:
		panic(fmt.Sprintf("codegen: unhandled expression node %T", n))
	}
}

// loadFromStackTop replaces the address on top of the stack with the
// value it points to, narrowing the load to a single zero-extended byte
// for Char so a char slot's unused high bytes (the frame's 8-byte slots
// are never zero-initialised, per symbols.go's DeclareLocal) never leak
// into the result, matching storeIndirect's narrowing on the write side.
func (g *Generator) loadFromStackTop(t *Type) {
	g.emit("pop rax")
	if t != nil && t.Kind == KindChar {
		g.emit("movzx rax, byte ptr [rax]")
	} else {
		g.emit("mov rax, [rax]")
	}
	g.emit("push rax")
}

// storeIndirect writes rdi into [rax], narrowing the store width for
// Char (1 byte) so a byte-typed lvalue isn't corrupted by an 8-byte
// write into adjacent memory.
func (g *Generator) storeIndirect(t *Type) {
	if t != nil && t.Kind == KindChar {
		g.emit("mov [rax], dil")
	} else {
		g.emit("mov [rax], rdi")
	}
}

// genAddr emits code that leaves the ADDRESS of an lvalue on the stack,
// without dereferencing it — used directly by Addr and by the
// array-decay exception in genExpr, and as the first half of Assign.
func (g *Generator) genAddr(n ASTNode) {
	switch e := n.(type) {
	case *LocalRef:
		g.emit("lea rax, [rbp-%d]", e.Binding.Offset)
		g.emit("push rax")

	case *GlobalRef:
		g.emit("lea rax, [rip+%s]", e.Binding.Name)
		g.emit("push rax")

	case *Deref:
		g.genExpr(e.Lhs)

	default:
		panic(fmt.Sprintf("codegen: %T is not addressable", n))
	}
}

// genBinOp emits Add/Sub/Mul/Div, applying pointer-arithmetic scaling
// (spec.md §4.3: "when one operand is Ptr/Arr-typed, the other operand is
// scaled by the pointee's size before the raw add/sub").
func (g *Generator) genBinOp(e *BinOp) {
	lhsIsPtr := IsPtrOrArr(e.Lhs.ResultType())
	rhsIsPtr := IsPtrOrArr(e.Rhs.ResultType())

	g.genExpr(e.Lhs)
	g.genExpr(e.Rhs)
	g.emit("pop rdi") // rhs
	g.emit("pop rax") // lhs

	switch {
	case (e.Op == OpAdd || e.Op == OpSub) && lhsIsPtr && !rhsIsPtr:
		scale := Size(Pointee(e.Lhs.ResultType()))
		if scale != 1 {
			g.emit("imul rdi, %d", scale)
		}
	case (e.Op == OpAdd || e.Op == OpSub) && rhsIsPtr && !lhsIsPtr:
		scale := Size(Pointee(e.Rhs.ResultType()))
		if scale != 1 {
			g.emit("imul rax, %d", scale)
		}
	}

	switch e.Op {
	case OpAdd:
		g.emit("add rax, rdi")
	case OpSub:
		g.emit("sub rax, rdi")
	case OpMul:
		g.emit("imul rax, rdi")
	case OpDiv:
		g.emit("cqo")
		g.emit("idiv rdi")
	}
	g.emit("push rax")
}

// genCmp emits a comparison, normalising any of the six operators into
// cmp + set{cc} + movzx (spec.md §4.3).
func (g *Generator) genCmp(e *Cmp) {
	g.genExpr(e.Lhs)
	g.genExpr(e.Rhs)
	g.emit("pop rdi")
	g.emit("pop rax")
	g.emit("cmp rax, rdi")

	var setcc string
	switch e.Op {
	case CmpEq:
		setcc = "sete"
	case CmpNe:
		setcc = "setne"
	case CmpLt:
		setcc = "setl"
	case CmpLe:
		setcc = "setle"
	case CmpGt:
		setcc = "setg"
	case CmpGe:
		setcc = "setge"
	}
	g.emit("%s al", setcc)
	g.emit("movzx rax, al")
	g.emit("push rax")
}

// genCall evaluates each argument left-to-right, pops them into the
// System V integer argument registers, and ensures the stack is 16-byte
// aligned at the `call` instruction (spec.md §4.3, §5: "al = 0, no
// vector arguments").
func (g *Generator) genCall(e *Call) {
	for _, a := range e.Args {
		g.genExpr(a)
	}
	for i := len(e.Args) - 1; i >= 0 && i < len(argRegs); i-- {
		g.emit("pop %s", argRegs[i])
	}

	alignLabel := g.newLabel("align")
	doneLabel := g.newLabel("aligndone")
	g.emit("mov rax, rsp")
	g.emit("and rax, 15")
	g.emit("cmp rax, 0")
	g.emit("jne %s", alignLabel)
	g.emit("mov al, 0")
	g.emit("call %s", e.CalleeName)
	g.emit("jmp %s", doneLabel)
	g.label(alignLabel)
	g.emit("sub rsp, 8")
	g.emit("mov al, 0")
	g.emit("call %s", e.CalleeName)
	g.emit("add rsp, 8")
	g.label(doneLabel)
	g.emit("push rax")
}
