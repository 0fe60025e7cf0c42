package main

// ast.go - Central AST node definitions for the compiler.
// Grounded on the teacher's ast.go: one interface all nodes implement,
// variants grouped by role, every expression node carrying its own
// synthesised Type field per spec.md §3.6's invariant so the generator
// never recomputes types.

// ASTNode is the interface every AST node implements. A strictly owning
// tree (each parent owns its children outright, no aliasing) is used
// throughout, per spec.md §9's recommendation for an implementation
// language that doesn't disfavour recursive ownership.
type ASTNode interface {
	astNode()
	// ResultType returns the node's synthesised type. Statement nodes
	// that have no result (Block, If, While, For, Return, GlobalDef)
	// return nil.
	ResultType() *Type
}

// BaseExpr carries the common Type field shared by every expression
// node, mirroring the teacher's embedding pattern (BaseNode) but scoped
// to what this language's nodes actually need.
type BaseExpr struct {
	Typ *Type
}

func (b *BaseExpr) ResultType() *Type { return b.Typ }

// ============================================================================
// Expression nodes
// ============================================================================

// Num is an integer literal.
type Num struct {
	BaseExpr
	Value int32
}

func (*Num) astNode() {}

// StringRef is the address of the index-th entry in the string literal
// table.
type StringRef struct {
	BaseExpr
	Index int
}

func (*StringRef) astNode() {}

// LocalRef refers to a local variable binding.
type LocalRef struct {
	BaseExpr
	Binding *LocalBinding
}

func (*LocalRef) astNode() {}

// GlobalRef refers to a global variable binding.
type GlobalRef struct {
	BaseExpr
	Binding *GlobalBinding
}

func (*GlobalRef) astNode() {}

// Assign is `lhs = rhs`. lhs must be addressable: LocalRef, GlobalRef, or
// Deref (spec.md §3.6 invariant).
type Assign struct {
	BaseExpr
	Lhs ASTNode
	Rhs ASTNode
}

func (*Assign) astNode() {}

// BinOp is one of Add/Sub/Mul/Div.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
)

type BinOp struct {
	BaseExpr
	Op  BinOpKind
	Lhs ASTNode
	Rhs ASTNode
}

func (*BinOp) astNode() {}

// Cmp is one of Eq/Ne/Lt/Le/Gt/Ge, always Int-typed (0 or 1).
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

type Cmp struct {
	BaseExpr
	Op  CmpKind
	Lhs ASTNode
	Rhs ASTNode
}

func (*Cmp) astNode() {}

// Addr is `&lhs`.
type Addr struct {
	BaseExpr
	Lhs ASTNode
}

func (*Addr) astNode() {}

// Deref is `*lhs`.
type Deref struct {
	BaseExpr
	Lhs ASTNode
}

func (*Deref) astNode() {}

// Call invokes a named function. CalleeType is the synthesised return
// type recorded at the call site (spec.md §3.6: "the generator assumes
// no more than six arguments").
type Call struct {
	BaseExpr
	CalleeName string
	CalleeType *Type
	Args       []ASTNode
}

func (*Call) astNode() {}

// ============================================================================
// Statement nodes (ResultType always nil)
// ============================================================================

type stmtNode struct{}

func (stmtNode) ResultType() *Type { return nil }

// Return is `return expr;`.
type Return struct {
	stmtNode
	Value ASTNode
}

func (*Return) astNode() {}

// Block is `{ stmt* }`.
type Block struct {
	stmtNode
	Stmts []ASTNode
}

func (*Block) astNode() {}

// If is `if (cond) then [else elseStmt]`.
type If struct {
	stmtNode
	Cond ASTNode
	Then ASTNode
	Else ASTNode // nil if absent
}

func (*If) astNode() {}

// While is `while (cond) body`.
type While struct {
	stmtNode
	Cond ASTNode
	Body ASTNode
}

func (*While) astNode() {}

// For exposes all four sub-expressions with their original evaluation
// order so the generator can emit it without knowing the grammar
// (spec.md §4.2, "Control-flow encoding"). Empty init/cond/inc default to
// Num(0)/Num(1)/Num(0) respectively at parse time.
type For struct {
	stmtNode
	Init ASTNode
	Cond ASTNode
	Inc  ASTNode
	Body ASTNode
}

func (*For) astNode() {}

// FuncDef is a top-level function definition.
type FuncDef struct {
	stmtNode
	Name       string
	ReturnType *Type
	Params     []*LocalBinding
	Body       *Block
	FrameSize  int
}

func (*FuncDef) astNode() {}

// GlobalDef is a top-level zero-initialised global declaration.
type GlobalDef struct {
	stmtNode
	Binding *GlobalBinding
}

func (*GlobalDef) astNode() {}
