package main

import (
	"fmt"
)

// parser.go - Recursive-descent parser, name resolution, and type
// synthesis. Grounded on the teacher's parser.go (cursor-based recursive
// descent with expect/consume helpers) and control_flow.go (the
// precedence-climbing chain of parse* methods per level), generalised to
// spec.md §4.2's grammar: declaration/statement ambiguity, pointer
// arithmetic typing, array-to-pointer decay, and the for/while/if control
// structures the teacher's tokenizer never had keywords for.

// Parser holds the shared mutable cursor over the token sequence plus
// the symbol tables built up while walking `program`.
type Parser struct {
	tokens []Token
	pos    int
	scope  *Scope
}

// NewParser creates a parser over tokens, ready to parse `program`.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, scope: NewScope()}
}

// Program parses the whole token stream into an ordered list of
// top-level declarations (FuncDef/GlobalDef nodes) plus the resulting
// Scope (string literal table, symbol tables).
func (p *Parser) Program() ([]ASTNode, *Scope, error) {
	var decls []ASTNode
	for p.cur().Kind != TokEOF {
		decl, err := p.decl()
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, decl)
	}
	return decls, p.scope, nil
}

// ----------------------------------------------------------------------
// Cursor helpers
// ----------------------------------------------------------------------

func (p *Parser) cur() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// atReserved reports whether the current token is a Reserved token whose
// text matches op exactly (punctuation and multi-char operators share
// TokReserved, per spec.md §3.1).
func (p *Parser) atReserved(op string) bool {
	c := p.cur()
	return c.Kind == TokReserved && c.Text == op
}

// consume advances past a Reserved token matching op, returning whether
// it did.
func (p *Parser) consume(op string) bool {
	if p.atReserved(op) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a Reserved token matching op or fails with a
// CompileError naming what was expected and what was found.
func (p *Parser) expect(op string) error {
	if p.consume(op) {
		return nil
	}
	return p.errorf("'%s'", op)
}

// expectKind consumes a token of the given kind or fails.
func (p *Parser) expectKind(k TokenKind) (Token, error) {
	if p.cur().Kind == k {
		return p.advance(), nil
	}
	return Token{}, p.errorf(TokenKindName(k))
}

func (p *Parser) errorf(expectedFormat string, args ...interface{}) error {
	found := p.cur().Text
	if found == "" {
		found = TokenKindName(p.cur().Kind)
	}
	return &CompileError{
		Category: CategorySyntax,
		Message:  "unexpected token",
		Pos:      p.cur().Pos,
		Expected: fmt.Sprintf(expectedFormat, args...),
		Found:    found,
	}
}

// ----------------------------------------------------------------------
// decl := type ident ( func_tail | global_tail )
// ----------------------------------------------------------------------

func (p *Parser) decl() (ASTNode, error) {
	baseType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expectKind(TokIdent)
	if err != nil {
		return nil, err
	}
	name := nameTok.Text

	if p.atReserved("(") {
		return p.funcTail(name, baseType)
	}
	return p.globalTail(name, baseType)
}

// type := ('int'|'char') ('*')*
func (p *Parser) parseType() (*Type, error) {
	c := p.cur()
	if !isTypeKeyword(c.Kind) {
		return nil, p.errorf("a type")
	}
	p.advance()
	t := typeFromKeyword(c.Kind)
	for p.consume("*") {
		t = PtrTo(t)
	}
	return t, nil
}

// func_tail := '(' [ param (',' param)* ] ')' block
// param     := type ident
func (p *Parser) funcTail(name string, retType *Type) (ASTNode, error) {
	desc, err := p.scope.DeclareFunction(name, retType)
	if err != nil {
		return nil, err
	}

	if err := p.expect("("); err != nil {
		return nil, err
	}

	p.scope.EnterFunction()
	var params []*LocalBinding
	for !p.atReserved(")") {
		pt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pnTok, err := p.expectKind(TokIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, p.scope.DeclareLocal(pnTok.Text, pt))
		if !p.consume(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	frameSize := p.scope.FrameSize()
	desc.FrameSize = frameSize

	return &FuncDef{
		Name:       name,
		ReturnType: retType,
		Params:     params,
		Body:       body,
		FrameSize:  frameSize,
	}, nil
}

// global_tail := ( '[' num ']' )* ';'
func (p *Parser) globalTail(name string, baseType *Type) (ASTNode, error) {
	t := baseType
	var dims []int
	for p.consume("[") {
		lenTok, err := p.expectKind(TokNum)
		if err != nil {
			return nil, err
		}
		dims = append(dims, int(lenTok.Value))
		if err := p.expect("]"); err != nil {
			return nil, err
		}
	}
	// Apply dimensions innermost-first so `int a[2][3]` is an array of 2
	// arrays of 3 ints, matching the array-of-array reading of repeated
	// bracket suffixes.
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrOf(t, dims[i])
	}

	if err := p.expect(";"); err != nil {
		return nil, err
	}

	binding := p.scope.DeclareGlobal(name, t)
	return &GlobalDef{Binding: binding}, nil
}

// ----------------------------------------------------------------------
// stmt := block | 'return' expr ';' | for | while | if
//       | type ident ( '[' num ']' )* [ '=' expr ] ';'
//       | expr ';'
// ----------------------------------------------------------------------

func (p *Parser) stmt() (ASTNode, error) {
	switch {
	case p.atReserved("{"):
		return p.block()

	case p.cur().Kind == TokReturn:
		return p.returnStmt()

	case p.cur().Kind == TokFor:
		return p.forStmt()

	case p.cur().Kind == TokWhile:
		return p.whileStmt()

	case p.cur().Kind == TokIf:
		return p.ifStmt()

	case isTypeKeyword(p.cur().Kind):
		return p.localDecl()

	default:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// block := '{' stmt* '}'
func (p *Parser) block() (*Block, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var stmts []ASTNode
	for !p.atReserved("}") {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return &Block{Stmts: stmts}, nil
}

func (p *Parser) returnStmt() (ASTNode, error) {
	p.advance() // 'return'
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &Return{Value: v}, nil
}

// for := 'for' '(' [expr] ';' [expr] ';' [expr] ')' stmt
// Empty init/cond/inc default to 0, 1, 0 respectively (spec.md §4.2).
func (p *Parser) forStmt() (ASTNode, error) {
	p.advance() // 'for'
	if err := p.expect("("); err != nil {
		return nil, err
	}

	init, err := p.optionalExpr(";", 0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}

	cond, err := p.optionalExpr(";", 1)
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}

	inc, err := p.optionalExpr(")", 0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.stmt()
	if err != nil {
		return nil, err
	}

	return &For{Init: init, Cond: cond, Inc: inc, Body: body}, nil
}

// optionalExpr parses an expression unless the next token is stopAt, in
// which case it synthesises Num(defaultVal) in its place.
func (p *Parser) optionalExpr(stopAt string, defaultVal int32) (ASTNode, error) {
	if p.atReserved(stopAt) {
		return &Num{Value: defaultVal, BaseExpr: BaseExpr{Typ: TypeInt}}, nil
	}
	return p.expr()
}

func (p *Parser) whileStmt() (ASTNode, error) {
	p.advance() // 'while'
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.stmt()
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body}, nil
}

func (p *Parser) ifStmt() (ASTNode, error) {
	p.advance() // 'if'
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.stmt()
	if err != nil {
		return nil, err
	}
	var elseStmt ASTNode
	if p.cur().Kind == TokElse {
		p.advance()
		elseStmt, err = p.stmt()
		if err != nil {
			return nil, err
		}
	}
	return &If{Cond: cond, Then: then, Else: elseStmt}, nil
}

// localDecl := type ident ( '[' num ']' )* [ '=' expr ] ';'
func (p *Parser) localDecl() (ASTNode, error) {
	baseType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(TokIdent)
	if err != nil {
		return nil, err
	}

	t := baseType
	var dims []int
	for p.consume("[") {
		lenTok, err := p.expectKind(TokNum)
		if err != nil {
			return nil, err
		}
		dims = append(dims, int(lenTok.Value))
		if err := p.expect("]"); err != nil {
			return nil, err
		}
	}
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrOf(t, dims[i])
	}

	binding := p.scope.DeclareLocal(nameTok.Text, t)
	ref := &LocalRef{Binding: binding, BaseExpr: BaseExpr{Typ: t}}

	var result ASTNode = ref
	if p.consume("=") {
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = &Assign{Lhs: ref, Rhs: rhs, BaseExpr: BaseExpr{Typ: t}}
	}

	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return result, nil
}

// ----------------------------------------------------------------------
// Expression grammar, precedence low to high:
//   expr := assign
//   assign := equality [ '=' assign ]
//   equality := relational (('=='|'!=') relational)*
//   relational := add (('<'|'<='|'>'|'>=') add)*
//   add := mul (('+'|'-') mul)*
//   mul := unary (('*'|'/') unary)*
//   unary := '+' unary | '-' unary | '&' unary | '*' unary | 'sizeof' unary | primary
//   primary := num | string | ident [ '(' arglist? ')' | ('[' expr ']')+ ] | '(' expr ')'
// ----------------------------------------------------------------------

func (p *Parser) expr() (ASTNode, error) {
	return p.assign()
}

func (p *Parser) assign() (ASTNode, error) {
	lhs, err := p.equality()
	if err != nil {
		return nil, err
	}
	if p.consume("=") {
		if !isAddressable(lhs) {
			return nil, &CompileError{
				Category: CategorySyntax,
				Message:  "left-hand side of assignment is not an lvalue",
				Pos:      p.cur().Pos,
			}
		}
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return &Assign{Lhs: lhs, Rhs: rhs, BaseExpr: BaseExpr{Typ: lhs.ResultType()}}, nil
	}
	return lhs, nil
}

// isAddressable reports whether an AST node is an lvalue per spec.md
// §3.6: LocalRef, GlobalRef, or Deref.
func isAddressable(n ASTNode) bool {
	switch n.(type) {
	case *LocalRef, *GlobalRef, *Deref:
		return true
	default:
		return false
	}
}

func (p *Parser) equality() (ASTNode, error) {
	lhs, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		var op CmpKind
		switch {
		case p.consume("=="):
			op = CmpEq
		case p.consume("!="):
			op = CmpNe
		default:
			return lhs, nil
		}
		rhs, err := p.relational()
		if err != nil {
			return nil, err
		}
		lhs = &Cmp{Op: op, Lhs: lhs, Rhs: rhs, BaseExpr: BaseExpr{Typ: TypeInt}}
	}
}

func (p *Parser) relational() (ASTNode, error) {
	lhs, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		var op CmpKind
		switch {
		case p.consume("<="):
			op = CmpLe
		case p.consume(">="):
			op = CmpGe
		case p.consume("<"):
			op = CmpLt
		case p.consume(">"):
			op = CmpGt
		default:
			return lhs, nil
		}
		rhs, err := p.add()
		if err != nil {
			return nil, err
		}
		lhs = &Cmp{Op: op, Lhs: lhs, Rhs: rhs, BaseExpr: BaseExpr{Typ: TypeInt}}
	}
}

func (p *Parser) add() (ASTNode, error) {
	lhs, err := p.mul()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOpKind
		switch {
		case p.consume("+"):
			op = OpAdd
		case p.consume("-"):
			op = OpSub
		default:
			return lhs, nil
		}
		rhs, err := p.mul()
		if err != nil {
			return nil, err
		}
		lhs = &BinOp{Op: op, Lhs: lhs, Rhs: rhs, BaseExpr: BaseExpr{Typ: addSubType(lhs, rhs)}}
	}
}

// addSubType implements spec.md §4.2's Add/Sub typing rule: if exactly
// one operand is Ptr/Arr, the result is that pointer/array type; if both
// are arithmetic, Int; if both are pointer-kinded, the left operand's
// type (an acknowledged open-question wart, spec.md §9).
func addSubType(lhs, rhs ASTNode) *Type {
	lt, rt := lhs.ResultType(), rhs.ResultType()
	lp, rp := IsPtrOrArr(lt), IsPtrOrArr(rt)
	switch {
	case lp && !rp:
		return lt
	case rp && !lp:
		return rt
	case lp && rp:
		return lt
	default:
		return TypeInt
	}
}

func (p *Parser) mul() (ASTNode, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOpKind
		switch {
		case p.consume("*"):
			op = OpMul
		case p.consume("/"):
			op = OpDiv
		default:
			return lhs, nil
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		lhs = &BinOp{Op: op, Lhs: lhs, Rhs: rhs, BaseExpr: BaseExpr{Typ: TypeInt}}
	}
}

func (p *Parser) unary() (ASTNode, error) {
	switch {
	case p.consume("+"):
		return p.unary()

	case p.consume("-"):
		// Desugar `-x` to `0 - x`, following original_source/src/parser.rs's
		// unary() (see SPEC_FULL.md "Supplemented features").
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		zero := &Num{Value: 0, BaseExpr: BaseExpr{Typ: TypeInt}}
		return &BinOp{Op: OpSub, Lhs: zero, Rhs: operand, BaseExpr: BaseExpr{Typ: addSubType(zero, operand)}}, nil

	case p.consume("&"):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Addr{Lhs: operand, BaseExpr: BaseExpr{Typ: PtrTo(operand.ResultType())}}, nil

	case p.consume("*"):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Deref{Lhs: operand, BaseExpr: BaseExpr{Typ: Pointee(operand.ResultType())}}, nil

	case p.cur().Kind == TokSizeof:
		return p.sizeofExpr()

	default:
		return p.primary()
	}
}

// sizeofExpr parses `sizeof unary` and immediately replaces it with a Num
// literal per spec.md §4.2: "sizeof e: replaced at parse time with a Num
// whose value is 4 if type(e) = Int else 8."
func (p *Parser) sizeofExpr() (ASTNode, error) {
	p.advance() // 'sizeof'
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	size := int32(8)
	if operand.ResultType().Kind == KindInt {
		size = 4
	}
	return &Num{Value: size, BaseExpr: BaseExpr{Typ: TypeInt}}, nil
}

// primary := num | string | ident [ '(' arglist? ')' | ('[' expr ']')+ ] | '(' expr ')'
func (p *Parser) primary() (ASTNode, error) {
	switch {
	case p.atReserved("("):
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil

	case p.cur().Kind == TokNum:
		t := p.advance()
		return &Num{Value: t.Value, BaseExpr: BaseExpr{Typ: TypeInt}}, nil

	case p.cur().Kind == TokStrlit:
		t := p.advance()
		idx := p.scope.InternString(t.Text)
		return &StringRef{Index: idx, BaseExpr: BaseExpr{Typ: PtrTo(TypeChar)}}, nil

	case p.cur().Kind == TokIdent:
		return p.identPrimary()

	default:
		return nil, p.errorf("an expression")
	}
}

func (p *Parser) identPrimary() (ASTNode, error) {
	nameTok := p.advance()
	name := nameTok.Text

	if p.atReserved("(") {
		return p.callExpr(name)
	}

	ref, err := p.variableRef(name, nameTok.Pos)
	if err != nil {
		return nil, err
	}

	var node ASTNode = ref
	for p.atReserved("[") {
		node, err = p.indexSuffix(node)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// variableRef resolves a bare identifier: locals first, then globals
// (spec.md §4.2, "Name lookup"). An identifier not followed by '(' that
// resolves to neither, whether bare or indexed with '[', is an
// undeclared-variable error.
func (p *Parser) variableRef(name string, pos int) (ASTNode, error) {
	if b, ok := p.scope.LookupLocal(name); ok {
		return &LocalRef{Binding: b, BaseExpr: BaseExpr{Typ: b.Type}}, nil
	}
	if b, ok := p.scope.LookupGlobal(name); ok {
		return &GlobalRef{Binding: b, BaseExpr: BaseExpr{Typ: b.Type}}, nil
	}
	return nil, &CompileError{
		Category: CategorySyntax,
		Message:  fmt.Sprintf("undeclared variable '%s'", name),
		Pos:      pos,
	}
}

// callExpr parses the arglist? ')' tail of a call. An identifier
// followed by '(' is always treated as a function reference, even with
// no prior declaration (spec.md §4.2).
func (p *Parser) callExpr(name string) (ASTNode, error) {
	p.advance() // '('
	var args []ASTNode
	for !p.atReserved(")") {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.consume(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if len(args) > len(argRegs) {
		return nil, &CompileError{
			Category: CategorySyntax,
			Message:  fmt.Sprintf("too many arguments to '%s': the generator supports at most %d", name, len(argRegs)),
			Pos:      p.cur().Pos,
		}
	}

	desc := p.scope.ReferenceFunction(name)
	return &Call{
		CalleeName: name,
		CalleeType: desc.ReturnType,
		Args:       args,
		BaseExpr:   BaseExpr{Typ: desc.ReturnType},
	}, nil
}

// indexSuffix desugars one `[expr]` suffix: `a[i]` becomes `*(a + i)`,
// so that chained indices `a[i][j]` become `*(*(a+i)+j)` by repeated
// application (spec.md §4.2, "Array index desugaring"). Pointer
// arithmetic scaling is left to the generator, not decided here.
func (p *Parser) indexSuffix(base ASTNode) (ASTNode, error) {
	p.advance() // '['
	idx, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	sum := &BinOp{Op: OpAdd, Lhs: base, Rhs: idx, BaseExpr: BaseExpr{Typ: addSubType(base, idx)}}
	return &Deref{Lhs: sum, BaseExpr: BaseExpr{Typ: Pointee(sum.ResultType())}}, nil
}

// Parse is the package entry point: tokenize then parse, returning the
// ordered top-level declarations and the resulting Scope (string table,
// symbol tables) in one call.
func Parse(src string) ([]ASTNode, *Scope, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, nil, err
	}
	p := NewParser(tokens)
	return p.Program()
}
