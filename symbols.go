package main

import (
	"sort"

	"github.com/samber/lo"
)

// symbols.go - Symbol tables: local/global variable bindings, the
// function descriptor table, and the string literal side table.
// Grounded on the teacher's types.go Variable struct and functions.go's
// UserDefinedFunctions registry, generalised to the spec's recursive Type
// and to per-function (rather than whole-program) local scopes.

// LocalBinding is spec.md §3.3: name, offset, type. offset is the byte
// distance from the frame base such that the variable's address is
// base − offset; it is assigned once, at declaration, and never moved.
type LocalBinding struct {
	Name   string
	Offset int
	Type   *Type
}

// GlobalBinding is spec.md §3.4: name, type. Lives in the zero-
// initialised data section, referenced by absolute symbol name.
type GlobalBinding struct {
	Name string
	Type *Type
}

// FuncDescriptor is spec.md §3.5: name, return type, frame size, recorded
// at declaration time so later call sites can synthesise a call
// expression's type without re-parsing the callee.
type FuncDescriptor struct {
	Name       string
	ReturnType *Type
	FrameSize  int
	Declared   bool // true once DeclareFunction has seen a real definition for Name
}

// Scope owns the symbol tables live during parsing of one source unit: a
// per-function local scope (reset at each FuncDef), a whole-program
// global table, and a whole-program function table. Name lookup at use
// sites searches locals first, then globals, then functions (spec.md
// §4.2, "Name lookup").
type Scope struct {
	locals    map[string]*LocalBinding
	globals   map[string]*GlobalBinding
	functions map[string]*FuncDescriptor

	frameSize int // monotonically growing high-water mark for the current function
	strings   []string
}

// NewScope creates an empty top-level scope shared across the whole
// parse (globals and functions persist across functions; locals are
// reset per function via EnterFunction).
func NewScope() *Scope {
	return &Scope{
		locals:    make(map[string]*LocalBinding),
		globals:   make(map[string]*GlobalBinding),
		functions: make(map[string]*FuncDescriptor),
	}
}

// EnterFunction resets the local scope and frame-size counter for a new
// function body, per spec.md §4.2 ("Scope and resolution").
func (s *Scope) EnterFunction() {
	s.locals = make(map[string]*LocalBinding)
	s.frameSize = 0
}

// DeclareLocal allocates storage for a new local: 8 bytes per scalar
// slot, or 8 bytes × total element count for an array, counting every
// dimension of a nested array (spec.md §4.2: "arrays are laid out as a
// contiguous block of 8-byte slots"). It returns the new binding and
// advances the frame-size high-water mark, which becomes the offset
// assigned to the next local.
func (s *Scope) DeclareLocal(name string, t *Type) *LocalBinding {
	slots := 1
	for el := t; el.Kind == KindArr; el = el.Pointee {
		slots *= el.Len
	}
	s.frameSize += 8 * slots
	b := &LocalBinding{Name: name, Offset: s.frameSize, Type: t}
	s.locals[name] = b
	return b
}

// DeclareGlobal lazily registers a global the first time `program` walks
// over its declaration; the global table is shared across all functions.
func (s *Scope) DeclareGlobal(name string, t *Type) *GlobalBinding {
	b := &GlobalBinding{Name: name, Type: t}
	s.globals[name] = b
	return b
}

// DeclareFunction records a function descriptor at its definition site.
// Redefining an already-*defined* function is a parse error (spec.md
// §4.2); a name that only exists because an earlier call site forward-
// referenced it via ReferenceFunction is not a prior definition and is
// upgraded in place instead of rejected, so calling a function before its
// own textual definition in the same file keeps working.
func (s *Scope) DeclareFunction(name string, ret *Type) (*FuncDescriptor, error) {
	if d, exists := s.functions[name]; exists {
		if d.Declared {
			return nil, &CompileError{
				Category: CategorySyntax,
				Message:  "redefinition of function '" + name + "'",
			}
		}
		d.ReturnType = ret
		d.Declared = true
		return d, nil
	}
	d := &FuncDescriptor{Name: name, ReturnType: ret, Declared: true}
	s.functions[name] = d
	return d, nil
}

// ReferenceFunction records a forward/external reference the first time
// an identifier is seen applied as `ident(`. Per spec.md §4.2: "such
// forward/external references are recorded with return type int". It is
// idempotent — if the name is already known (declared or previously
// referenced), the existing descriptor is returned.
func (s *Scope) ReferenceFunction(name string) *FuncDescriptor {
	if d, ok := s.functions[name]; ok {
		return d
	}
	d := &FuncDescriptor{Name: name, ReturnType: TypeInt}
	s.functions[name] = d
	return d
}

// LookupLocal, LookupGlobal look up a name in the respective table.
func (s *Scope) LookupLocal(name string) (*LocalBinding, bool) {
	b, ok := s.locals[name]
	return b, ok
}

func (s *Scope) LookupGlobal(name string) (*GlobalBinding, bool) {
	b, ok := s.globals[name]
	return b, ok
}

// LookupFunction returns a previously declared or referenced function
// descriptor.
func (s *Scope) LookupFunction(name string) (*FuncDescriptor, bool) {
	d, ok := s.functions[name]
	return d, ok
}

// FrameSize returns the current function's high-water mark, rounded up to
// a multiple of 8 per spec.md §3.6's FuncDef.frame_size invariant (the
// per-local allocation in DeclareLocal already keeps it a multiple of 8,
// so this is a defensive no-op except as documentation of the invariant).
func (s *Scope) FrameSize() int {
	if s.frameSize%8 != 0 {
		return s.frameSize + (8 - s.frameSize%8)
	}
	return s.frameSize
}

// InternString appends lit to the string literal table (spec.md §3.7) and
// returns its index, reusing an existing entry if lit was already
// recorded (a minor determinism/size win the spec doesn't forbid, since
// two equal StringRef indices still each emit their own labelled record
// only once).
func (s *Scope) InternString(lit string) int {
	if idx := lo.IndexOf(s.strings, lit); idx >= 0 {
		return idx
	}
	s.strings = append(s.strings, lit)
	return len(s.strings) - 1
}

// Strings returns the ordered string literal table.
func (s *Scope) Strings() []string {
	return s.strings
}

// FunctionNames returns the declared/referenced function names in a
// deterministic (sorted) order. Nothing in the package calls it; code
// generation always walks the parser's own declaration-ordered program
// slice instead.
func (s *Scope) FunctionNames() []string {
	names := lo.Keys(s.functions)
	sort.Strings(names)
	return names
}
