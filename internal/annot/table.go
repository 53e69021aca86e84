// Package annot holds the annotation table: the per-compilation map from a
// declared name to its harvested type descriptor. The table is written by the
// lowering passes and the signature harvester, and read by the type checker
// and the emitter.
package annot

// Entry is one harvested descriptor. Concrete kinds: FuncSig, VarSig,
// RecordDef, EnumDef, ErrorDef.
type Entry interface {
	entryNode()
}

// ParamInfo is one named, typed slot in declaration order.
type ParamInfo struct {
	Name string
	Type string
}

// FuncSig describes a callable with declared parameter and return types.
type FuncSig struct {
	Params []ParamInfo // declaration order
	Return string
}

func (*FuncSig) entryNode() {}

// ParamType returns the declared type for a parameter name.
func (f *FuncSig) ParamType(name string) (string, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p.Type, true
		}
	}
	return "", false
}

// VarSig describes a top-level binding with a declared type.
type VarSig struct {
	Type       string
	IsConstant bool
}

func (*VarSig) entryNode() {}

// FieldInfo is one record field. Field order is declaration order and is
// significant: it fixes the constructor's positional parameter order.
type FieldInfo struct {
	Name string
	Type string
}

// RecordDef describes a lowered struct declaration.
type RecordDef struct {
	Fields []FieldInfo
}

func (*RecordDef) entryNode() {}

// Field returns the type of a named field.
func (r *RecordDef) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// EnumDef describes a lowered enum declaration. Members holds the combined
// member list (valued and unvalued interleaved) in declaration order; Values
// holds explicit literal texts for valued members; Types holds declared
// member types.
type EnumDef struct {
	Members []string
	Values  map[string]string
	Types   map[string]string
}

func (*EnumDef) entryNode() {}

// ErrorDef describes a lowered error declaration.
type ErrorDef struct {
	Params []ParamInfo
}

func (*ErrorDef) entryNode() {}

// Table is the annotation table for one compilation call. Names are unique
// keys: a later Define for the same name overwrites the earlier entry. That
// shadow semantics is deliberate and documented, not an error.
type Table struct {
	entries map[string]Entry

	Exported map[string]bool // names marked with an export prefix
	HasMain  bool            // an exported function literally named "main" exists
}

func NewTable() *Table {
	return &Table{
		entries:  make(map[string]Entry),
		Exported: make(map[string]bool),
	}
}

// Define records an entry, overwriting any earlier entry for the same name.
func (t *Table) Define(name string, e Entry) {
	t.entries[name] = e
}

func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

func (t *Table) Func(name string) (*FuncSig, bool) {
	if e, ok := t.entries[name]; ok {
		if f, ok := e.(*FuncSig); ok {
			return f, true
		}
	}
	return nil, false
}

func (t *Table) Var(name string) (*VarSig, bool) {
	if e, ok := t.entries[name]; ok {
		if v, ok := e.(*VarSig); ok {
			return v, true
		}
	}
	return nil, false
}

func (t *Table) Record(name string) (*RecordDef, bool) {
	if e, ok := t.entries[name]; ok {
		if r, ok := e.(*RecordDef); ok {
			return r, true
		}
	}
	return nil, false
}

func (t *Table) Enum(name string) (*EnumDef, bool) {
	if e, ok := t.entries[name]; ok {
		if en, ok := e.(*EnumDef); ok {
			return en, true
		}
	}
	return nil, false
}

func (t *Table) Error(name string) (*ErrorDef, bool) {
	if e, ok := t.entries[name]; ok {
		if er, ok := e.(*ErrorDef); ok {
			return er, true
		}
	}
	return nil, false
}

// IsDeclaredType reports whether name is a record or sum type declaration.
// Nominal types are compatible only by exact declared name.
func (t *Table) IsDeclaredType(name string) bool {
	switch t.entries[name].(type) {
	case *RecordDef, *EnumDef, *ErrorDef:
		return true
	}
	return false
}

// Len reports the number of entries, mostly for tests.
func (t *Table) Len() int { return len(t.entries) }
