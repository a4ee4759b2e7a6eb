package parser

// SymbolTable binds label names to the byte address they were defined
// at. Labels are unique within the assembled program; redefinition
// replaces the old binding silently but records a warning (spec.md §3
// invariants; SPEC_FULL.md Open Question #4).
type SymbolTable struct {
	offsets map[string]byte
	entry   string
	hasEntry bool
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{offsets: make(map[string]byte)}
}

// Define binds name to address, returning true if name was already
// bound (the caller uses this to decide whether to warn).
func (t *SymbolTable) Define(name string, address byte) bool {
	_, redefined := t.offsets[name]
	t.offsets[name] = address
	return redefined
}

// Lookup returns the address bound to name.
func (t *SymbolTable) Lookup(name string) (byte, bool) {
	addr, ok := t.offsets[name]
	return addr, ok
}

// SetEntry records the program's entry-point label.
func (t *SymbolTable) SetEntry(name string) {
	t.entry = name
	t.hasEntry = true
}

// Entry returns the entry-point label, if one was declared.
func (t *SymbolTable) Entry() (string, bool) {
	return t.entry, t.hasEntry
}
