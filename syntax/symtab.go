package syntax

import "sort"

// Symbol is one declaration recorded in a SymbolTable.
type Symbol struct {
	Ident Token
	Decl  *Decl
}

// Name returns the declared identifier.
func (s Symbol) Name() string { return s.Ident.Text() }

// SymbolTable maps identifier text to declarations. Several declarations
// may share a name; the newest one wins lookups.
type SymbolTable struct {
	Parent  *SymbolTable
	entries map[string][]Symbol
	count   int
}

// NewSymbolTable creates an empty table nested inside parent, which may be nil.
func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{Parent: parent, entries: map[string][]Symbol{}}
}

// Insert records decl under the text of ident.
func (st *SymbolTable) Insert(ident Token, decl *Decl) {
	name := ident.Text()
	st.entries[name] = append(st.entries[name], Symbol{Ident: ident, Decl: decl})
	st.count++
}

// Find returns the newest declaration of name in this table only.
func (st *SymbolTable) Find(name string) (Symbol, bool) {
	syms := st.entries[name]
	if len(syms) == 0 {
		return Symbol{}, false
	}
	return syms[len(syms)-1], true
}

// FindAll returns every declaration of name in this table, oldest first.
func (st *SymbolTable) FindAll(name string) []Symbol {
	return st.entries[name]
}

// Lookup searches this table and then each parent in turn.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	for t := st; t != nil; t = t.Parent {
		if sym, ok := t.Find(name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Len returns the number of declarations, counting duplicates.
func (st *SymbolTable) Len() int {
	return st.count
}

// Names returns the distinct declared names in sorted order.
func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.entries))
	for name := range st.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
