// Package symbol interns identifier names to small integer ids. One
// Interner lives on each cods.Context; ids are stable for the Context's
// lifetime and survive Context.Clear, so re-running a source against the
// same Context reuses the same handles. The original name is recoverable
// for diagnostics only.
package symbol

// ID is an interned identifier handle.
type ID int

// Interner is a monotonically growing name table. It is not safe for
// concurrent use; it is owned by exactly one Context, and the whole
// pipeline is single-threaded per run.
type Interner struct {
	ids   map[string]ID
	names []string
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]ID)}
}

// Intern returns the id for name, allocating a new one on first sight.
func (in *Interner) Intern(name string) ID {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := ID(len(in.names))
	in.names = append(in.names, name)
	in.ids[name] = id
	return id
}

// Name returns the original spelling of id.
func (in *Interner) Name(id ID) string {
	return in.names[id]
}

// Len reports how many distinct names have been interned.
func (in *Interner) Len() int { return len(in.names) }
