package gocas

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Symbol is a named variable. Two symbols from the same Registry are equal
// exactly when their names are equal.
type Symbol struct {
	id   uint32
	name string
}

// Name returns the symbol name.
func (s Symbol) Name() string { return s.name }

// IsZero reports whether s is the zero Symbol.
func (s Symbol) IsZero() bool { return s.id == 0 }

func (s Symbol) String() string { return s.name }

var reservedNames = map[string]bool{
	"pi": true, "i": true, "I": true, "E": true,
	"oo": true, "zoo": true, "nan": true,
}

// Registry owns the symbol table. It is passed explicitly to every Engine
// that uses it; there is no package-level table.
type Registry struct {
	byName map[string]Symbol
	names  []string
	fresh  int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Symbol)}
}

// Symbol declares name, or returns the existing symbol of that name.
// Names are NFC-normalised before lookup.
func (r *Registry) Symbol(name string) (Symbol, error) {
	name = norm.NFC.String(name)
	if err := validateName(name); err != nil {
		return Symbol{}, err
	}
	return r.intern(name), nil
}

// MustSymbol is like Symbol but panics on an invalid name.
func (r *Registry) MustSymbol(name string) Symbol {
	s, err := r.Symbol(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the symbol declared under name.
func (r *Registry) Lookup(name string) (Symbol, bool) {
	s, ok := r.byName[norm.NFC.String(name)]
	return s, ok
}

// Names lists declared symbol names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		if !strings.HasPrefix(n, "_") {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of declared symbols, dummies included.
func (r *Registry) Len() int { return len(r.names) }

// dummy returns a symbol that can never collide with a user symbol.
func (r *Registry) dummy(prefix string) Symbol {
	r.fresh++
	return r.intern("_" + prefix + strconv.Itoa(r.fresh))
}

func (r *Registry) intern(name string) Symbol {
	if s, ok := r.byName[name]; ok {
		return s
	}
	s := Symbol{id: uint32(len(r.names) + 1), name: name}
	r.byName[name] = s
	r.names = append(r.names, name)
	return s
}

func validateName(name string) error {
	switch {
	case name == "":
		return opErr("symbol", ErrInvalidArgument, "empty symbol name")
	case reservedNames[name]:
		return opErr("symbol", ErrInvalidArgument, "%q is a reserved constant name", name)
	case strings.HasPrefix(name, "_"):
		return opErr("symbol", ErrInvalidArgument, "%q: leading underscore is reserved", name)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return opErr("symbol", ErrInvalidArgument, "%q contains white space", name)
		}
		if strings.ContainsRune("()[]{},+-*/^=", r) {
			return opErr("symbol", ErrInvalidArgument, "%q contains operator character %q", name, r)
		}
	}
	return nil
}
