package lang

import (
	"fmt"
	"sync"

	"crush/internal/crusherr"
)

// Scope is a hierarchical variable environment: every job, closure and
// namespace gets one. Lookup walks local bindings, then "used" namespace
// scopes, then the parent, in that order.
//
// Lock discipline: a Scope never holds its own lock while acquiring a
// parent's or a used namespace's lock. Lookup/Use copy out the slice of
// parents/uses to walk under the local lock, then release it before
// recursing.
type Scope struct {
	mu       sync.RWMutex
	name     string
	parent   *Scope
	bindings map[string]Value
	uses     []*Scope
	readonly bool
}

// NewRootScope creates the top-level scope a program executes against.
func NewRootScope() *Scope {
	return &Scope{name: "global", bindings: make(map[string]Value)}
}

// Child creates a new scope whose parent is s, used for job and closure
// bodies.
func (s *Scope) Child() *Scope {
	return &Scope{name: "child", parent: s, bindings: make(map[string]Value)}
}

// CreateNamespace creates a new, parentless scope and declares it in s's
// own bindings as a Value of KindScope under name, so a dotted lookup
// like `var.let` (internal/ast and internal/parser's dotted-name VDPath
// handling) can find it again via Lookup+descend.
func (s *Scope) CreateNamespace(name string) *Scope {
	ns := &Scope{name: name, bindings: make(map[string]Value)}
	s.mu.Lock()
	s.bindings[name] = ScopeValue(ns)
	s.mu.Unlock()
	return ns
}

// Use adds other to the list of namespaces this scope's lookups fall
// through to, after local bindings and before the parent.
func (s *Scope) Use(other *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uses = append(s.uses, other)
}

// Readonly freezes this scope's own bindings against further Declare or
// Set calls; child scopes are unaffected.
func (s *Scope) Readonly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readonly = true
}

// Declare creates a new binding in this scope's own bindings map. It is an
// error to declare a name that already exists locally.
func (s *Scope) Declare(name string, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readonly {
		return crusherr.Namef("scope %q is read-only", s.name)
	}
	if _, ok := s.bindings[name]; ok {
		return crusherr.Namef("variable %q already declared in this scope", name)
	}
	s.bindings[name] = v
	return nil
}

// Set updates an existing binding, walking outward (local, uses, parent)
// the same way Lookup does, and erroring if the name is not declared
// anywhere reachable.
func (s *Scope) Set(name string, v Value) error {
	if owner := s.findOwner(name); owner != nil {
		owner.mu.Lock()
		defer owner.mu.Unlock()
		if owner.readonly {
			return crusherr.Namef("variable %q is read-only", name)
		}
		owner.bindings[name] = v
		return nil
	}
	return crusherr.Namef("unknown variable %q", name)
}

// Lookup resolves name against local bindings, then used namespaces, then
// the parent chain, returning ok=false if nowhere declares it.
func (s *Scope) Lookup(name string) (Value, bool) {
	s.mu.RLock()
	if v, ok := s.bindings[name]; ok {
		s.mu.RUnlock()
		return v, true
	}
	uses := append([]*Scope(nil), s.uses...)
	parent := s.parent
	s.mu.RUnlock()

	for _, u := range uses {
		if v, ok := u.Lookup(name); ok {
			return v, true
		}
	}
	if parent != nil {
		return parent.Lookup(name)
	}
	return Value{}, false
}

// Unset removes a binding from the nearest scope (local, then uses, then
// parent) that declares it.
func (s *Scope) Unset(name string) error {
	if owner := s.findOwner(name); owner != nil {
		owner.mu.Lock()
		defer owner.mu.Unlock()
		if owner.readonly {
			return crusherr.Namef("variable %q is read-only", name)
		}
		delete(owner.bindings, name)
		return nil
	}
	return crusherr.Namef("unknown variable %q", name)
}

// Names returns every name visible from this scope: local bindings, then
// used namespaces', then the parent chain's, nearest first. Used by
// cmd/crush's shell completion to suggest variable/command names.
func (s *Scope) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	uses := append([]*Scope(nil), s.uses...)
	parent := s.parent
	s.mu.RUnlock()

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, u := range uses {
		for _, n := range u.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	if parent != nil {
		for _, n := range parent.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

func (s *Scope) findOwner(name string) *Scope {
	s.mu.RLock()
	if _, ok := s.bindings[name]; ok {
		s.mu.RUnlock()
		return s
	}
	uses := append([]*Scope(nil), s.uses...)
	parent := s.parent
	s.mu.RUnlock()

	for _, u := range uses {
		if owner := u.findOwner(name); owner != nil {
			return owner
		}
	}
	if parent != nil {
		return parent.findOwner(name)
	}
	return nil
}

func (s *Scope) String() string {
	return fmt.Sprintf("scope(%s)", s.name)
}
