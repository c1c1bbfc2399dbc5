// Package locations maps location names returned by the monitoring service
// onto the canonical location keys used for UI binding and colors.
package locations

import (
	"strings"

	"github.com/chrissnell/canalwatch/internal/types"
)

// Resolver resolves service-supplied location identities to canonical keys.
//
// Resolution is explicit first: a stable id equal to a canonical key, then
// an exact (case-insensitive) display name or alias.  Only when neither
// matches does it fall back to the substring heuristic in Key, which can map
// two different names onto the same key.  A stable id from the service makes
// the heuristic unnecessary.
type Resolver struct {
	locations []types.Location
	byKey     map[string]types.Location
	byName    map[string]string
}

// NewResolver builds a resolver over the canonical set.  Substring rules are
// tried in the order the locations are given.
func NewResolver(locations []types.Location) *Resolver {
	r := &Resolver{
		locations: locations,
		byKey:     make(map[string]types.Location, len(locations)),
		byName:    make(map[string]string),
	}
	for _, loc := range locations {
		r.byKey[loc.Key] = loc
		r.byName[strings.ToLower(loc.Name)] = loc.Key
		for _, alias := range loc.Aliases {
			r.byName[strings.ToLower(alias)] = loc.Key
		}
	}
	return r
}

// Lookup returns the canonical location for key
func (r *Resolver) Lookup(key string) (types.Location, bool) {
	loc, ok := r.byKey[key]
	return loc, ok
}

// Resolve returns the canonical key for a snapshot
func (r *Resolver) Resolve(s types.LocationSnapshot) string {
	if _, ok := r.byKey[s.LocationID]; ok {
		return s.LocationID
	}
	if key, ok := r.byName[strings.ToLower(strings.TrimSpace(s.Location))]; ok {
		return key
	}
	return r.Key(s.Location)
}

// Key applies the substring heuristic to a free-form name.  The first
// location whose match substring occurs in the lowercased name wins,
// regardless of where in the name the substring appears.  Names matching no
// rule are lowercased and stripped of everything outside a-z.  Empty input
// maps to the empty key.
func (r *Resolver) Key(name string) string {
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	for _, loc := range r.locations {
		if loc.Match != "" && strings.Contains(lower, strings.ToLower(loc.Match)) {
			return loc.Key
		}
	}

	return Sanitize(lower)
}

// Sanitize lowercases s and drops every rune outside a-z
func Sanitize(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, c := range lower {
		if c >= 'a' && c <= 'z' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
