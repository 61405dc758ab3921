package auth

import (
	"sort"
	"strings"
)

// AccessKind classifies what a route requires.
type AccessKind int

const (
	// AccessPublic routes need no credential at all.
	AccessPublic AccessKind = iota
	// AccessAuthenticated routes accept any valid principal.
	AccessAuthenticated
	// AccessRoles routes accept principals whose role is in the rule's set.
	AccessRoles
)

// PolicyRule binds a path prefix to an access requirement.
type PolicyRule struct {
	Prefix string
	Kind   AccessKind
	Roles  []Role
}

// Public builds a rule that lets requests through without a credential.
func Public(prefix string) PolicyRule {
	return PolicyRule{Prefix: prefix, Kind: AccessPublic}
}

// Authenticated builds a rule that requires any valid principal.
func Authenticated(prefix string) PolicyRule {
	return PolicyRule{Prefix: prefix, Kind: AccessAuthenticated}
}

// RoleIn builds a rule that requires the principal's role to be in the set.
func RoleIn(prefix string, roles ...Role) PolicyRule {
	return PolicyRule{Prefix: prefix, Kind: AccessRoles, Roles: roles}
}

// PolicyTable is the process-wide route policy: an ordered list of
// (prefix, rule) pairs matched most-specific-prefix first, first match wins.
// It is built once at startup and never mutated, so unsynchronized concurrent
// reads are safe.
type PolicyTable struct {
	rules []PolicyRule
}

// NewPolicyTable builds an immutable policy table. Rules are ordered by
// descending prefix length so the most specific prefix matches first.
// Requests matching no rule fall back to AccessAuthenticated.
func NewPolicyTable(rules ...PolicyRule) *PolicyTable {
	ordered := make([]PolicyRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})
	return &PolicyTable{rules: ordered}
}

// Match returns the rule governing the given request path.
func (t *PolicyTable) Match(path string) PolicyRule {
	for _, r := range t.rules {
		if matchPrefix(path, r.Prefix) {
			return r
		}
	}
	return PolicyRule{Prefix: "", Kind: AccessAuthenticated}
}

// matchPrefix reports whether path falls under prefix on a path-segment
// boundary, so "/api/v1/records" does not capture "/api/v1/recordsets".
func matchPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
