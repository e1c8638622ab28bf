// Package auth resolves which identities hold the administrator role.
package auth

import "sort"

// Roles is a capability lookup for administrator identities. The set comes
// from configuration; nothing in the flows compares against a single
// hard-coded id.
type Roles struct {
	admins map[int64]struct{}
}

// NewRoles builds a role lookup from the configured admin identities.
func NewRoles(adminIDs []int64) *Roles {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id != 0 {
			admins[id] = struct{}{}
		}
	}
	return &Roles{admins: admins}
}

// IsAdmin reports whether the identity may use the admin dialog.
func (r *Roles) IsAdmin(id int64) bool {
	_, ok := r.admins[id]
	return ok
}

// AdminIDs returns the authorized identities in stable order.
func (r *Roles) AdminIDs() []int64 {
	out := make([]int64, 0, len(r.admins))
	for id := range r.admins {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
