package models

import "slices"

// Grant is one permission level on a shared folder.
type Grant string

const (
	GrantRead   Grant = "read"
	GrantWrite  Grant = "write"
	GrantDelete Grant = "delete"
)

// AllGrants lists the grants in display order.
var AllGrants = []Grant{GrantRead, GrantWrite, GrantDelete}

// Valid reports whether g is a known grant.
func (g Grant) Valid() bool {
	return slices.Contains(AllGrants, g)
}

// Permission is the set of grants one email holds on a folder.
type Permission struct {
	Email  string  `json:"email"`
	Grants []Grant `json:"permissions"`
}

// Has reports whether the permission includes g.
func (p Permission) Has(g Grant) bool {
	return slices.Contains(p.Grants, g)
}

// PermissionLists is the backend's change_permission payload: one email list per grant.
type PermissionLists struct {
	AllowRead   []string `json:"allow_read"`
	AllowWrite  []string `json:"allow_write"`
	AllowDelete []string `json:"allow_delete"`
}

// ToLists flattens per-email permissions into per-grant email lists.
func ToLists(perms []Permission) PermissionLists {
	lists := PermissionLists{
		AllowRead:   []string{},
		AllowWrite:  []string{},
		AllowDelete: []string{},
	}
	for _, p := range perms {
		if p.Has(GrantRead) {
			lists.AllowRead = append(lists.AllowRead, p.Email)
		}
		if p.Has(GrantWrite) {
			lists.AllowWrite = append(lists.AllowWrite, p.Email)
		}
		if p.Has(GrantDelete) {
			lists.AllowDelete = append(lists.AllowDelete, p.Email)
		}
	}
	return lists
}
