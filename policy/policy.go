// Package policy decides what a principal may see. Every list, detail and
// statistics operation asks it instead of branching on roles itself.
package policy

import (
	"github.com/Krish-Depani/mold-tracker/models"
)

// Principal is the authenticated caller as supplied by the auth middleware.
type Principal struct {
	ID   uint
	Role models.Role
}

// Privileged reports whether the principal may see every user's records.
func (p Principal) Privileged() bool {
	return p.Role != models.RoleWorker
}

// Scope narrows a query to one owner, or to nobody in particular when OwnerID is nil.
type Scope struct {
	OwnerID *uint
}

func (s Scope) All() bool {
	return s.OwnerID == nil
}

// ListScope returns the scope applied to list and statistics queries. A
// requested owner filter is honoured only for privileged principals.
func ListScope(p Principal, requestedOwner *uint) Scope {
	if !p.Privileged() {
		id := p.ID
		return Scope{OwnerID: &id}
	}
	return Scope{OwnerID: requestedOwner}
}

type Decision int

const (
	Allow Decision = iota
	// Deny means the caller may know the record exists but not read it.
	Deny
	// Hide means the record must be reported as not found.
	Hide
)

// CanView governs detail reads: workers get Deny on other users' records.
func CanView(p Principal, ownerID uint) Decision {
	if p.Privileged() || p.ID == ownerID {
		return Allow
	}
	return Deny
}

// CanMutate governs state changes on owned records. Only the owner may act,
// and everyone else is told the record does not exist.
func CanMutate(p Principal, ownerID uint) Decision {
	if p.ID == ownerID {
		return Allow
	}
	return Hide
}

// CanEdit governs edits to inspection records. Workers may edit only their
// own and get Deny on anyone else's.
func CanEdit(p Principal, ownerID uint) Decision {
	if p.Role != models.RoleWorker || p.ID == ownerID {
		return Allow
	}
	return Deny
}

// CanReview reports whether the principal may approve or reject inspections.
func CanReview(p Principal) bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleHQStaff
}
