package policy

import "context"

// Ownable is an interface for resources that have an owner.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows a user to act only on resources they own.
// Works with any model that implements the Ownable interface.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource.
// For list/create actions (resource is nil) it returns true: those queries
// are already scoped to the user.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	// Resources without an owner are denied.
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}
