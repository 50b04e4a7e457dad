// Package policy provides the Gate/Policy authorization used to decide
// whether a user may act on a resource. Every CoreQuote resource is private
// to its owner, so the registered policies are ownership checks.
package policy

import (
	"context"
	"errors"
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionExport Action = "export"
)

// Resource type names used when registering policies.
const (
	ResourceClient  = "client"
	ResourceItem    = "item"
	ResourceQuote   = "quote"
	ResourceReport  = "report"
	ResourceCompany = "company_profile"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy defines authorization rules for a resource type.
// U is the user/subject type (uint user ids here).
type Policy[U any] interface {
	// Can returns true if user is authorized to perform action on resource.
	// For list/create, resource may be nil (context-only check).
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// Gate is the central authorization checkpoint.
// Register policies by resource type name, then call Authorize or Can.
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a given resource type (e.g., "quote").
// Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for a zero-value user or a denied action,
// and ErrNoPolicyDefined if resourceType has no registered policy.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// NewOwnerGate returns a gate with the ownership policy registered for every
// CoreQuote resource type.
func NewOwnerGate() *Gate[uint] {
	g := NewGate[uint]()
	owner := NewOwnershipPolicy()
	for _, rt := range []string{ResourceClient, ResourceItem, ResourceQuote, ResourceReport, ResourceCompany} {
		g.Register(rt, owner)
	}
	return g
}
