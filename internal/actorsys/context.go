package actorsys

import "weak"

// Context is handed to an actor's handlers for the duration of message
// processing. It bundles the actor's stable id with a non-owning reference
// back to the owning System, so handlers can perform further lookups or
// sends without the System and its actors forming an uncollectable
// reference cycle (system -> registry -> supervisor -> Context -> system).
//
// The back-reference is a weak.Pointer rather than a strong *System: the
// System owns the registry which owns the supervisors which own their
// Context values, so a strong pointer the other way would keep the System
// alive forever once a single actor existed. System upgrades on demand via
// System(); if the owning System has since been garbage collected the
// lookup fails with ErrSystemGone.
type Context struct {
	id  ActorId
	sys weak.Pointer[System]
}

// newContext constructs a Context bound to the given actor id and a
// non-owning reference to sys.
func newContext(id ActorId, sys *System) *Context {
	return &Context{
		id:  id,
		sys: weak.Make(sys),
	}
}

// ID returns the stable id of the actor this Context belongs to.
func (c *Context) ID() ActorId {
	return c.id
}

// System upgrades the weak back-reference to the owning System. It fails
// with ErrSystemGone if the System has already been garbage collected,
// which can only happen once no strong reference to it remains anywhere in
// the host program (a running System is always strongly reachable from
// whoever constructed it).
func (c *Context) System() (*System, error) {
	sys := c.sys.Value()
	if sys == nil {
		return nil, ErrSystemGone
	}
	return sys, nil
}
