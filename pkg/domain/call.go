package domain

// Principal identifies the authenticated caller. A nil *Principal on a
// Call means the call is made as a guest.
type Principal struct {
	ID    string         `json:"id"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Attr returns a principal attribute, or nil when absent.
func (p *Principal) Attr(key string) any {
	if p == nil || p.Attrs == nil {
		return nil
	}
	return p.Attrs[key]
}

// Call is the per-invocation context an action is evaluated against:
// who is calling, what they are acting on, and with which arguments.
// Availability checks read from it; it is never shared across calls.
type Call struct {
	// Principal is the authenticated caller, or nil for a guest.
	Principal *Principal
	// Subject is the object the action targets, if any.
	Subject any
	// Args are the invocation arguments passed through to Perform/Prepare.
	Args map[string]any
}

// Authenticated reports whether a principal is attached to the call.
func (c *Call) Authenticated() bool {
	return c != nil && c.Principal != nil
}

// Arg returns a named argument, or nil when absent.
func (c *Call) Arg(name string) any {
	if c == nil || c.Args == nil {
		return nil
	}
	return c.Args[name]
}
