package domain

// CheckKind discriminates the availability check variants.
type CheckKind int

const (
	// CheckTruthy asserts the extracted value is neither nil nor false.
	CheckTruthy CheckKind = iota
	// CheckFalsy asserts the extracted value is nil or false.
	CheckFalsy
	// CheckEqual asserts two extracted values are deeply equal.
	CheckEqual
	// CheckNotEqual asserts two extracted values differ.
	CheckNotEqual
	// CheckNil asserts the extracted value is nil.
	CheckNil
	// CheckNotNil asserts the extracted value is non-nil.
	CheckNotNil
	// CheckEmpty asserts the extracted collection-like value has no elements.
	CheckEmpty
	// CheckNotEmpty asserts the extracted collection-like value has elements.
	CheckNotEmpty
	// CheckCapability delegates to the configured authorization backend.
	CheckCapability
)

// Valuer extracts a value from the current call. Checks hold Valuers
// rather than values because availability is evaluated per call.
type Valuer func(call *Call) any

// Lit returns a Valuer yielding a fixed value.
func Lit(v any) Valuer { return func(*Call) any { return v } }

// Arg returns a Valuer yielding the named call argument.
func Arg(name string) Valuer { return func(c *Call) any { return c.Arg(name) } }

// Subject returns a Valuer yielding the call subject.
func Subject() Valuer { return func(c *Call) any { return c.Subject } }

// PrincipalAttr returns a Valuer yielding an attribute of the calling
// principal (nil for guests).
func PrincipalAttr(key string) Valuer {
	return func(c *Call) any {
		if c == nil {
			return nil
		}
		return c.Principal.Attr(key)
	}
}

// Check is one availability assertion on an action. Checks run in
// declaration order and evaluation stops at the first failure; the failing
// check's Message becomes the denial reason shown to the caller.
type Check struct {
	Kind    CheckKind
	Message string

	// Value is the primary operand. Other is the second operand for the
	// (in)equality kinds.
	Value Valuer
	Other Valuer

	// Capability and Subject parameterize CheckCapability.
	Capability string
	Subject    Valuer
}

// Truthy asserts v extracts to a truthy value (anything but nil or false).
func Truthy(v Valuer, message string) Check {
	return Check{Kind: CheckTruthy, Value: v, Message: message}
}

// Falsy asserts v extracts to nil or false.
func Falsy(v Valuer, message string) Check {
	return Check{Kind: CheckFalsy, Value: v, Message: message}
}

// Equal asserts a and b extract to deeply equal values.
func Equal(a, b Valuer, message string) Check {
	return Check{Kind: CheckEqual, Value: a, Other: b, Message: message}
}

// NotEqual asserts a and b extract to different values.
func NotEqual(a, b Valuer, message string) Check {
	return Check{Kind: CheckNotEqual, Value: a, Other: b, Message: message}
}

// IsNil asserts v extracts to nil.
func IsNil(v Valuer, message string) Check {
	return Check{Kind: CheckNil, Value: v, Message: message}
}

// NotNil asserts v extracts to a non-nil value.
func NotNil(v Valuer, message string) Check {
	return Check{Kind: CheckNotNil, Value: v, Message: message}
}

// Empty asserts v extracts to an empty collection-like value
// (string, slice, array, map or channel; nil counts as empty).
func Empty(v Valuer, message string) Check {
	return Check{Kind: CheckEmpty, Value: v, Message: message}
}

// NotEmpty asserts v extracts to a non-empty collection-like value.
func NotEmpty(v Valuer, message string) Check {
	return Check{Kind: CheckNotEmpty, Value: v, Message: message}
}

// Can delegates to the authorization backend: the calling principal must
// hold the named capability over the extracted subject. A nil subject
// Valuer defaults to the call subject.
func Can(capability string, subject Valuer, message string) Check {
	if subject == nil {
		subject = Subject()
	}
	return Check{Kind: CheckCapability, Capability: capability, Subject: subject, Message: message}
}
