// Package guard provides a constructor guard for value objects and commands.
// Embedding a ConstructorGuard lets a type detect whether it was created
// through its designated constructor or as a zero value, so invariants
// established during construction cannot be bypassed.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a nil validation
// error is supplied for an unconstructed object.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as properly constructed. The zero value
// fails validation, which is the whole point.
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard in the constructed state. Call this in
// every constructor of a guarded type.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil if the object was created via its constructor.
// For a zero-value guard it returns validationError, or
// ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
