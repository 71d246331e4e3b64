// Package errors provides error handling for TAGX.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrMirrorConflict) {
//	    // handle conflicting mirror values
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	Mark      = crdb.Mark
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the merged tag system.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrAlreadyExists indicates a registration conflict (e.g., duplicate tag type)
	ErrAlreadyExists = New("already exists")

	// ErrConfiguration is the base class of all tag declaration errors.
	// Every structural error below wraps it, so callers can branch on the
	// whole family with a single Is check.
	ErrConfiguration = New("tag configuration error")

	// ErrConflictingAliasSpecifiers indicates an alias declaration set both
	// the attribute field and its value synonym
	ErrConflictingAliasSpecifiers = Wrap(ErrConfiguration, "conflicting alias specifiers")

	// ErrMissingAliasTarget indicates an alias points at an attribute that
	// does not exist on the target tag type
	ErrMissingAliasTarget = Wrap(ErrConfiguration, "missing alias target")

	// ErrSelfReferentialAlias indicates an alias points back at its own attribute
	ErrSelfReferentialAlias = Wrap(ErrConfiguration, "self-referential alias")

	// ErrIncompatibleAliasTypes indicates aliased attributes declare
	// incompatible value types
	ErrIncompatibleAliasTypes = Wrap(ErrConfiguration, "incompatible alias types")

	// ErrMisconfiguredAliasPair indicates a same-type alias whose target
	// declares an alias pointing somewhere else
	ErrMisconfiguredAliasPair = Wrap(ErrConfiguration, "misconfigured alias pair")

	// ErrUnclaimedAlias indicates an alias target that is not meta-present
	// anywhere in the tag hierarchy
	ErrUnclaimedAlias = Wrap(ErrConfiguration, "unclaimed alias")

	// ErrInconsistentMirrorDefaults indicates mirrored attributes with
	// missing or differing default values
	ErrInconsistentMirrorDefaults = Wrap(ErrConfiguration, "inconsistent mirror defaults")

	// ErrMirrorConflict indicates a concrete instance holds different
	// non-default values for mirrored attributes. Unlike the structural
	// errors above it is scoped to one instance, not the tag type.
	ErrMirrorConflict = New("mirror attribute conflict")

	// ErrNoSuchAttribute indicates a query named an attribute the tag type
	// does not declare. Recoverable: callers may treat it as absence.
	ErrNoSuchAttribute = New("no such attribute")

	// ErrAttributeType indicates a typed accessor was used against an
	// attribute of a different declared type
	ErrAttributeType = New("attribute type mismatch")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsConfigurationError checks if an error belongs to the tag declaration
// error family (alias and mirror declaration problems)
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsMirrorConflict checks if an error is or wraps ErrMirrorConflict
func IsMirrorConflict(err error) bool {
	return err != nil && Is(err, ErrMirrorConflict)
}

// IsNoSuchAttribute checks if an error is or wraps ErrNoSuchAttribute
func IsNoSuchAttribute(err error) bool {
	return err != nil && Is(err, ErrNoSuchAttribute)
}

// NewConfigurationError creates a structural declaration error with a
// formatted message, preserving the ErrConfiguration family mark
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}

// WrapNoSuchAttribute wraps a missing-attribute error with the attribute
// and tag type names preserved in the message
func WrapNoSuchAttribute(tagType, attribute string) error {
	return Wrapf(ErrNoSuchAttribute, "attribute %q on tag type %q", attribute, tagType)
}
