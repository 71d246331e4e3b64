package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across TAGX.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"

	// Files and paths
	FieldFile   = "file"
	FieldFormat = "format"

	// TAGX-specific
	FieldTagType     = "tag_type"    // Qualified tag type name
	FieldAttribute   = "attribute"   // Attribute name on a tag type
	FieldDistance    = "distance"    // Meta-tag distance from the root mapping
	FieldMappings    = "mappings"    // Mapping count in a built tree
	FieldFingerprint = "fingerprint" // Structural fingerprint of a mapping tree
	FieldFilter      = "filter"      // Active type-name filter key
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	func New(...) *Registry {
//	    return &Registry{
//	        log: logger.ComponentLogger("mts.registry"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	buildLog := logger.ChildLogger(baseLogger, logger.FieldTagType, name)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
