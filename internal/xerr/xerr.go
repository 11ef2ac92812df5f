// Package xerr defines the error taxonomy from the engine's error-handling
// design: a fixed set of sentinel kinds usable with errors.Is, plus enough
// context (table/column/row) to let the orchestrator report a useful
// one-line message without a stack trace.
package xerr

import (
	"errors"
	"fmt"
)

// Kind is one of the error taxonomy entries. Sentinel errors, not types:
// callers compare with errors.Is against the package-level vars below.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindConnection        Kind = "connection"
	KindTransient         Kind = "transient"
	KindSchemaTranslation Kind = "schema_translation"
	KindDataConversion    Kind = "data_conversion"
	KindDestination       Kind = "destination"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrConnection        = errors.New("connection error")
	ErrTransient         = errors.New("transient connection loss")
	ErrSchemaTranslation = errors.New("schema translation error")
	ErrDataConversion    = errors.New("data conversion error")
	ErrDestination       = errors.New("destination error")
)

// kindToSentinel keeps Of(err) cheap and total.
var kindToSentinel = map[Kind]error{
	KindConfiguration:     ErrConfiguration,
	KindConnection:        ErrConnection,
	KindTransient:         ErrTransient,
	KindSchemaTranslation: ErrSchemaTranslation,
	KindDataConversion:    ErrDataConversion,
	KindDestination:       ErrDestination,
}

// Of reports the taxonomy Kind of err, or "" if err does not match any
// sentinel in the taxonomy.
func Of(err error) Kind {
	for k, sentinel := range kindToSentinel {
		if errors.Is(err, sentinel) {
			return k
		}
	}
	return ""
}

// SchemaError reports a schema-translation failure naming the offending
// table and column, per the error-handling design's requirement that such
// errors carry table/column context.
func SchemaError(table, column string, cause error) error {
	return fmt.Errorf("%w: %s.%s: %v", ErrSchemaTranslation, table, column, cause)
}

// DataError reports a data-conversion failure naming table, column, and row
// ordinal.
func DataError(table, column string, rowOrdinal int64, cause error) error {
	return fmt.Errorf("%w: %s.%s (row %d): %v", ErrDataConversion, table, column, rowOrdinal, cause)
}

// Configuration wraps a configuration error naming the offending flag.
func Configuration(flag, reason string) error {
	return fmt.Errorf("%w: -%s: %s", ErrConfiguration, flag, reason)
}
