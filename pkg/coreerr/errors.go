// Package coreerr defines the single tagged error taxonomy returned from
// every public core operation (spec §4.10). Callers switch on Kind rather
// than sentinel-matching many distinct error types.
package coreerr

import "fmt"

// Kind is the closed set of error categories the core can return.
type Kind string

const (
	KindUnknownSystem       Kind = "unknown_system"
	KindInvalidRequest      Kind = "invalid_request"
	KindUnreachableGoal     Kind = "unreachable_goal"
	KindDatasetFormat       Kind = "dataset_format"
	KindIoError             Kind = "io_error"
	KindIndexCorrupt        Kind = "index_corrupt"
	KindIndexStale          Kind = "index_stale"
	KindIndexLegacy         Kind = "index_legacy"
	KindIndexMissing        Kind = "index_missing"
	KindShipDataValidation  Kind = "ship_data_validation"
	KindFmapInvalid         Kind = "fmap_invalid"
)

// Error is the single tagged sum type surfaced by every public operation.
// Fields beyond Kind and Message are optional context, populated per-kind.
type Error struct {
	Kind Kind

	// UnknownSystem
	Query       string
	Suggestions []string

	// InvalidRequest / ShipDataValidation
	Field  string
	Reason string
	Row    int // ShipDataValidation only; 0 means "not row-scoped"

	// DatasetFormat / IoError / IndexCorrupt / IndexMissing
	Path   string
	Detail string

	// wrapped underlying cause, if any (disk errors, decompression, etc.)
	Cause error

	// plain message fallback for kinds without structured fields
	Message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknownSystem:
		return fmt.Sprintf("unknown system %q (suggestions: %v)", e.Query, e.Suggestions)
	case KindInvalidRequest:
		return fmt.Sprintf("invalid request: field %q: %s", e.Field, e.Reason)
	case KindUnreachableGoal:
		return "unreachable goal"
	case KindDatasetFormat:
		return fmt.Sprintf("dataset format error: %s", e.Detail)
	case KindIoError:
		return fmt.Sprintf("io error at %q: %v", e.Path, e.Cause)
	case KindIndexCorrupt:
		return fmt.Sprintf("spatial index corrupt at %q: %s", e.Path, e.Detail)
	case KindIndexStale:
		return fmt.Sprintf("spatial index at %q is stale: %s", e.Path, e.Detail)
	case KindIndexLegacy:
		return fmt.Sprintf("spatial index at %q is legacy (v1, no metadata): %s", e.Path, e.Message)
	case KindIndexMissing:
		return fmt.Sprintf("spatial index missing at %q", e.Path)
	case KindShipDataValidation:
		if e.Row > 0 {
			return fmt.Sprintf("ship data validation: row %d, field %q: %s", e.Row, e.Field, e.Reason)
		}
		return fmt.Sprintf("ship data validation: field %q: %s", e.Field, e.Reason)
	case KindFmapInvalid:
		return fmt.Sprintf("fmap invalid: %s", e.Reason)
	default:
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// do errors.Is(err, &coreerr.Error{Kind: coreerr.KindUnreachableGoal}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func UnknownSystem(query string, suggestions []string) *Error {
	return &Error{Kind: KindUnknownSystem, Query: query, Suggestions: suggestions}
}

func InvalidRequest(field, reason string) *Error {
	return &Error{Kind: KindInvalidRequest, Field: field, Reason: reason}
}

func UnreachableGoal() *Error {
	return &Error{Kind: KindUnreachableGoal}
}

func DatasetFormat(detail string) *Error {
	return &Error{Kind: KindDatasetFormat, Detail: detail}
}

func IoError(path string, cause error) *Error {
	return &Error{Kind: KindIoError, Path: path, Cause: cause}
}

func IndexCorrupt(path, detail string) *Error {
	return &Error{Kind: KindIndexCorrupt, Path: path, Detail: detail}
}

func IndexStale(path, detail string) *Error {
	return &Error{Kind: KindIndexStale, Path: path, Detail: detail}
}

func IndexLegacy(path, message string) *Error {
	return &Error{Kind: KindIndexLegacy, Path: path, Message: message}
}

func IndexMissing(path string) *Error {
	return &Error{Kind: KindIndexMissing, Path: path}
}

func ShipDataValidation(row int, field, reason string) *Error {
	return &Error{Kind: KindShipDataValidation, Row: row, Field: field, Reason: reason}
}

func FmapInvalid(reason string) *Error {
	return &Error{Kind: KindFmapInvalid, Reason: reason}
}
