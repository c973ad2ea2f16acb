package sde

import "fmt"

// ErrorKind classifies a load failure.
type ErrorKind int

const (
	// ErrMissingTable means a required snapshot table does not exist.
	ErrMissingTable ErrorKind = iota
	// ErrBadRow means a row could not be read in the expected column shape.
	ErrBadRow
	// ErrDuplicateID means two rows of one table share an ID.
	ErrDuplicateID
	// ErrDanglingReference means a foreign key did not resolve to a loaded parent.
	ErrDanglingReference
	// ErrEmptyTable means a required table produced no rows.
	ErrEmptyTable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingTable:
		return "missing table"
	case ErrBadRow:
		return "bad row"
	case ErrDuplicateID:
		return "duplicate id"
	case ErrDanglingReference:
		return "dangling reference"
	case ErrEmptyTable:
		return "empty table"
	default:
		return "load error"
	}
}

// LoadError is a fatal snapshot load failure. A partially loaded universe
// is never returned alongside one.
type LoadError struct {
	Kind  ErrorKind
	Table string
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Table, e.Kind, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.Table, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// RowError is a single malformed or unresolvable row. Under the
// fail-fast policy it aborts the load (wrapped in a LoadError); under
// skip-and-report it is collected in Result.Skipped.
type RowError struct {
	Table string
	// Key is the row's primary identifier when it could be read, 0 otherwise.
	Key   int64
	Cause error
}

func (e *RowError) Error() string {
	if e.Key != 0 {
		return fmt.Sprintf("%s row %d: %v", e.Table, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s row: %v", e.Table, e.Cause)
}

func (e *RowError) Unwrap() error { return e.Cause }
