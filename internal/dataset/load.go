// Package dataset provides the loaded achievement table and its accessors.
// This file implements the loader: pure I/O plus schema validation, no
// filtering or transformation.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/parquet-go/parquet-go"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

// Error codes for dataset load failures
const (
	ErrCodeSourceMissing    = "SOURCE_MISSING"
	ErrCodeSourceUnreadable = "SOURCE_UNREADABLE"
	ErrCodeSchemaMismatch   = "SCHEMA_MISMATCH"
	ErrCodeInvalidRecord    = "INVALID_RECORD"
)

// LoadError describes a failure to load the persisted table.
// Load failures are fatal at startup; the pipeline never runs without
// a successfully loaded table.
type LoadError struct {
	// Code is the error code (SOURCE_MISSING, SCHEMA_MISMATCH, ...)
	Code string
	// Path is the source file path
	Path string
	// Message is the human-readable error message
	Message string
	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %s", e.Path, e.Code, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the persisted parquet table at path into an immutable Table.
// It validates that every record carries the join key and nothing else;
// ranking-row exclusion is the refresh step's responsibility.
func Load(path string) (*Table, error) {
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, classifyReadError(path, err)
	}

	for i, r := range records {
		if r.UserId == 0 {
			return nil, &LoadError{
				Code:    ErrCodeInvalidRecord,
				Path:    path,
				Message: fmt.Sprintf("record %d: missing join key UserId", i),
			}
		}
	}

	logger.WithDataset(path).Info("dataset loaded", "records", len(records))

	return NewTable(records), nil
}

// classifyReadError maps a parquet read failure to a coded LoadError.
func classifyReadError(path string, err error) *LoadError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{
			Code:    ErrCodeSourceMissing,
			Path:    path,
			Message: "source table does not exist",
			Err:     err,
		}
	case errors.Is(err, fs.ErrPermission):
		return &LoadError{
			Code:    ErrCodeSourceUnreadable,
			Path:    path,
			Message: "source table is not readable",
			Err:     err,
		}
	default:
		// Anything parquet rejects (corrupt file, missing or mistyped
		// columns) surfaces as a schema mismatch.
		return &LoadError{
			Code:    ErrCodeSchemaMismatch,
			Path:    path,
			Message: fmt.Sprintf("source table unreadable or schema mismatch: %v", err),
			Err:     err,
		}
	}
}
