package csvimport

import (
	"errors"
	"fmt"
)

// Decode error codes
const (
	ErrCodeDecodeInvalidFile  = "ERR_DECODE_INVALID_FILE"
	ErrCodeDecodeEmptyFile    = "ERR_DECODE_EMPTY_FILE"
	ErrCodeDecodeMalformedRow = "ERR_DECODE_MALFORMED_ROW"
	ErrCodeDecodeInvalidType  = "ERR_DECODE_INVALID_TYPE"
)

var (
	// ErrMissingHeader is returned when the header line has no fields
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrNoDataRows is returned when the artifact has a header but no data rows
	ErrNoDataRows = errors.New("CSV file contains no data rows")
)

// RowError describes a problem with one value of one data row.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewTypeError creates a RowError for a value that does not parse as the expected type
func NewTypeError(row int, column, expectedType, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    ErrCodeDecodeInvalidType,
		Message: fmt.Sprintf("expected %s", expectedType),
		Value:   value,
	}
}
