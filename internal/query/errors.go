package query

import "errors"

// Configuration errors. Operations that return one of these leave the
// pipeline state as it was.
var (
	ErrIllegalOperator  = errors.New("operator not allowed for field type")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrInvalidRange     = errors.New("between requires a [min, max] pair")
	ErrInvalidPageSize  = errors.New("items per page must be greater than 0")
	ErrDuplicateSortKey = errors.New("duplicate sort key")
	ErrInvalidDirection = errors.New("sort direction must be asc or desc")
	ErrEmptyField       = errors.New("field name cannot be empty")
)
