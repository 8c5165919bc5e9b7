package coin

import (
	"errors"
	"fmt"
)

// Set of error variables for the coin core.
var (
	ErrInvalidAddress   = errors.New("Invalid Address")
	ErrMethodNotAllowed = errors.New("rpc method not allowed")
)

// ParseError is returned when a submitted spend bundle is malformed.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (pe *ParseError) Error() string {
	return fmt.Sprintf("invalid spend bundle: %s", pe.Err)
}

// Unwrap returns the underlying error.
func (pe *ParseError) Unwrap() error {
	return pe.Err
}

// ValidationError is returned when the node rejects a spend bundle. The
// message is the node's reason.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return ve.Message
}

// UpstreamError is returned when the node can't answer a query.
type UpstreamError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (ue *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", ue.Op, ue.Err)
}

// Unwrap returns the underlying error.
func (ue *UpstreamError) Unwrap() error {
	return ue.Err
}
