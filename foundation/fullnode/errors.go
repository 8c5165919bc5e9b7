package fullnode

import "fmt"

// ResponseError is returned when the node answers a call with its success
// flag unset. The message is the node's own error text.
type ResponseError struct {
	Method  string
	Message string
}

// Error implements the error interface.
func (re *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", re.Method, re.Message)
}

// ConnectionError is returned when the node can't be reached or its answer
// can't be understood.
type ConnectionError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (ce *ConnectionError) Error() string {
	return fmt.Sprintf("full node %s: %s", ce.Op, ce.Err)
}

// Unwrap returns the underlying error.
func (ce *ConnectionError) Unwrap() error {
	return ce.Err
}
