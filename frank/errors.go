package frank

import "fmt"

// TransportError means the price API could not be reached, timed out,
// or answered with a non-OK status. Retrying later may help.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("price api %s: got status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("price api %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError means a response arrived but did not look like market
// prices. Retrying will not help until the upstream API changes back.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("price api schema: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("price api schema: %s", e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
