package llm

import "fmt"

// TransportError reports a failure talking to the model endpoint, either
// while opening the request or while reading the response stream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
