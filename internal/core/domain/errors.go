package domain

import "fmt"

// InvalidInputError reports a malformed input such as a forecast sequence of
// the wrong length or an out-of-range signal. Recovered locally by skipping
// the tick.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// PersistenceError reports a durable store read/write failure. In-memory
// bias state is rolled back before this error is returned so that no
// unpersisted drift survives.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or nonsensical static parameter.
// Fatal at startup.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config param %s: %s", e.Param, e.Reason)
}
