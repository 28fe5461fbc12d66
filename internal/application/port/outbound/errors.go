package outbound

import (
	"errors"
	"fmt"
)

var (
	ErrPersistence   = errors.New("persistence failure")
	ErrConfiguration = errors.New("configuration error")
	ErrDisposed      = errors.New("unit of work is disposed")
)

// PersistenceError reports a failed commit. Every change staged for that
// commit has been discarded by the time the caller sees it.
type PersistenceError struct {
	Op    string
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
