package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when attempting to get or delete an item that does
// not exist.
var ErrNotFound = errors.New("not found")

// A ConcurrentRunError is returned when the state database is locked by
// another run. The state is never mutated by more than one run at a time, so
// the run holding the lock must finish before a new one can start.
type ConcurrentRunError struct {
	File string
}

func (e ConcurrentRunError) Error() string {
	return fmt.Sprintf("state %s is locked by another run", e.File)
}
