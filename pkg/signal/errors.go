package signal

import (
	"errors"
	"fmt"
)

// ErrUpdating is matched by the error returned when a cell is written
// while it is not idle (a notification pass or an initial subscribe call
// is still running).
var ErrUpdating = errors.New("signal: cell is updating")

// ErrUninitialized is returned when a cell created with Uninit is read or
// mutated before its first Set.
var ErrUninitialized = errors.New("signal: cell read before first set")

// UpdatingError describes a rejected reentrant write.
type UpdatingError struct {
	// Cell is the cell name, empty for anonymous cells.
	Cell string

	// State is the state the cell was in when the write was rejected.
	State State
}

// Error implements the error interface.
func (e *UpdatingError) Error() string {
	if e.Cell == "" {
		return fmt.Sprintf("signal: cell is %s", e.State)
	}
	return fmt.Sprintf("signal: cell %q is %s", e.Cell, e.State)
}

// Is reports whether target is ErrUpdating.
func (e *UpdatingError) Is(target error) bool {
	return target == ErrUpdating
}
