package syncrun

import "errors"

var (
	// ErrRunNotFound is returned when a run does not exist
	ErrRunNotFound = errors.New("sync run not found")

	// ErrRunFinalized is returned when a terminal run is mutated again
	ErrRunFinalized = errors.New("sync run already finalized")

	ErrInvalidType   = errors.New("invalid sync type")
	ErrInvalidSource = errors.New("invalid sync source")
	ErrInvalidStatus = errors.New("invalid sync status")
)
