package epoch

import "errors"

var (
	// ErrNotFound is returned by GetEpoch/ReplayPathTo when the
	// requested epoch or node does not exist.
	ErrNotFound = errors.New("epoch: not found")
	// ErrUnreachable is returned by ReplayPathTo when a node exists but
	// no path to a root could be reconstructed.
	ErrUnreachable = errors.New("epoch: node unreachable from any root")
	// ErrClearDisabled is returned by Clear when the projector was
	// configured with AllowClear=false.
	ErrClearDisabled = errors.New("epoch: clear is disabled for this projector")
	// ErrInvalidArgument is returned for malformed inputs such as an
	// empty branch set.
	ErrInvalidArgument = errors.New("epoch: invalid argument")
)
