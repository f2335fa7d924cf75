package delivery

import "errors"

var (
	// ErrScreenNotFound indicates the presented device key matches no
	// active screen.
	ErrScreenNotFound = errors.New("screen not found")

	// ErrNoContentAssigned indicates a valid screen with no resolvable
	// playlist: no matching schedule rule, no direct assignment, no tenant
	// default. Distinct from ErrScreenNotFound so players can show a
	// waiting state instead of a broken-pairing error.
	ErrNoContentAssigned = errors.New("no content assigned to screen")
)

// IsScreenNotFound checks if the error is an unknown-device error.
func IsScreenNotFound(err error) bool {
	return errors.Is(err, ErrScreenNotFound)
}

// IsNoContentAssigned checks if the error is the empty-assignment state.
func IsNoContentAssigned(err error) bool {
	return errors.Is(err, ErrNoContentAssigned)
}
