package pairing

import "errors"

var (
	// ErrCodeNotFound indicates no pairing record exists for the code.
	ErrCodeNotFound = errors.New("pairing code not found")

	// ErrCodeExpired indicates the code's TTL has elapsed; the device will
	// request a fresh one on its next register call.
	ErrCodeExpired = errors.New("pairing code expired")

	// ErrAlreadyPaired indicates a second claim on a code that already
	// completed. Deliberately distinct from ErrCodeNotFound: the request is
	// stale, not invalid.
	ErrAlreadyPaired = errors.New("pairing code already claimed")

	// ErrPlaylistNotFound indicates the chosen playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrPlaylistForbidden indicates the chosen playlist belongs to a
	// different tenant than the claimer.
	ErrPlaylistForbidden = errors.New("playlist not owned by claiming tenant")

	// ErrDeviceNotFound indicates no pairing record exists for the device.
	ErrDeviceNotFound = errors.New("no pairing for device")
)

func IsCodeNotFound(err error) bool     { return errors.Is(err, ErrCodeNotFound) }
func IsCodeExpired(err error) bool      { return errors.Is(err, ErrCodeExpired) }
func IsAlreadyPaired(err error) bool    { return errors.Is(err, ErrAlreadyPaired) }
func IsPlaylistNotFound(err error) bool { return errors.Is(err, ErrPlaylistNotFound) }
func IsPlaylistForbidden(err error) bool {
	return errors.Is(err, ErrPlaylistForbidden)
}
func IsDeviceNotFound(err error) bool { return errors.Is(err, ErrDeviceNotFound) }
