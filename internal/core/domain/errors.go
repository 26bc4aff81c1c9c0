package domain

import "errors"

var (
	// ErrBusy is returned when a conflicting request is already in flight.
	ErrBusy = errors.New("another request is already in progress")
	// ErrInvalidReason is returned for rejection reasons outside 3..500 characters.
	ErrInvalidReason = errors.New("invalid rejection reason")
	// ErrInvalidSettings wraps settings validation failures.
	ErrInvalidSettings = errors.New("invalid payout settings")
	// ErrNothingPending is returned when no confirmation or modal is open.
	ErrNothingPending = errors.New("no pending action")
	// ErrActionNotOffered is returned for an action the payout's status does not offer.
	ErrActionNotOffered = errors.New("action not available for this payout")
	// ErrUnauthorized is returned when the backend refused our credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession is returned when no admin session is loaded.
	ErrNoSession = errors.New("no admin session")
)

// ErrNoSelection is returned when a bulk action is requested with nothing selected.
var ErrNoSelection = errors.New("no payouts selected")
