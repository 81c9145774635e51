package bungie

import (
	"errors"
	"fmt"
)

// Platform error codes we branch on. The full enum is much larger;
// anything unlisted is only ever reported, never matched.
const (
	CodeSuccess                   = 1
	CodeSystemDisabled            = 5
	CodeDestinyPrivacyRestriction = 1665
)

// Error is a non-success Platform envelope, carrying Bungie's code,
// status constant and human-readable message.
type Error struct {
	Code     int
	Status   string
	Message  string
	Endpoint string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bungie: %s returned %d %s: %s", e.Endpoint, e.Code, e.Status, e.Message)
}

// PrivacyRestricted reports whether the failure is a player having
// opted their history out of the API. Callers skip the unit instead of
// treating this as a fault.
func (e *Error) PrivacyRestricted() bool {
	return e.Code == CodeDestinyPrivacyRestriction
}

// SystemDisabled reports whether the Destiny API is down for
// maintenance.
func (e *Error) SystemDisabled() bool {
	return e.Code == CodeSystemDisabled
}

// IsPrivacyRestricted reports whether err wraps a privacy opt-out
// response.
func IsPrivacyRestricted(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.PrivacyRestricted()
}
