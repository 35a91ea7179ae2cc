// Package errors defines the domain error taxonomy shared across the
// ledger core and its surrounding layers.
package errors

// DomainError is a stable, machine-readable domain failure. Instances are
// declared as package-level sentinels and compared with errors.Is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
