package ledgerclient

import "fmt"

// ValidationError reports a request the ledger rejected as malformed.
// The orchestrator surfaces it to the caller without writing a FAILED record.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger validation error %s: %s", e.Code, e.Message)
}

// DomainError reports a business rule the ledger enforced, such as
// INSUFFICIENT_FUNDS or ACCOUNT_NOT_FOUND. The code is one of the ledger's
// stable error codes and becomes the FAILED record's reason.
type DomainError struct {
	Code    string
	Message string
}

func (e DomainError) Error() string {
	return fmt.Sprintf("ledger domain error %s: %s", e.Code, e.Message)
}

// TransportError reports that the outcome of a ledger call is unknown:
// network failure, timeout, or an unexpected ledger-side error. It is never
// interpreted as success.
type TransportError struct {
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("ledger transport error: %v", e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}
