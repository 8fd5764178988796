package usecase

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned when an operation targets an account id
// that no longer exists.
var ErrAccountNotFound = errors.New("account not found")

// ErrorKind distinguishes the handshake's failure points. The caller's
// response depends on the kind, so they are never collapsed into one
// generic error string.
type ErrorKind string

const (
	ErrMissingParameters     ErrorKind = "missing_parameters"
	ErrMissingProviderConfig ErrorKind = "missing_provider_config"
	ErrInvalidState          ErrorKind = "invalid_state"
	ErrTokenExchangeFailed   ErrorKind = "token_exchange_failed"
	ErrIdentityFetchFailed   ErrorKind = "identity_fetch_failed"
	ErrPersistenceFailed     ErrorKind = "persistence_failed"
)

// ConnectError is the structured failure result of the connection handshake.
// GoogleError and GoogleErrorDescription carry the provider's error code and
// description verbatim; operators diagnose token-exchange failures from them.
type ConnectError struct {
	Kind                   ErrorKind `json:"error"`
	Message                string    `json:"message"`
	GoogleError            string    `json:"googleError,omitempty"`
	GoogleErrorDescription string    `json:"googleErrorDescription,omitempty"`
	Details                []string  `json:"details,omitempty"`
	cause                  error
}

func (e *ConnectError) Error() string {
	if e.GoogleError != "" {
		return fmt.Sprintf("%s: %s (%s: %s)", e.Kind, e.Message, e.GoogleError, e.GoogleErrorDescription)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ConnectError) Unwrap() error {
	return e.cause
}

func missingParameters(details ...string) *ConnectError {
	return &ConnectError{
		Kind:    ErrMissingParameters,
		Message: "required parameters are missing",
		Details: details,
	}
}

func missingProviderConfig(missingKeys []string) *ConnectError {
	return &ConnectError{
		Kind:    ErrMissingProviderConfig,
		Message: "oauth provider is not configured",
		Details: missingKeys,
	}
}

func invalidState() *ConnectError {
	return &ConnectError{
		Kind:    ErrInvalidState,
		Message: "oauth state is missing, expired or does not match this user",
	}
}

func tokenExchangeFailed(code, description string, cause error) *ConnectError {
	return &ConnectError{
		Kind:                   ErrTokenExchangeFailed,
		Message:                "authorization code exchange failed",
		GoogleError:            code,
		GoogleErrorDescription: description,
		cause:                  cause,
	}
}

func identityFetchFailed(cause error) *ConnectError {
	return &ConnectError{
		Kind:    ErrIdentityFetchFailed,
		Message: "could not resolve the mailbox identity with the new token",
		cause:   cause,
	}
}

func persistenceFailed(cause error) *ConnectError {
	return &ConnectError{
		Kind:    ErrPersistenceFailed,
		Message: "could not persist the connected account",
		cause:   cause,
	}
}
