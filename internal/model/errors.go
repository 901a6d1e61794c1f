package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure. Every kind aborts the run and
// maps to the same process exit code.
type ErrorKind int

const (
	// KindConfig marks missing or malformed settings, raised before any
	// network activity.
	KindConfig ErrorKind = iota + 1

	// KindAuth marks a failed or unconfirmed login.
	KindAuth

	// KindListing marks a failure while opening or paging the control screen.
	KindListing
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindAuth:
		return "AuthError"
	case KindListing:
		return "ListingError"
	default:
		return "UnknownError"
	}
}

// Sentinel causes wrapped by Error. Use errors.Is to test for them.
var (
	// ErrMissingSetting indicates a required setting was not provided.
	ErrMissingSetting = errors.New("required setting is missing")

	// ErrInvalidSetting indicates a setting could not be parsed.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrEmptyCredentials indicates the username or password is empty.
	ErrEmptyCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials indicates the portal rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountBlocked indicates the portal reported the account as locked.
	ErrAccountBlocked = errors.New("account is blocked")

	// ErrLoginUnconfirmed indicates no success or failure marker was found.
	ErrLoginUnconfirmed = errors.New("login not confirmed")

	// ErrControlUnavailable indicates the control screen could not be loaded.
	ErrControlUnavailable = errors.New("control screen unavailable")

	// ErrPaginationUnavailable indicates the results form lacks the
	// current-page field the paging protocol relies on.
	ErrPaginationUnavailable = errors.New("pagination unavailable")

	// ErrFormNotFound indicates a form required to continue is missing.
	ErrFormNotFound = errors.New("form not found")
)

// Error is the tagged domain error. Detail is a human-readable message;
// Err is the underlying cause and may be nil.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError returns a KindConfig error.
func NewConfigError(detail string, err error) *Error {
	return &Error{Kind: KindConfig, Detail: detail, Err: err}
}

// NewAuthError returns a KindAuth error.
func NewAuthError(detail string, err error) *Error {
	return &Error{Kind: KindAuth, Detail: detail, Err: err}
}

// NewListingError returns a KindListing error.
func NewListingError(detail string, err error) *Error {
	return &Error{Kind: KindListing, Detail: detail, Err: err}
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsDomainError reports whether err's chain contains a domain error.
func IsDomainError(err error) bool {
	_, ok := KindOf(err)
	return ok
}
