package auth

import "errors"

var (
	// ErrInvalidToken covers every reason a bearer token cannot be trusted.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrIdentityNotFound means no account matches the token id for the required profile.
	ErrIdentityNotFound = errors.New("account does not exist")
	// ErrAccountDisabled means the account exists but is not enabled.
	ErrAccountDisabled = errors.New("account is not enabled")
	// ErrCredentialMismatch is returned by login for an unknown username or a wrong password alike.
	ErrCredentialMismatch = errors.New("incorrect username and/or password")
	// ErrIssuance means a token could not be signed.
	ErrIssuance = errors.New("could not issue token")
	// ErrUsernameTaken means (username, profile) is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrPasswordTooLong means the password exceeds MaxPasswordBytes once encoded.
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
	// ErrPersistence wraps transient credential store failures.
	ErrPersistence = errors.New("persistence failure")
)
