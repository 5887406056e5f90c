package types

import "github.com/pkg/errors"

// Signing core error taxonomy. Call sites wrap these with context; classify with errors.Is.
var (
	// ErrInvalidPrivateKeyFormat is returned for malformed or wrong-length key material.
	ErrInvalidPrivateKeyFormat = errors.New("invalid private key format")

	// ErrUnknownActionKind is returned when no schema or domain is registered for an action kind.
	ErrUnknownActionKind = errors.New("unknown action kind")

	// ErrInvalidAction is returned when an action cannot be signed in the requested mode.
	ErrInvalidAction = errors.New("invalid action")

	// ErrSigningFailed is returned when the underlying curve operation fails.
	ErrSigningFailed = errors.New("signing failed")

	// ErrInvalidSignature is returned when recovery or verification fails.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrDuplicateSigner is returned when a multi-sig envelope already holds a signature from the signer.
	ErrDuplicateSigner = errors.New("duplicate signer")

	// ErrThresholdNotMet is returned when an envelope is used before enough authorized signatures were collected.
	ErrThresholdNotMet = errors.New("threshold not met")

	// ErrKeyDestroyed is returned when a destroyed key buffer is accessed.
	ErrKeyDestroyed = errors.New("key buffer destroyed")

	// ErrInvalidAddress is returned for malformed address text.
	ErrInvalidAddress = errors.New("invalid address")
)
