package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Document stores and the network
// layer return these (optionally wrapped) so services can translate them into
// compliance outcomes.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document or record does not exist
// - ErrCorrupt: a persisted document could not be decoded
// - ErrExpired: token or session has expired
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: service or resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrCorrupt      = errors.New("corrupt")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
