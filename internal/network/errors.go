package network

import (
	"errors"
	"fmt"
)

// Kind classifies a failed compliance call. Callers branch on the kind by
// value through KindOf.
type Kind string

const (
	// KindNone is reported for nil errors and errors not raised by the client.
	KindNone Kind = ""

	// KindTransport means no HTTP response was received.
	KindTransport Kind = "transport"

	// KindMalformed means a 2xx response could not be decoded.
	KindMalformed Kind = "malformed"

	// KindClient is any other 4xx rejection.
	KindClient Kind = "client"

	// KindServer is a 5xx response.
	KindServer Kind = "server"

	// KindTokenExpired means the compliance or account token is no longer
	// accepted; the user must be logged out.
	KindTokenExpired Kind = "token_expired"

	// KindInvalidTimestamp is a clock-skew rejection. Error.Now carries the
	// server's current time.
	KindInvalidTimestamp Kind = "invalid_timestamp"
)

// Server error tags.
const (
	TagInvalidTime  = "invalid_time"
	TagTokenExpired = "token_expired"
	TagAccessDenied = "access_denied"
)

// Error is a classified compliance API failure.
type Error struct {
	Kind     Kind
	Endpoint string
	// Code is the HTTP status, zero for transport failures.
	Code int
	// ServerCode is the numeric code of the error envelope.
	ServerCode int
	// Tag is the error envelope's "error" field, e.g. "invalid_time".
	Tag     string
	Message string
	// Now is the server's unix time when it reported one.
	Now int64
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Endpoint, e.Kind)
	if e.Code != 0 {
		msg += fmt.Sprintf(" status %d", e.Code)
	}
	if e.Tag != "" {
		msg += " " + e.Tag
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the failure must not be papered over by a cached
// or offline answer: an expired token or any client error below 500.
func (e *Error) Fatal() bool {
	return e.Kind == KindTokenExpired || (e.Code >= 400 && e.Code < 500)
}

func classify(status int, tag string) Kind {
	switch tag {
	case TagInvalidTime:
		return KindInvalidTimestamp
	case TagTokenExpired, TagAccessDenied:
		return KindTokenExpired
	}
	if status >= 500 {
		return KindServer
	}
	return KindClient
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindNone when err is nil or unclassified.
func KindOf(err error) Kind {
	if ne, ok := AsError(err); ok {
		return ne.Kind
	}
	return KindNone
}

// IsTokenExpired reports whether err asks for a logout.
func IsTokenExpired(err error) bool {
	return KindOf(err) == KindTokenExpired
}

// IsFatal reports whether err is a classified failure that must propagate.
func IsFatal(err error) bool {
	if ne, ok := AsError(err); ok {
		return ne.Fatal()
	}
	return false
}

// ServerNow returns the server time carried by a timestamp rejection. The
// second return is false for any other error.
func ServerNow(err error) (int64, bool) {
	if ne, ok := AsError(err); ok && ne.Kind == KindInvalidTimestamp {
		return ne.Now, true
	}
	return 0, false
}
