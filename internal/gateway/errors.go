package gateway

import "errors"

type Kind int

const (
	// KindTransport covers unreachable hosts, non-2xx answers and bodies that cannot be decoded.
	KindTransport Kind = iota + 1
	// KindApplication is a well-formed answer that reports no result.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

const (
	MsgTransport         = "An error occurred while contacting the flight service. Please try again later."
	MsgNoFlights         = "No flights were found for the given parameters."
	MsgNoIATA            = "No IATA code was found for this city."
	MsgReservationFailed = "The reservation could not be completed. Please try again."
)

// Error is returned by every Client call that does not yield a usable result.
// Message is safe to show to end users.
type Error struct {
	Kind     Kind
	Endpoint string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Endpoint + ": " + e.Err.Error()
	}
	return e.Endpoint + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(endpoint string, err error) *Error {
	return &Error{
		Kind:     KindTransport,
		Endpoint: endpoint,
		Message:  MsgTransport,
		Err:      err,
	}
}

func applicationError(endpoint, message string) *Error {
	return &Error{
		Kind:     KindApplication,
		Endpoint: endpoint,
		Message:  message,
	}
}

// IsKind reports whether err carries a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == k
}
