package session

type State string

const (
	StateIdle         State = "idle"
	StateSearching    State = "searching"
	StateResultsShown State = "results_shown"
	StateBooking      State = "booking"
	StateConfirmed    State = "confirmed"
	StateFailed       State = "failed"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotFound          Error = "session not found"
	ErrBusy              Error = "a request of this kind is already in flight"
	ErrStale             Error = "response belongs to a superseded request"
	ErrInvalidTransition Error = "operation not allowed in the current state"
	ErrOfferNotFound     Error = "offer not found in the current results"
)

// Flow identifies one of the independent remote operations a session can
// have in flight at the same time.
type Flow int

const (
	FlowSearch Flow = iota
	FlowAirports
	FlowReservation
	flowCount
)

func (f Flow) String() string {
	switch f {
	case FlowSearch:
		return "search"
	case FlowAirports:
		return "airports"
	case FlowReservation:
		return "reservation"
	default:
		return "unknown"
	}
}

type flowState struct {
	inFlight   bool
	generation uint64
}

// Ticket is handed out when a flow starts and must be presented to complete
// it. Tickets issued before a reset are rejected.
type Ticket struct {
	flow       Flow
	generation uint64
}
