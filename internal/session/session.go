package session

import (
	"errors"
	"sync"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/forms"
	"github.com/dharmasatrya/flightbooking/internal/gateway"
	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/results"
)

// Session is one user's journey from search to confirmation. All methods are
// safe for concurrent use; remote calls happen between a Begin and the
// matching Complete, outside the lock.
type Session struct {
	ID string

	mu       sync.Mutex
	loc      *time.Location
	state    State
	flows    [flowCount]flowState
	lastUsed time.Time

	search    *forms.SearchForm
	submitted *models.SearchCriteria
	offers    []models.FlightOffer
	view      *results.View

	selected    *models.FlightOffer
	passengers  *forms.PassengerForm
	reservation *models.ReservationResult
	errMsg      string

	city      *models.City
	cityError string
}

func New(id string, loc *time.Location) *Session {
	s := &Session{ID: id, loc: loc}
	s.reset()
	return s
}

func (s *Session) reset() {
	for i := range s.flows {
		s.flows[i].inFlight = false
		s.flows[i].generation++
	}
	s.state = StateIdle
	s.search = forms.NewSearchForm(s.loc)
	s.search.OnSubmitSuccess = func(c models.SearchCriteria) { s.submitted = &c }
	s.submitted = nil
	s.offers = nil
	s.view = results.NewView()
	s.selected = nil
	s.passengers = nil
	s.reservation = nil
	s.errMsg = ""
	s.city = nil
	s.cityError = ""
	s.lastUsed = time.Now()
}

// Reset returns to Idle with a fresh draft. Responses for requests started
// before the reset are discarded when they arrive.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) begin(f Flow) (Ticket, error) {
	if s.flows[f].inFlight {
		return Ticket{}, ErrBusy
	}
	s.flows[f].inFlight = true
	s.flows[f].generation++
	return Ticket{flow: f, generation: s.flows[f].generation}, nil
}

func (s *Session) finish(t Ticket, f Flow) error {
	if t.flow != f || !s.flows[f].inFlight || s.flows[f].generation != t.generation {
		return ErrStale
	}
	s.flows[f].inFlight = false
	return nil
}

// EditSearch applies field edits to the search draft, top-level fields first
// and itinerary legs by index so new legs can be appended in one batch. The
// batch is all or nothing: the first failing path is returned with the error
// and the draft is left as it was.
func (s *Session) EditSearch(fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	forms.SortPaths(paths)

	form := s.search.Clone()
	for _, path := range paths {
		if err := form.SetField(path, fields[path]); err != nil {
			return path, err
		}
	}
	s.search = form
	return "", nil
}

// RemoveSegment drops one itinerary leg from the draft.
func (s *Session) RemoveSegment(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.search.RemoveSegment(idx)
}

// BeginSearch validates the draft and, when it is valid, moves to Searching
// and returns the criteria to send. Invalid drafts return the field errors
// and change nothing else.
func (s *Session) BeginSearch() (Ticket, models.SearchCriteria, models.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.flows[FlowSearch].inFlight || s.flows[FlowReservation].inFlight {
		return Ticket{}, models.SearchCriteria{}, nil, ErrBusy
	}

	criteria, fe := s.search.Submit()
	if len(fe) > 0 {
		return Ticket{}, models.SearchCriteria{}, fe, nil
	}

	t, err := s.begin(FlowSearch)
	if err != nil {
		return Ticket{}, models.SearchCriteria{}, nil, err
	}
	s.state = StateSearching
	s.errMsg = ""
	return t, criteria, nil, nil
}

// CompleteSearch records the gateway outcome. A failure keeps the previous
// offers and moves to Failed.
func (s *Session) CompleteSearch(t Ticket, offers []models.FlightOffer, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finish(t, FlowSearch); err != nil {
		return err
	}

	if callErr != nil {
		s.state = StateFailed
		s.errMsg = userMessage(callErr)
		return nil
	}

	if offers == nil {
		offers = []models.FlightOffer{}
	}
	s.offers = offers
	s.view.SetPage(0)
	s.selected = nil
	s.passengers = nil
	s.reservation = nil
	s.errMsg = ""
	s.state = StateResultsShown
	return nil
}

// Results renders the current offers through the table view after applying
// the requested view changes.
func (s *Session) Results(q ResultsQuery) results.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	// A filter or page-size change returns to the first page and wins over
	// a page requested in the same query.
	before := s.view.Filter()
	s.view.SetFilter(q.Filter)
	reset := s.view.Filter() != before
	s.view.SetSort(q.SortBy, q.SortOrder)
	if q.PageSize != nil && *q.PageSize != s.view.PageSize() {
		s.view.SetPageSize(*q.PageSize)
		reset = true
	}
	if q.Page != nil && !reset {
		s.view.SetPage(*q.Page)
	}
	return s.view.Render(s.offers)
}

type ResultsQuery struct {
	Filter    models.FilterSpec
	SortBy    string
	SortOrder string
	Page      *int
	PageSize  *int
}

// SelectOffer picks an offer from the current results and opens an empty
// passenger form sized to the offer.
func (s *Session) SelectOffer(id models.OfferID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.state {
	case StateResultsShown, StateBooking, StateFailed:
	default:
		return ErrInvalidTransition
	}
	if s.flows[FlowReservation].inFlight {
		return ErrBusy
	}

	var offer *models.FlightOffer
	for i := range s.offers {
		if s.offers[i].ID == id {
			o := s.offers[i]
			offer = &o
			break
		}
	}
	if offer == nil {
		return ErrOfferNotFound
	}

	s.selected = offer
	s.passengers = forms.NewPassengerForm(s.passengerCount(*offer))
	s.errMsg = ""
	s.state = StateBooking
	return nil
}

func (s *Session) passengerCount(o models.FlightOffer) int {
	if o.QtyPassengers > 0 {
		return o.QtyPassengers
	}
	if s.submitted != nil && s.submitted.TotalPassengers > 0 {
		return s.submitted.TotalPassengers
	}
	return 1
}

type PassengerEdit struct {
	Index int    `json:"index" validate:"min=0"`
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

// EditPassengers applies edits to the passenger drafts. It returns the
// position of the first rejected edit, in which case no edit is kept.
func (s *Session) EditPassengers(edits []PassengerEdit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.passengers == nil {
		return -1, ErrInvalidTransition
	}
	form := s.passengers.Clone()
	for i, e := range edits {
		if err := form.SetPassengerField(e.Index, e.Field, e.Value); err != nil {
			return i, err
		}
	}
	s.passengers = form
	return -1, nil
}

// BeginReservation validates the passenger drafts for the selected offer. It
// is allowed while booking and again after a failed reservation.
func (s *Session) BeginReservation() (Ticket, models.ReservationRequest, models.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.passengers == nil || s.selected == nil {
		return Ticket{}, models.ReservationRequest{}, nil, ErrInvalidTransition
	}
	if s.state != StateBooking && s.state != StateFailed {
		return Ticket{}, models.ReservationRequest{}, nil, ErrInvalidTransition
	}
	if s.flows[FlowReservation].inFlight || s.flows[FlowSearch].inFlight {
		return Ticket{}, models.ReservationRequest{}, nil, ErrBusy
	}

	req, fe := s.passengers.Submit(s.selected.ID)
	if len(fe) > 0 {
		return Ticket{}, models.ReservationRequest{}, fe, nil
	}

	t, err := s.begin(FlowReservation)
	if err != nil {
		return Ticket{}, models.ReservationRequest{}, nil, err
	}
	s.state = StateBooking
	s.errMsg = ""
	return t, req, nil, nil
}

// CompleteReservation records the gateway outcome. A confirmation clears the
// offers and the selection. A missing result counts as a rejected
// reservation.
func (s *Session) CompleteReservation(t Ticket, result *models.ReservationResult, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finish(t, FlowReservation); err != nil {
		return err
	}

	if callErr != nil {
		s.state = StateFailed
		s.errMsg = userMessage(callErr)
		return nil
	}
	if result == nil {
		s.state = StateFailed
		s.errMsg = gateway.MsgReservationFailed
		return nil
	}

	s.reservation = result
	s.offers = nil
	s.selected = nil
	s.passengers = nil
	s.errMsg = ""
	s.state = StateConfirmed
	return nil
}

// BeginAirportLookup starts a city lookup. Lookups do not change the
// session state.
func (s *Session) BeginAirportLookup() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	t, err := s.begin(FlowAirports)
	if err != nil {
		return Ticket{}, err
	}
	s.cityError = ""
	return t, nil
}

func (s *Session) CompleteAirportLookup(t Ticket, cities []models.City, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finish(t, FlowAirports); err != nil {
		return err
	}

	if callErr != nil {
		s.city = nil
		s.cityError = userMessage(callErr)
		return nil
	}
	if len(cities) == 0 {
		s.city = nil
		s.cityError = gateway.MsgNoIATA
		return nil
	}
	c := cities[0]
	s.city = &c
	return nil
}

func userMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return gateway.MsgTransport
}

type Snapshot struct {
	ID          string                    `json:"id"`
	State       State                     `json:"state"`
	Search      SearchSnapshot            `json:"search"`
	OfferCount  int                       `json:"offer_count"`
	Selected    *models.FlightOffer       `json:"selected_offer,omitempty"`
	Passengers  *PassengerSnapshot        `json:"passengers,omitempty"`
	Reservation *models.ReservationResult `json:"reservation,omitempty"`
	Error       string                    `json:"error,omitempty"`
	Airport     AirportSnapshot           `json:"airport"`
	InFlight    []string                  `json:"in_flight"`
}

type SearchSnapshot struct {
	Draft     models.SearchCriteria  `json:"draft"`
	Errors    models.FieldErrors     `json:"errors"`
	Submitted *models.SearchCriteria `json:"submitted,omitempty"`
}

type PassengerSnapshot struct {
	Expected int                      `json:"expected"`
	Drafts   []models.PassengerRecord `json:"drafts"`
	Errors   models.FieldErrors       `json:"errors"`
}

type AirportSnapshot struct {
	City  *models.City `json:"city,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Snapshot copies everything a client needs to render the session. Only the
// errors of touched fields are included.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:    s.ID,
		State: s.state,
		Search: SearchSnapshot{
			Draft:  s.search.Draft(),
			Errors: s.search.VisibleErrors(),
		},
		OfferCount:  len(s.offers),
		Reservation: s.reservation,
		Airport: AirportSnapshot{
			Error: s.cityError,
		},
		InFlight: []string{},
	}
	if s.submitted != nil {
		c := s.submitted.Clone()
		snap.Search.Submitted = &c
	}
	if s.state == StateFailed {
		snap.Error = s.errMsg
	}
	if s.city != nil {
		c := *s.city
		snap.Airport.City = &c
	}
	if s.selected != nil {
		o := *s.selected
		snap.Selected = &o
	}
	if s.passengers != nil {
		snap.Passengers = &PassengerSnapshot{
			Expected: s.passengers.ExpectedCount(),
			Drafts:   s.passengers.Passengers(),
			Errors:   s.passengers.VisibleErrors(),
		}
	}
	for f := Flow(0); f < flowCount; f++ {
		if s.flows[f].inFlight {
			snap.InFlight = append(snap.InFlight, f.String())
		}
	}
	return snap
}
