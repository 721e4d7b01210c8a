package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightbooking/internal/gateway"
	"github.com/dharmasatrya/flightbooking/internal/models"
)

func validSearch(t *testing.T, s *Session) {
	t.Helper()
	path, err := s.EditSearch(map[string]any{
		"currency":                   "cop",
		"qtyPassengers":              "2",
		"adult":                      2,
		"itinerary[0].departureCity": "bog",
		"itinerary[0].arrivalCity":   "mia",
		"itinerary[0].hour":          "2025-06-01T10:00",
	})
	require.NoError(t, err, path)
}

func offers() []models.FlightOffer {
	return []models.FlightOffer{
		{ID: "1", MarketingCarrier: "AV", Price: 100, Currency: "COP"},
		{ID: "2", MarketingCarrier: "AA", Price: 200, Currency: "COP", QtyPassengers: 3},
	}
}

func searched(t *testing.T) *Session {
	t.Helper()
	s := New("s1", time.UTC)
	validSearch(t, s)
	ticket, _, fe, err := s.BeginSearch()
	require.NoError(t, err)
	require.Empty(t, fe)
	require.NoError(t, s.CompleteSearch(ticket, offers(), nil))
	return s
}

func fillPassengers(t *testing.T, s *Session, n int) {
	t.Helper()
	var edits []PassengerEdit
	for i := 0; i < n; i++ {
		edits = append(edits,
			PassengerEdit{Index: i, Field: "firstName", Value: "Ana"},
			PassengerEdit{Index: i, Field: "lastName", Value: "Rojas"},
			PassengerEdit{Index: i, Field: "age", Value: 30},
			PassengerEdit{Index: i, Field: "passportNumber", Value: "P1"},
		)
	}
	_, err := s.EditPassengers(edits)
	require.NoError(t, err)
}

func TestSession_SearchFlow(t *testing.T) {
	s := New("s1", time.UTC)
	assert.Equal(t, StateIdle, s.State())

	validSearch(t, s)
	ticket, criteria, fe, err := s.BeginSearch()
	require.NoError(t, err)
	require.Empty(t, fe)
	assert.Equal(t, StateSearching, s.State())
	assert.Equal(t, "COP", criteria.Currency)
	assert.Equal(t, "2025-06-01T10:00:00.000Z", criteria.Itinerary[0].DepartureDateTime)
	assert.Equal(t, []string{"search"}, s.Snapshot().InFlight)

	require.NoError(t, s.CompleteSearch(ticket, offers(), nil))
	snap := s.Snapshot()
	assert.Equal(t, StateResultsShown, snap.State)
	assert.Equal(t, 2, snap.OfferCount)
	assert.Empty(t, snap.InFlight)
	require.NotNil(t, snap.Search.Submitted)
	assert.Equal(t, 2, snap.Search.Submitted.TotalPassengers)
}

func TestSession_InvalidSearchMakesNoRequest(t *testing.T) {
	s := New("s1", time.UTC)
	_, err := s.EditSearch(map[string]any{"qtyPassengers": 1, "adult": 3})
	require.NoError(t, err)

	_, _, fe, err := s.BeginSearch()
	require.NoError(t, err)
	assert.Contains(t, fe, "adult")
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Snapshot().InFlight)
}

func TestSession_BusyAndStale(t *testing.T) {
	s := New("s1", time.UTC)
	validSearch(t, s)

	ticket, _, _, err := s.BeginSearch()
	require.NoError(t, err)

	_, _, _, err = s.BeginSearch()
	assert.ErrorIs(t, err, ErrBusy)

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.ErrorIs(t, s.CompleteSearch(ticket, offers(), nil), ErrStale)
	assert.Equal(t, 0, s.Snapshot().OfferCount, "stale results are discarded")

	assert.ErrorIs(t, s.CompleteSearch(ticket, offers(), nil), ErrStale)
}

func TestSession_AirportLookupIsIndependent(t *testing.T) {
	s := New("s1", time.UTC)
	validSearch(t, s)

	searchTicket, _, _, err := s.BeginSearch()
	require.NoError(t, err)

	airportTicket, err := s.BeginAirportLookup()
	require.NoError(t, err)
	_, err = s.BeginAirportLookup()
	assert.ErrorIs(t, err, ErrBusy)

	assert.ErrorIs(t, s.CompleteSearch(airportTicket, nil, nil), ErrStale, "tickets are bound to their flow")

	require.NoError(t, s.CompleteAirportLookup(airportTicket, []models.City{{CodeIataCity: "BOG", NameCity: "Bogota"}}, nil))
	require.NoError(t, s.CompleteSearch(searchTicket, offers(), nil))

	snap := s.Snapshot()
	require.NotNil(t, snap.Airport.City)
	assert.Equal(t, "BOG", snap.Airport.City.CodeIataCity)
	assert.Equal(t, StateResultsShown, snap.State)
}

func TestSession_AirportLookupFailure(t *testing.T) {
	s := New("s1", time.UTC)
	ticket, err := s.BeginAirportLookup()
	require.NoError(t, err)

	appErr := &gateway.Error{Kind: gateway.KindApplication, Message: gateway.MsgNoIATA}
	require.NoError(t, s.CompleteAirportLookup(ticket, nil, appErr))

	snap := s.Snapshot()
	assert.Nil(t, snap.Airport.City)
	assert.Equal(t, gateway.MsgNoIATA, snap.Airport.Error)
	assert.Equal(t, StateIdle, snap.State)
}

func TestSession_SearchFailureKeepsOffers(t *testing.T) {
	s := searched(t)

	ticket, _, _, err := s.BeginSearch()
	require.NoError(t, err)
	require.NoError(t, s.CompleteSearch(ticket, nil, errors.New("connection refused")))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, gateway.MsgTransport, snap.Error)
	assert.Equal(t, 2, snap.OfferCount)

	ticket, _, _, err = s.BeginSearch()
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Error, "errors clear when a new submission starts")
	require.NoError(t, s.CompleteSearch(ticket, nil, &gateway.Error{Kind: gateway.KindApplication, Message: gateway.MsgNoFlights}))
	assert.Equal(t, gateway.MsgNoFlights, s.Snapshot().Error)
}

func TestSession_SelectOffer(t *testing.T) {
	s := New("s1", time.UTC)
	assert.ErrorIs(t, s.SelectOffer("1"), ErrInvalidTransition)

	s = searched(t)
	assert.ErrorIs(t, s.SelectOffer("99"), ErrOfferNotFound)

	require.NoError(t, s.SelectOffer("1"))
	snap := s.Snapshot()
	assert.Equal(t, StateBooking, snap.State)
	require.NotNil(t, snap.Passengers)
	assert.Equal(t, 2, snap.Passengers.Expected, "falls back to the searched passenger count")
	assert.Len(t, snap.Passengers.Drafts, 2)

	require.NoError(t, s.SelectOffer("2"))
	assert.Equal(t, 3, s.Snapshot().Passengers.Expected)
}

func TestSession_ReservationMissingPassport(t *testing.T) {
	s := searched(t)
	require.NoError(t, s.SelectOffer("1"))
	fillPassengers(t, s, 2)
	_, err := s.EditPassengers([]PassengerEdit{{Index: 1, Field: "passportNumber", Value: ""}})
	require.NoError(t, err)

	_, _, fe, err := s.BeginReservation()
	require.NoError(t, err)
	assert.Contains(t, fe, "passengers[1].passportNumber")
	assert.Empty(t, s.Snapshot().InFlight)
}

func TestSession_ReservationConfirmed(t *testing.T) {
	s := searched(t)
	require.NoError(t, s.SelectOffer("1"))
	fillPassengers(t, s, 2)

	ticket, req, fe, err := s.BeginReservation()
	require.NoError(t, err)
	require.Empty(t, fe)
	assert.Equal(t, models.OfferID("1"), req.FlightID)
	assert.Len(t, req.Passengers, 2)

	_, _, _, err = s.BeginReservation()
	assert.ErrorIs(t, err, ErrBusy)
	_, _, _, err = s.BeginSearch()
	assert.ErrorIs(t, err, ErrBusy)

	result := &models.ReservationResult{ID: "55", DepartureCity: "BOG", ArrivalCity: "MIA"}
	require.NoError(t, s.CompleteReservation(ticket, result, nil))

	snap := s.Snapshot()
	assert.Equal(t, StateConfirmed, snap.State)
	assert.Equal(t, result, snap.Reservation)
	assert.Equal(t, 0, snap.OfferCount)
	assert.Nil(t, snap.Selected)
	assert.Nil(t, snap.Passengers)
	assert.Empty(t, snap.Error)

	_, _, _, err = s.BeginReservation()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSession_ReservationFailureAllowsRetry(t *testing.T) {
	s := searched(t)
	require.NoError(t, s.SelectOffer("1"))
	fillPassengers(t, s, 2)

	ticket, _, _, err := s.BeginReservation()
	require.NoError(t, err)
	appErr := &gateway.Error{Kind: gateway.KindApplication, Message: gateway.MsgReservationFailed}
	require.NoError(t, s.CompleteReservation(ticket, nil, appErr))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, gateway.MsgReservationFailed, snap.Error)
	assert.Equal(t, 2, snap.OfferCount)
	require.NotNil(t, snap.Selected)
	assert.Nil(t, snap.Reservation)

	ticket, _, fe, err := s.BeginReservation()
	require.NoError(t, err)
	require.Empty(t, fe)
	require.NoError(t, s.CompleteReservation(ticket, &models.ReservationResult{ID: "9"}, nil))
	assert.Equal(t, StateConfirmed, s.State())
}

func TestSession_EditPassengersWithoutSelection(t *testing.T) {
	s := searched(t)
	_, err := s.EditPassengers([]PassengerEdit{{Index: 0, Field: "firstName", Value: "Ana"}})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.SelectOffer("1"))
	pos, err := s.EditPassengers([]PassengerEdit{
		{Index: 0, Field: "firstName", Value: "Ana"},
		{Index: 5, Field: "firstName", Value: "Luis"},
	})
	assert.ErrorIs(t, err, models.ErrIndexOutOfRange)
	assert.Equal(t, 1, pos)

	snap := s.Snapshot()
	require.NotNil(t, snap.Passengers)
	assert.Empty(t, snap.Passengers.Drafts[0].FirstName, "a rejected batch keeps none of its edits")
	assert.NotContains(t, snap.Passengers.Errors, "passengers[0].firstName")
}

func TestSession_EditSearchAppendsLegsInOrder(t *testing.T) {
	s := New("s1", time.UTC)
	path, err := s.EditSearch(map[string]any{
		"itinerary[2].departureCity": "CLO",
		"itinerary[1].departureCity": "MIA",
		"currency":                   "USD",
	})
	require.NoError(t, err, path)
	assert.Len(t, s.Snapshot().Search.Draft.Itinerary, 3)

	path, err = s.EditSearch(map[string]any{"bogus": 1})
	assert.ErrorIs(t, err, models.ErrUnknownField)
	assert.Equal(t, "bogus", path)

	require.NoError(t, s.RemoveSegment(2))
	assert.Len(t, s.Snapshot().Search.Draft.Itinerary, 2)
}

func TestSession_EditSearchBatchIsAllOrNothing(t *testing.T) {
	s := New("s1", time.UTC)

	path, err := s.EditSearch(map[string]any{
		"currency":                   "USD",
		"adult":                      3,
		"itinerary[0].departureCity": "BOG",
		"itinerary[1].nope":          "x",
	})
	assert.ErrorIs(t, err, models.ErrUnknownField)
	assert.Equal(t, "itinerary[1].nope", path)

	snap := s.Snapshot()
	assert.Equal(t, "COP", snap.Search.Draft.Currency)
	assert.Equal(t, 1, snap.Search.Draft.Adults)
	assert.Len(t, snap.Search.Draft.Itinerary, 1)
	assert.Empty(t, snap.Search.Draft.Itinerary[0].DepartureCity)
	assert.Empty(t, snap.Search.Errors, "no path of a rejected batch counts as touched")
}

func TestSession_ResultsView(t *testing.T) {
	s := searched(t)

	size := 5
	page := s.Results(ResultsQuery{PageSize: &size})
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 5, page.PageSize)

	page = s.Results(ResultsQuery{Filter: models.FilterSpec{Airline: "av"}, PageSize: &size})
	require.Len(t, page.Rows, 1)
	assert.Equal(t, models.OfferID("1"), page.Rows[0].ID)

	one := 1
	page = s.Results(ResultsQuery{Filter: models.FilterSpec{Airline: "av"}, Page: &one, PageSize: &size})
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Rows)
}

func TestStore(t *testing.T) {
	st := NewStore(StoreConfig{TTL: time.Minute})

	s := st.Create()
	require.NotEmpty(t, s.ID)
	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = st.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	other := st.Create()
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, st.Len())

	assert.Equal(t, 0, st.Sweep(time.Now()))
	assert.Equal(t, 2, st.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, st.Len())

	third := st.Create()
	st.Delete(third.ID)
	_, err = st.Get(third.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Sweeper(t *testing.T) {
	st := NewStore(StoreConfig{TTL: time.Millisecond, SweepInterval: 20 * time.Millisecond})
	st.Create()

	require.NoError(t, st.StartSweeper())
	defer func() { assert.NoError(t, st.Shutdown()) }()

	assert.Eventually(t, func() bool { return st.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSession_ResultsResetWinsOverRequestedPage(t *testing.T) {
	s := New("s1", time.UTC)
	validSearch(t, s)
	ticket, _, _, err := s.BeginSearch()
	require.NoError(t, err)
	var many []models.FlightOffer
	for i := 0; i < 30; i++ {
		carrier := "AV"
		if i%2 == 1 {
			carrier = "AA"
		}
		many = append(many, models.FlightOffer{ID: models.OfferID(fmt.Sprint(i)), MarketingCarrier: carrier, Price: float64(100 + i)})
	}
	require.NoError(t, s.CompleteSearch(ticket, many, nil))

	size, page := 5, 2
	got := s.Results(ResultsQuery{PageSize: &size, Page: &page})
	assert.Equal(t, 0, got.Page, "a page-size change returns to the first page")
	assert.Equal(t, 5, got.PageSize)

	got = s.Results(ResultsQuery{PageSize: &size, Page: &page})
	assert.Equal(t, 2, got.Page, "same page size, so the page applies")

	got = s.Results(ResultsQuery{Filter: models.FilterSpec{Airline: "av"}, PageSize: &size, Page: &page})
	assert.Equal(t, 0, got.Page, "a filter change returns to the first page")

	got = s.Results(ResultsQuery{Filter: models.FilterSpec{Airline: " av "}, PageSize: &size, Page: &page})
	assert.Equal(t, 2, got.Page, "the same filter after trimming is not a change")
}

func TestSession_ReservationWithoutResultFails(t *testing.T) {
	s := searched(t)
	require.NoError(t, s.SelectOffer("1"))
	fillPassengers(t, s, 2)

	ticket, _, fe, err := s.BeginReservation()
	require.NoError(t, err)
	require.Empty(t, fe)
	require.NoError(t, s.CompleteReservation(ticket, nil, nil))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, gateway.MsgReservationFailed, snap.Error)
	assert.Nil(t, snap.Reservation)
	assert.Equal(t, 2, snap.OfferCount)
	require.NotNil(t, snap.Selected)
}
