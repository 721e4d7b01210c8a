package models

// SearchCriteria is both the search form draft and the body of POST /flights.
// JSON names follow the remote API.
type SearchCriteria struct {
	Direct          bool               `json:"direct"`
	Currency        string             `json:"currency" validate:"required,len=3"`
	SearchCount     int                `json:"searchs" validate:"required,min=1"`
	BusinessClass   bool               `json:"class"`
	TotalPassengers int                `json:"qtyPassengers" validate:"required,min=1"`
	Adults          int                `json:"adult" validate:"required,min=1,ltefield=TotalPassengers"`
	Children        int                `json:"child" validate:"min=0,ltefield=TotalPassengers"`
	Infants         int                `json:"baby" validate:"min=0,ltefield=TotalPassengers"`
	Seats           int                `json:"seat" validate:"min=0"`
	Itinerary       []ItinerarySegment `json:"itinerary" validate:"required,min=1,dive"`
}

type ItinerarySegment struct {
	DepartureCity     string `json:"departureCity" validate:"required,len=3"`
	ArrivalCity       string `json:"arrivalCity" validate:"required,len=3"`
	DepartureDateTime string `json:"hour" validate:"required,datetime_any"`
}

// Clone copies the itinerary so the copy can be edited independently.
func (c SearchCriteria) Clone() SearchCriteria {
	out := c
	out.Itinerary = make([]ItinerarySegment, len(c.Itinerary))
	copy(out.Itinerary, c.Itinerary)
	return out
}

func DefaultSearchCriteria() SearchCriteria {
	return SearchCriteria{
		Currency:        "COP",
		SearchCount:     50,
		TotalPassengers: 1,
		Adults:          1,
		Itinerary:       []ItinerarySegment{{}},
	}
}

type AirportLookupRequest struct {
	Code string `json:"code" validate:"required"`
}

type ReservationRequest struct {
	FlightID   OfferID           `json:"flightId"`
	Passengers []PassengerRecord `json:"passengers"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrUnknownField    ValidationError = "unknown field"
	ErrIndexOutOfRange ValidationError = "index out of range"
	ErrLastSegment     ValidationError = "the itinerary needs at least one segment"
)
