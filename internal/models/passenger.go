package models

type PassengerRecord struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Age            *int   `json:"age" validate:"required,gte=0"`
	PassportNumber string `json:"passportNumber" validate:"required"`
}

type ReservedPassenger struct {
	ID             OfferID `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PassportNumber string  `json:"passport_number"`
	Age            int     `json:"age"`
}

type ReservationResult struct {
	ID            OfferID             `json:"id"`
	DepartureCity string              `json:"departure_city"`
	ArrivalCity   string              `json:"arrival_city"`
	DepartureTime string              `json:"departure_time"`
	Passengers    []ReservedPassenger `json:"passengers"`
}
