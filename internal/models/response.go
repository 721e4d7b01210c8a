package models

// Envelopes returned by the remote flight API.

type SearchEnvelope struct {
	Success bool          `json:"success"`
	Data    []FlightOffer `json:"data"`
}

type AirportEnvelope struct {
	Cities []City `json:"cities"`
}

type ReservationEnvelope struct {
	Success bool               `json:"success"`
	Data    *ReservationResult `json:"data"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Fields  FieldErrors `json:"fields,omitempty"`
}
