package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OfferID accepts both JSON strings and numbers, the remote API is not consistent about it.
type OfferID string

func (id *OfferID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OfferID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = OfferID(n.String())
	return nil
}

func (id OfferID) String() string {
	return string(id)
}

type OfferSegment struct {
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	DepartureTime string `json:"departure_time"`
}

type FlightOffer struct {
	ID               OfferID        `json:"id"`
	FlightNumber     string         `json:"flightNumber"`
	MarketingCarrier string         `json:"marketingCarrier"`
	Price            float64        `json:"price"`
	Currency         string         `json:"currency"`
	QtyPassengers    int            `json:"qtyPassengers,omitempty"`
	Itinerary        []OfferSegment `json:"itinerary"`
}

// FirstSegment returns the first leg, or a zero segment for offers without an itinerary.
func (o FlightOffer) FirstSegment() OfferSegment {
	if len(o.Itinerary) == 0 {
		return OfferSegment{}
	}
	return o.Itinerary[0]
}

type FilterSpec struct {
	Airline string `json:"airline" query:"airline"`
	Date    string `json:"date" query:"date"`
}

func (f FilterSpec) IsEmpty() bool {
	return strings.TrimSpace(f.Airline) == "" && strings.TrimSpace(f.Date) == ""
}

type City struct {
	CodeIataCity string `json:"codeIataCity"`
	NameCity     string `json:"nameCity"`
}
