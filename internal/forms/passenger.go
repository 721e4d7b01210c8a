package forms

import (
	"fmt"
	"maps"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/validation"
)

const (
	PassengerFirstName      = "firstName"
	PassengerLastName       = "lastName"
	PassengerAge            = "age"
	PassengerPassportNumber = "passportNumber"
)

// PassengerForm holds one draft record per seat of the selected offer.
type PassengerForm struct {
	expected   int
	passengers []models.PassengerRecord
	touched    map[string]bool
	typeErrors models.FieldErrors
}

// NewPassengerForm allocates expectedCount empty records. Each record is its
// own value, so editing one never shows up in another.
func NewPassengerForm(expectedCount int) *PassengerForm {
	if expectedCount < 0 {
		expectedCount = 0
	}
	return &PassengerForm{
		expected:   expectedCount,
		passengers: make([]models.PassengerRecord, expectedCount),
		touched:    make(map[string]bool),
		typeErrors: models.FieldErrors{},
	}
}

func (f *PassengerForm) ExpectedCount() int {
	return f.expected
}

// SetPassengerField mutates the draft at index.
func (f *PassengerForm) SetPassengerField(index int, field string, value any) error {
	if index < 0 || index >= len(f.passengers) {
		return fmt.Errorf("%w: passengers[%d]", models.ErrIndexOutOfRange, index)
	}
	path := models.PassengerPath(index, field)
	p := &f.passengers[index]

	var target *string
	switch field {
	case PassengerFirstName:
		target = &p.FirstName
	case PassengerLastName:
		target = &p.LastName
	case PassengerPassportNumber:
		target = &p.PassportNumber
	case PassengerAge:
		return f.setAge(path, p, value)
	default:
		return fmt.Errorf("%w: %s", models.ErrUnknownField, field)
	}

	f.touched[path] = true
	s, err := toText(value)
	if err != nil {
		f.typeErrors[path] = fmt.Sprintf("%s must be text", path)
		return nil
	}
	*target = s
	delete(f.typeErrors, path)
	return nil
}

func (f *PassengerForm) setAge(path string, p *models.PassengerRecord, value any) error {
	f.touched[path] = true
	n, unset, err := toInt(value)
	if err != nil {
		f.typeErrors[path] = validation.TypeMismatch(path)
		return nil
	}
	delete(f.typeErrors, path)
	if unset {
		p.Age = nil
		return nil
	}
	p.Age = &n
	return nil
}

func (f *PassengerForm) Clone() *PassengerForm {
	c := *f
	c.passengers = clonePassengers(f.passengers)
	c.touched = maps.Clone(f.touched)
	c.typeErrors = maps.Clone(f.typeErrors)
	return &c
}

// Passengers returns a deep copy of the drafts.
func (f *PassengerForm) Passengers() []models.PassengerRecord {
	return clonePassengers(f.passengers)
}

func (f *PassengerForm) Errors() models.FieldErrors {
	fe := validation.ValidatePassengerList(f.passengers, f.expected)
	for path, msg := range f.typeErrors {
		fe[path] = msg
	}
	return fe
}

func (f *PassengerForm) VisibleErrors() models.FieldErrors {
	visible := models.FieldErrors{}
	for path, msg := range f.Errors() {
		if f.touched[path] || path == "passengers" {
			visible[path] = msg
		}
	}
	return visible
}

// Submit validates the drafts and builds the reservation request for flightID.
func (f *PassengerForm) Submit(flightID models.OfferID) (models.ReservationRequest, models.FieldErrors) {
	for i := range f.passengers {
		for _, field := range []string{PassengerFirstName, PassengerLastName, PassengerAge, PassengerPassportNumber} {
			f.touched[models.PassengerPath(i, field)] = true
		}
	}

	if fe := f.Errors(); len(fe) > 0 {
		return models.ReservationRequest{}, fe
	}
	return models.ReservationRequest{
		FlightID:   flightID,
		Passengers: clonePassengers(f.passengers),
	}, nil
}

func clonePassengers(in []models.PassengerRecord) []models.PassengerRecord {
	out := make([]models.PassengerRecord, len(in))
	for i, p := range in {
		out[i] = p
		if p.Age != nil {
			age := *p.Age
			out[i].Age = &age
		}
	}
	return out
}
