package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/timezone"
)

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// Engine returns the shared validator. Field names in errors are JSON names.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		//nolint:errcheck // tag name is static
		v.RegisterValidation("datetime_any", dateTimeAny)
		engine = v
	})
	return engine
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

var dateTimeAny validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return timezone.Valid(value)
}

// ValidateSearchCriteria returns an empty mapping when c is valid.
// Passenger sub-counts are bounded by the current qtyPassengers on every call.
func ValidateSearchCriteria(c models.SearchCriteria) models.FieldErrors {
	fe := models.FieldErrors{}
	collect(fe, Engine().Struct(c), searchMessages)
	return fe
}

type passengerList struct {
	Passengers []models.PassengerRecord `json:"passengers" validate:"dive"`
}

// ValidatePassengerList checks every record and that the list has expectedCount entries.
func ValidatePassengerList(passengers []models.PassengerRecord, expectedCount int) models.FieldErrors {
	fe := models.FieldErrors{}
	if len(passengers) == 0 {
		fe["passengers"] = "Passengers are required"
		return fe
	}
	if expectedCount > 0 && len(passengers) != expectedCount {
		fe["passengers"] = "The number of passengers does not match the selected flight"
	}

	collect(fe, Engine().Struct(passengerList{Passengers: passengers}), passengerMessages)
	return fe
}

// Struct validates request DTOs. It is the Echo validator entry point.
func Struct(s any) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}
	fe := models.FieldErrors{}
	collect(fe, err, requestMessages)
	if len(fe) == 0 {
		return err
	}
	return fe
}

func collect(fe models.FieldErrors, err error, messages map[string]string) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe["_"] = err.Error()
		return
	}
	for _, ferr := range verrs {
		path := fieldPath(ferr.Namespace())
		if _, exists := fe[path]; exists {
			continue
		}
		fe[path] = message(messages, path, ferr)
	}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
