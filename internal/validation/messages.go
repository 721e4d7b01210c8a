package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// Keys are "<path with indexes stripped>|<tag>".
var searchMessages = map[string]string{
	"currency|required":                  "Currency is required",
	"currency|len":                       "Currency must have 3 characters",
	"searchs|required":                   "Number of searches is required",
	"searchs|min":                        "There must be at least 1 search",
	"qtyPassengers|required":             "Number of passengers is required",
	"qtyPassengers|min":                  "There must be at least 1 passenger",
	"adult|required":                     "Number of adults is required",
	"adult|min":                          "There must be at least 1 adult",
	"adult|ltefield":                     "Adults cannot exceed total passengers",
	"child|min":                          "The number of children cannot be negative",
	"child|ltefield":                     "Children cannot exceed total passengers",
	"baby|min":                           "The number of infants cannot be negative",
	"baby|ltefield":                      "Infants cannot exceed total passengers",
	"seat|min":                           "The number of seats cannot be negative",
	"itinerary|required":                 "There must be at least one itinerary segment",
	"itinerary|min":                      "There must be at least one itinerary segment",
	"itinerary[].departureCity|required": "Departure city is required",
	"itinerary[].departureCity|len":      "Departure city must have 3 characters",
	"itinerary[].arrivalCity|required":   "Arrival city is required",
	"itinerary[].arrivalCity|len":        "Arrival city must have 3 characters",
	"itinerary[].hour|required":          "Departure date and time is required",
	"itinerary[].hour|datetime_any":      "Departure date and time must be a valid date",
}

var passengerMessages = map[string]string{
	"passengers[].firstName|required":      "First name is required",
	"passengers[].lastName|required":       "Last name is required",
	"passengers[].age|required":            "Age is required",
	"passengers[].age|gte":                 "Invalid age",
	"passengers[].passportNumber|required": "Passport number is required",
}

var requestMessages = map[string]string{
	"city|required":          "Please enter a city name.",
	"fields|required":        "At least one field is required",
	"fields|min":             "At least one field is required",
	"page|min":               "Page cannot be negative",
	"page_size|oneof":        "Page size must be one of 5, 10 or 25",
	"sort_by|oneof":          "Sort must be one of price, departure, airline or best_value",
	"sort_order|oneof":       "Sort order must be asc or desc",
	"edits|required":         "At least one edit is required",
	"edits|min":              "At least one edit is required",
	"edits[].field|required": "Field is required",
	"edits[].index|min":      "Index cannot be negative",
}

// TypeMismatch is reported when a numeric field receives text that is not a number.
func TypeMismatch(path string) string {
	return fmt.Sprintf("%s must be a number", path)
}

func message(messages map[string]string, path string, ferr validator.FieldError) string {
	key := indexPattern.ReplaceAllString(path, "[]") + "|" + ferr.Tag()
	if msg, ok := messages[key]; ok {
		return msg
	}
	return fallbackMessage(ferr)
}

func fallbackMessage(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ferr.Field())
	case "len":
		return fmt.Sprintf("%s must have %s characters", ferr.Field(), ferr.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", ferr.Field(), ferr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", ferr.Field(), ferr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", ferr.Field(), ferr.Param())
	case "ltefield":
		return fmt.Sprintf("%s cannot exceed %s", ferr.Field(), ferr.Param())
	default:
		return fmt.Sprintf("%s is invalid", ferr.Field())
	}
}
