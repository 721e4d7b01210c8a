package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/session"
)

type passengerEdits struct {
	Edits []session.PassengerEdit `json:"edits" validate:"required,min=1,dive"`
}

type AirportRequest struct {
	City string `json:"city" validate:"required"`
}

// EditPassengers takes a JSON array of {index, field, value} edits.
func (h *SessionHandler) EditPassengers(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	var req passengerEdits
	if err := (&echo.DefaultBinder{}).BindBody(c, &req.Edits); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request: "+err.Error())
	}
	if ok, err := validate(c, &req); !ok {
		return err
	}

	if pos, err := s.EditPassengers(req.Edits); err != nil {
		if pos < 0 {
			return sessionError(c, err)
		}
		edit := req.Edits[pos]
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_field",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
			Fields:  models.FieldErrors{models.PassengerPath(edit.Index, edit.Field): err.Error()},
		})
	}

	return c.JSON(http.StatusOK, s.Snapshot())
}

// SubmitReservation validates the passenger drafts and, when valid, sends
// the reservation for the selected offer.
func (h *SessionHandler) SubmitReservation(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	ticket, req, fe, err := s.BeginReservation()
	if err != nil {
		return sessionError(c, err)
	}
	if len(fe) > 0 {
		return validationErrorJSON(c, fe)
	}

	result, callErr := h.gateway.Reserve(c.Request().Context(), req)
	if err := s.CompleteReservation(ticket, result, callErr); err != nil {
		return completionError(c, s, err)
	}
	switch {
	case callErr != nil:
		c.Logger().Warnf("session %s: reservation for offer %s failed: %v", s.ID, req.FlightID, callErr)
	case result == nil:
		c.Logger().Warnf("session %s: reservation for offer %s returned no result", s.ID, req.FlightID)
	default:
		c.Logger().Infof("session %s: reservation %s confirmed", s.ID, result.ID)
	}
	if handled, err := gatewayFailure(c, callErr); handled {
		return err
	}

	return c.JSON(http.StatusOK, s.Snapshot())
}

// LookupAirport resolves a city name to its IATA code. The lookup runs
// independently of searches and bookings.
func (h *SessionHandler) LookupAirport(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	var req AirportRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ticket, err := s.BeginAirportLookup()
	if err != nil {
		return sessionError(c, err)
	}

	cities, callErr := h.gateway.LookupAirport(c.Request().Context(), req.City)
	if err := s.CompleteAirportLookup(ticket, cities, callErr); err != nil {
		return completionError(c, s, err)
	}
	if handled, err := gatewayFailure(c, callErr); handled {
		return err
	}

	return c.JSON(http.StatusOK, s.Snapshot().Airport)
}
