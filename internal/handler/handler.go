package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/gateway"
	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/session"
	"github.com/dharmasatrya/flightbooking/internal/validation"
)

// Gateway is the remote flight API as seen by the handlers.
type Gateway interface {
	SearchFlights(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightOffer, error)
	LookupAirport(ctx context.Context, city string) ([]models.City, error)
	Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReservationResult, error)
}

type SessionHandler struct {
	store   *session.Store
	gateway Gateway
}

func NewSessionHandler(store *session.Store, gw Gateway) *SessionHandler {
	return &SessionHandler{
		store:   store,
		gateway: gw,
	}
}

// Register mounts every session route on g.
func (h *SessionHandler) Register(g *echo.Group) {
	g.POST("/sessions", h.Create)
	g.GET("/sessions/:id", h.Get)
	g.DELETE("/sessions/:id", h.Reset)

	g.PATCH("/sessions/:id/search", h.EditSearch)
	g.DELETE("/sessions/:id/search/itinerary/:index", h.RemoveSegment)
	g.POST("/sessions/:id/search", h.SubmitSearch)
	g.GET("/sessions/:id/results", h.Results)
	g.POST("/sessions/:id/offers/:offerId/select", h.SelectOffer)

	g.PATCH("/sessions/:id/passengers", h.EditPassengers)
	g.POST("/sessions/:id/reservation", h.SubmitReservation)

	g.POST("/sessions/:id/airports", h.LookupAirport)
}

func (h *SessionHandler) Create(c echo.Context) error {
	s := h.store.Create()
	c.Logger().Debugf("session %s created", s.ID)
	return c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) Get(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// Reset keeps the session id but drops everything else. Requests still in
// flight are discarded when they answer.
func (h *SessionHandler) Reset(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}
	s.Reset()
	return c.JSON(http.StatusOK, s.Snapshot())
}

// session looks up the :id session. When it is missing the 404 response is
// written and ok is false.
func (h *SessionHandler) session(c echo.Context) (s *session.Session, ok bool, err error) {
	s, err = h.store.Get(c.Param("id"))
	if err != nil {
		return nil, false, sessionError(c, err)
	}
	return s, true, nil
}

// sessionError writes the response for a session error and returns the
// result of writing it.
func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, session.ErrOfferNotFound):
		return errorJSON(c, http.StatusNotFound, "offer_not_found", err.Error())
	case errors.Is(err, session.ErrBusy):
		return errorJSON(c, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, session.ErrInvalidTransition):
		return errorJSON(c, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, models.ErrUnknownField), errors.Is(err, models.ErrIndexOutOfRange), errors.Is(err, models.ErrLastSegment):
		return errorJSON(c, http.StatusBadRequest, "invalid_field", err.Error())
	default:
		return errorJSON(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

func validationErrorJSON(c echo.Context, fe models.FieldErrors) error {
	return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Some fields are invalid",
		Code:    http.StatusUnprocessableEntity,
		Fields:  fe,
	})
}

// bindAndValidate binds the request into dst and runs the request validator.
// It writes the error response itself and reports whether to continue.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request: "+err.Error())
	}
	return validate(c, dst)
}

func validate(c echo.Context, dst any) (bool, error) {
	if err := c.Validate(dst); err != nil {
		var fe models.FieldErrors
		if errors.As(err, &fe) {
			return false, validationErrorJSON(c, fe)
		}
		return false, errorJSON(c, http.StatusBadRequest, "invalid_request", err.Error())
	}
	return true, nil
}

// gatewayFailure answers transport failures with 502. Application failures
// are part of the session state and are not written here.
func gatewayFailure(c echo.Context, err error) (bool, error) {
	if err != nil && !gateway.IsKind(err, gateway.KindApplication) {
		return true, errorJSON(c, http.StatusBadGateway, "gateway_error", gateway.MsgTransport)
	}
	return false, nil
}

// completionError handles errors from Complete* calls. Stale completions
// are logged and the current session is returned unchanged.
func completionError(c echo.Context, s *session.Session, err error) error {
	if errors.Is(err, session.ErrStale) {
		c.Logger().Warnf("session %s: discarded stale response", s.ID)
		return c.JSON(http.StatusOK, s.Snapshot())
	}
	return sessionError(c, err)
}

// Validator adapts the shared validation rules to echo.Validator.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(i any) error {
	return validation.Struct(i)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
