package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/results"
	"github.com/dharmasatrya/flightbooking/internal/session"
)

type SearchEditRequest struct {
	Fields map[string]any `json:"fields" validate:"required,min=1"`
}

// ResultsRequest carries the table query. Page and PageSize are read with
// the query binder so that an absent parameter stays nil.
type ResultsRequest struct {
	Airline   string `json:"airline" query:"airline"`
	Date      string `json:"date" query:"date"`
	Page      *int   `json:"page" validate:"omitempty,min=0"`
	PageSize  *int   `json:"page_size" validate:"omitempty,oneof=5 10 25"`
	SortBy    string `json:"sort_by" query:"sort_by" validate:"omitempty,oneof=price departure airline best_value"`
	SortOrder string `json:"sort_order" query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type SearchResponse struct {
	Session session.Snapshot `json:"session"`
	Results *results.Page    `json:"results,omitempty"`
}

func (h *SessionHandler) EditSearch(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	var req SearchEditRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if path, err := s.EditSearch(req.Fields); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_field",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
			Fields:  models.FieldErrors{path: err.Error()},
		})
	}

	return c.JSON(http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) RemoveSegment(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "index must be a number")
	}
	if err := s.RemoveSegment(idx); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(http.StatusOK, s.Snapshot())
}

// SubmitSearch validates the draft and, when valid, runs the remote search.
// Invalid drafts answer 422 and make no remote call.
func (h *SessionHandler) SubmitSearch(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	ticket, criteria, fe, err := s.BeginSearch()
	if err != nil {
		return sessionError(c, err)
	}
	if len(fe) > 0 {
		return validationErrorJSON(c, fe)
	}

	offers, callErr := h.gateway.SearchFlights(c.Request().Context(), criteria)
	if err := s.CompleteSearch(ticket, offers, callErr); err != nil {
		return completionError(c, s, err)
	}
	if callErr != nil {
		c.Logger().Warnf("session %s: search failed: %v", s.ID, callErr)
	}
	if handled, err := gatewayFailure(c, callErr); handled {
		return err
	}

	resp := SearchResponse{Session: s.Snapshot()}
	if callErr == nil {
		page := s.Results(session.ResultsQuery{})
		resp.Results = &page
	}
	return c.JSON(http.StatusOK, resp)
}

// Results renders the current offers. Changing page_size returns to the
// first page; changing the filters does too.
func (h *SessionHandler) Results(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	var req ResultsRequest
	if err := bindPaging(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", err.Error())
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	page := s.Results(session.ResultsQuery{
		Filter:    models.FilterSpec{Airline: req.Airline, Date: req.Date},
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	return c.JSON(http.StatusOK, page)
}

func (h *SessionHandler) SelectOffer(c echo.Context) error {
	s, ok, err := h.session(c)
	if !ok {
		return err
	}

	if err := s.SelectOffer(models.OfferID(c.Param("offerId"))); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

func bindPaging(c echo.Context, req *ResultsRequest) error {
	var page, size int
	err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("page_size", &size).
		BindError()
	if err != nil {
		return err
	}

	params := c.QueryParams()
	if params.Has("page") {
		req.Page = &page
	}
	if params.Has("page_size") {
		req.PageSize = &size
	}
	return nil
}
