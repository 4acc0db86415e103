package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/travelsearch/internal/models"
	"github.com/dharmasatrya/travelsearch/internal/search"
)

type SearchHandler struct {
	flights *search.FlightService
	hotels  *search.HotelService
}

func NewSearchHandler(flights *search.FlightService, hotels *search.HotelService) *SearchHandler {
	return &SearchHandler{
		flights: flights,
		hotels:  hotels,
	}
}

// SearchFlights serves both the POST body and GET query forms of a
// flight search. Validation failures map to 422; everything else the
// service degrades internally, so a 500 here means a marshalling bug.
func (h *SearchHandler) SearchFlights(c echo.Context) error {
	var req models.FlightSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to parse request: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	resp, err := h.flights.Search(c.Request().Context(), req)
	if err != nil {
		return searchError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) SearchHotels(c echo.Context) error {
	var req models.HotelSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to parse request: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	resp, err := h.hotels.Search(c.Request().Context(), req)
	if err != nil {
		return searchError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func searchError(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "validation_error",
			Message: verr.Message,
			Code:    http.StatusUnprocessableEntity,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
