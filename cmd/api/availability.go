package main

import (
	"fmt"
	"net/http"

	"nawartu/internal/apperror"
	"nawartu/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// checkAvailabilityHandler godoc
//
//	@Summary		Check whether a stay can be booked
//	@Description	Reports whether every night in [check_in, check_out) is open and the minimum stay is met. Unavailability is not an error.
//	@Tags			Availability
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			check_in	query		string	true	"Check-in date (YYYY-MM-DD)"
//	@Param			check_out	query		string	true	"Check-out date (YYYY-MM-DD)"
//	@Success		200			{object}	AvailabilityResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Property not found"
//	@Failure		503			{object}	error	"Dependency unavailable"
//	@Router			/properties/{propertyID}/availability [get]
func (app *application) checkAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	checkIn, checkOut, err := params.DateRange(r.URL.Query(), "check_in", "check_out")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	resp := AvailabilityResponse{Available: true}
	if err := app.service.CheckRange(r.Context(), propertyID, checkIn, checkOut); err != nil {
		if !apperror.Is(err, apperror.KindConflict) {
			app.errorResponse(w, r, err)
			return
		}
		resp = AvailabilityResponse{Available: false, Reason: err.Error()}
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// quoteHandler godoc
//
//	@Summary		Price a stay
//	@Description	Returns the per-night breakdown and total for [check_in, check_out). When the calendar cannot be read the quote falls back to base price × nights and is flagged.
//	@Tags			Availability
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			check_in	query		string	true	"Check-in date (YYYY-MM-DD)"
//	@Param			check_out	query		string	true	"Check-out date (YYYY-MM-DD)"
//	@Success		200			{object}	booking.Quote
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Property not found"
//	@Router			/properties/{propertyID}/quote [get]
func (app *application) quoteHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	checkIn, checkOut, err := params.DateRange(r.URL.Query(), "check_in", "check_out")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	quote, err := app.service.PriceRange(r.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, quote); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uuidOf parses an id that was already validated.
func uuidOf(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}
