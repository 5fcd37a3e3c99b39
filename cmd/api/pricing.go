package main

import (
	"net/http"

	"nawartu/internal/booking"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/params"
)

type CustomPricePayload struct {
	Date string `json:"date" validate:"required,date"`
	// PriceCents null clears the custom price for the date.
	PriceCents *int64 `json:"price_cents" validate:"omitempty,min=0"`
}

type UpdatePricingPayload struct {
	BasePriceCents *int64               `json:"base_price_cents" validate:"omitempty,min=0"`
	CustomPrices   []CustomPricePayload `json:"custom_prices" validate:"omitempty,max=366,dive"`
}

// updatePricingHandler godoc
//
//	@Summary		Update pricing
//	@Description	Sets the base nightly price and/or custom prices for specific dates.
//	@Tags			Host
//	@Accept			json
//	@Produce		json
//	@Param			propertyID	path	string					true	"Property ID"	format(uuid)
//	@Param			payload		body	UpdatePricingPayload	true	"Pricing update"
//	@Success		204
//	@Failure		400	{object}	error	"Bad Request"
//	@Failure		403	{object}	error	"Forbidden"
//	@Failure		404	{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/pricing/{propertyID} [put]
func (app *application) updatePricingHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}

	var payload UpdatePricingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	update := booking.PricingUpdate{BasePriceCents: payload.BasePriceCents}
	for _, c := range payload.CustomPrices {
		d, _ := calendar.ParseDate(c.Date)
		update.Custom = append(update.Custom, booking.CustomPrice{Date: d, PriceCents: c.PriceCents})
	}

	if err := app.service.UpdatePricing(r.Context(), p.ID, update); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pricingSuggestionsHandler godoc
//
//	@Summary		Pricing suggestions
//	@Description	Suggests a nightly price per date from start to end (inclusive): weekends get a premium and prices are nudged toward the average of up to ten similar listings.
//	@Tags			Host
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			start		query		string	true	"First date (YYYY-MM-DD)"
//	@Param			end			query		string	true	"Last date (YYYY-MM-DD)"
//	@Success		200			{object}	booking.Suggestions
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/pricing/{propertyID}/suggestions [get]
func (app *application) pricingSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}
	start, end, err := params.DateRange(r.URL.Query(), "start", "end")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	s, err := app.service.PricingSuggestions(r.Context(), p.ID, start, end)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, s); err != nil {
		app.internalServerError(w, r, err)
	}
}
