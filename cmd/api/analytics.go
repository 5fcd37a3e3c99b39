package main

import (
	"net/http"
	"time"

	"nawartu/internal/domain/reservations"
	"nawartu/internal/params"
)

type PropertyReservationsResponse struct {
	Reservations []reservations.Reservation `json:"reservations"`
	Pagination   params.Pagination          `json:"pagination"`
}

// propertyAnalyticsHandler godoc
//
//	@Summary		Property statistics
//	@Description	Counts, revenue, average booking value, nights and occupancy for stays that start on or after start and end on or before end.
//	@Tags			Host
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			start		query		string	true	"Start date (YYYY-MM-DD)"
//	@Param			end			query		string	true	"End date (YYYY-MM-DD)"
//	@Success		200			{object}	reservations.Stats
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/analytics/property/{propertyID} [get]
func (app *application) propertyAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}
	start, end, err := params.DateRange(r.URL.Query(), "start", "end")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	stats, err := app.service.AggregateRevenue(r.Context(), reservations.Scope{PropertyID: p.ID}, start, end)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, stats); err != nil {
		app.internalServerError(w, r, err)
	}
}

// hostSummaryHandler godoc
//
//	@Summary		Monthly host summary
//	@Description	Statistics across every property of the caller for one month. Defaults to the current month.
//	@Tags			Host
//	@Produce		json
//	@Param			year	query		int	false	"Year"
//	@Param			month	query		int	false	"Month (1-12)"
//	@Success		200		{object}	reservations.Stats
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		401		{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/host/analytics/summary [get]
func (app *application) hostSummaryHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.mustPrincipal(w, r)
	if principal == nil {
		return
	}

	now := time.Now().UTC()
	q := r.URL.Query()
	year, err := params.Int(q, "year", now.Year())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	month, err := params.Int(q, "month", int(now.Month()))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	stats, err := app.service.MonthlySummary(r.Context(), principal.UserID, year, month)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, stats); err != nil {
		app.internalServerError(w, r, err)
	}
}

// propertyReservationsHandler godoc
//
//	@Summary		List a property's reservations
//	@Description	Newest stay first.
//	@Tags			Host
//	@Produce		json
//	@Param			propertyID	path		string	true	"Property ID"	format(uuid)
//	@Param			page		query		int		false	"Page number (1-based)"		default(1)	minimum(1)
//	@Param			limit		query		int		false	"Items per page (max 100)"	default(20)	minimum(1)	maximum(100)
//	@Success		200			{object}	PropertyReservationsResponse
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Security		ApiKeyAuth
//	@Router			/host/properties/{propertyID}/reservations [get]
func (app *application) propertyReservationsHandler(w http.ResponseWriter, r *http.Request) {
	_, p := app.ownedProperty(w, r)
	if p == nil {
		return
	}

	pg := params.ParsePagination(r.URL.Query())
	list, total, err := app.service.PropertyReservations(r.Context(), p.ID, pg.Limit, pg.Offset)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	pg.ComputeMeta(total)

	if list == nil {
		list = []reservations.Reservation{}
	}
	resp := PropertyReservationsResponse{Reservations: list, Pagination: pg}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
